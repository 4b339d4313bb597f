package repositories

import (
	"context"
	"errors"
	"fmt"

	"citoyens/internal/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCitizenRepository stores citizens as documents in the "citoyens" collection.
type MongoCitizenRepository struct {
	coll *mongo.Collection
}

// NewMongoCitizenRepository creates a new instance of MongoCitizenRepository.
func NewMongoCitizenRepository(db *mongo.Database) *MongoCitizenRepository {
	return &MongoCitizenRepository{
		coll: db.Collection(models.Citizen{}.TableName()),
	}
}

// EnsureIndexes declares the unique NCI index and the creation-time sort index.
func (r *MongoCitizenRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "nci", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "createdAt", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to create citizen indexes: %w", err)
	}
	return nil
}

// Create inserts a new citizen document.
func (r *MongoCitizenRepository) Create(ctx context.Context, c *models.Citizen) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if _, err := r.coll.InsertOne(ctx, c); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("citizen with NCI %s: %w", c.NCI, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to create citizen: %w", err)
	}
	return nil
}

func (r *MongoCitizenRepository) findOne(ctx context.Context, filter bson.M, what string) (*models.Citizen, error) {
	var c models.Citizen
	if err := r.coll.FindOne(ctx, filter).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("citizen with %s: %w", what, ErrRecordNotFound)
		}
		return nil, fmt.Errorf("failed to get citizen by %s: %w", what, err)
	}
	return &c, nil
}

// GetByID retrieves a citizen by document id.
func (r *MongoCitizenRepository) GetByID(ctx context.Context, id string) (*models.Citizen, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "ID "+id)
}

// FindOneByNCI retrieves the citizen holding nci.
func (r *MongoCitizenRepository) FindOneByNCI(ctx context.Context, nci string) (*models.Citizen, error) {
	return r.findOne(ctx, bson.M{"nci": nci}, "NCI "+nci)
}

// List retrieves a window of citizens, newest first.
func (r *MongoCitizenRepository) List(ctx context.Context, limit, offset int) ([]models.Citizen, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list citizens: %w", err)
	}
	citizens := []models.Citizen{}
	if err := cursor.All(ctx, &citizens); err != nil {
		return nil, fmt.Errorf("failed to decode citizens: %w", err)
	}
	return citizens, nil
}

// Update overwrites the mutable fields of a citizen document.
func (r *MongoCitizenRepository) Update(ctx context.Context, c *models.Citizen) error {
	set := bson.M{
		"nom":       c.LastName,
		"prenom":    c.FirstName,
		"pere":      c.FatherName,
		"mere":      c.MotherName,
		"nci":       c.NCI,
		"photo":     c.Photo,
		"updatedAt": c.UpdatedAt,
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": set})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("citizen with NCI %s: %w", c.NCI, ErrDuplicateKey)
		}
		return fmt.Errorf("failed to update citizen: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("citizen with ID %s: %w", c.ID, ErrRecordNotFound)
	}
	return nil
}

// Delete removes a citizen document. Missing documents are ignored.
func (r *MongoCitizenRepository) Delete(ctx context.Context, id string) error {
	if _, err := r.coll.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete citizen: %w", err)
	}
	return nil
}
