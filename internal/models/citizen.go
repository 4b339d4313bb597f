package models

import "time"

// Citizen represents a person registered in the citizen registry.
type Citizen struct {
	ID         string    `json:"id" gorm:"primaryKey;type:varchar(36)" bson:"_id"`
	LastName   string    `json:"nom" gorm:"type:varchar(50);not null" bson:"nom"`
	FirstName  string    `json:"prenom" gorm:"type:varchar(50);not null" bson:"prenom"`
	FatherName string    `json:"pere" gorm:"type:varchar(50)" bson:"pere"`
	MotherName string    `json:"mere" gorm:"type:varchar(50)" bson:"mere"`
	NCI        string    `json:"nci" gorm:"type:varchar(13);uniqueIndex;not null" bson:"nci"`
	Photo      string    `json:"photo" gorm:"type:text" bson:"photo"`
	CreatedAt  time.Time `json:"-" gorm:"index" bson:"createdAt"`
	UpdatedAt  time.Time `json:"-" bson:"updatedAt"`
}

// TableName keeps the collection name used by the registry.
func (Citizen) TableName() string {
	return "citoyens"
}

// CitizenResponse is the public projection returned by the API.
type CitizenResponse struct {
	ID         string `json:"id"`
	LastName   string `json:"nom"`
	FirstName  string `json:"prenom"`
	FatherName string `json:"pere"`
	MotherName string `json:"mere"`
	NCI        string `json:"nci"`
	Photo      string `json:"photo"`
}

// Public strips the internal timestamps from a citizen.
func (c *Citizen) Public() CitizenResponse {
	return CitizenResponse{
		ID:         c.ID,
		LastName:   c.LastName,
		FirstName:  c.FirstName,
		FatherName: c.FatherName,
		MotherName: c.MotherName,
		NCI:        c.NCI,
		Photo:      c.Photo,
	}
}

// CitizenInput is the request body accepted when registering a citizen.
type CitizenInput struct {
	LastName   string `json:"nom"`
	FirstName  string `json:"prenom"`
	FatherName string `json:"pere"`
	MotherName string `json:"mere"`
	NCI        string `json:"nci"`
	Photo      string `json:"photo"`
}

// CitizenPatch carries the updatable fields of a citizen. Nil fields are left untouched.
type CitizenPatch struct {
	LastName   *string `json:"nom"`
	FirstName  *string `json:"prenom"`
	FatherName *string `json:"pere"`
	MotherName *string `json:"mere"`
	NCI        *string `json:"nci"`
	Photo      *string `json:"photo"`
}

// PatchFields lists the JSON keys a CitizenPatch may carry.
var PatchFields = map[string]bool{
	"nom":    true,
	"prenom": true,
	"pere":   true,
	"mere":   true,
	"nci":    true,
	"photo":  true,
}

// Apply merges the non-nil patch fields into c.
func (p CitizenPatch) Apply(c *Citizen) {
	if p.LastName != nil {
		c.LastName = *p.LastName
	}
	if p.FirstName != nil {
		c.FirstName = *p.FirstName
	}
	if p.FatherName != nil {
		c.FatherName = *p.FatherName
	}
	if p.MotherName != nil {
		c.MotherName = *p.MotherName
	}
	if p.NCI != nil {
		c.NCI = *p.NCI
	}
	if p.Photo != nil {
		c.Photo = *p.Photo
	}
}
