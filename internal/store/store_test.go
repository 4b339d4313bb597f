package store_test

import (
	"context"
	"fmt"
	"testing"

	"citoyens/internal/config"
	"citoyens/internal/models"
	"citoyens/internal/store"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenSQLite(t *testing.T) {
	ctx := context.Background()
	log, _ := test.NewNullLogger()
	cfg := config.Config{
		StoreDriver: "sqlite",
		DatabaseDSN: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	}

	s, err := store.Open(ctx, cfg, log)
	require.NoError(t, err)
	defer s.Close(ctx)

	assert.Equal(t, "sqlite", s.Name)
	c := &models.Citizen{LastName: "Diouf", FirstName: "Mor", NCI: "1234567890123"}
	require.NoError(t, s.Citizens.Create(ctx, c))
	found, err := s.Citizens.FindOneByNCI(ctx, "1234567890123")
	require.NoError(t, err)
	assert.Equal(t, c.ID, found.ID)
}

func TestOpenMemory(t *testing.T) {
	log, hook := test.NewNullLogger()
	s, err := store.Open(context.Background(), config.Config{StoreDriver: "memory"}, log)
	require.NoError(t, err)
	assert.Equal(t, "memory", s.Name)
	assert.NotNil(t, s.Citizens)
	assert.NotNil(t, s.Logs)
	assert.NoError(t, s.Close(context.Background()))
	require.Len(t, hook.Entries, 1)
}

func TestOpenUnknownDriver(t *testing.T) {
	log, _ := test.NewNullLogger()
	_, err := store.Open(context.Background(), config.Config{StoreDriver: "redis"}, log)
	assert.ErrorContains(t, err, "unknown store driver")
}
