package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/farellandr/eventick/internal/models"
	"github.com/farellandr/eventick/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRepositoryCRUD(t *testing.T) {
	db := testutil.NewDB(t)
	clubs := NewRepository[models.Club](db, ClubResource)
	ctx := context.Background()

	club := &models.Club{Code: "RC", Name: "Running Club"}
	require.NoError(t, clubs.Create(ctx, club))
	assert.NotEqual(t, uuid.Nil, club.ID)

	club.Name = "Runners"
	require.NoError(t, clubs.Update(ctx, club))

	got, err := clubs.Get(ctx, club.ID)
	require.NoError(t, err)
	assert.Equal(t, "Runners", got.Name)

	require.NoError(t, clubs.Delete(ctx, club.ID))
	_, err = clubs.Get(ctx, club.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
	assert.ErrorIs(t, clubs.Delete(ctx, club.ID), gorm.ErrRecordNotFound)
}

func TestRepositoryUniqueColumns(t *testing.T) {
	db := testutil.NewDB(t)
	clubs := NewRepository[models.Club](db, ClubResource)
	ctx := context.Background()

	require.NoError(t, clubs.Create(ctx, &models.Club{Code: "RC", Name: "Running Club"}))
	err := clubs.Create(ctx, &models.Club{Code: "RC", Name: "Rowing Club"})
	assert.True(t, models.IsUniqueViolation(err))
}

func TestRepositoryListPaginates(t *testing.T) {
	db := testutil.NewDB(t)
	registrants := NewRepository[models.Registrant](db, RegistrantResource)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		require.NoError(t, registrants.Create(ctx, &models.Registrant{
			FirstName: fmt.Sprintf("First%02d", i),
			LastName:  "Smith",
			Phone:     "555",
			Email:     fmt.Sprintf("r%02d@example.com", i),
		}))
	}

	page, total, err := registrants.List(ctx, ListParams{Page: 2, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
	assert.Len(t, page, 5)

	last, _, err := registrants.List(ctx, ListParams{Page: 3, Limit: 5})
	require.NoError(t, err)
	assert.Len(t, last, 2)

	found, total, err := registrants.List(ctx, ListParams{Search: "r07@", Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "First07", found[0].FirstName)

	// Unknown filters are ignored.
	_, total, err = registrants.List(ctx, ListParams{Filters: map[string]string{"nope": "x"}, Page: 1, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(12), total)
}
