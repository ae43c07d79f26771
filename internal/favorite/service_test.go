package favorite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/favorite"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*favorite.ServiceImplementation, *gorm.DB) {
	db := testutil.NewDB(t)
	retry := testutil.NewRetrier()
	service := favorite.NewService(favorite.NewGORMRepository(db, retry), listing.NewGORMRepository(db, retry), zap.NewNop())
	return service, db
}

func createWant(t *testing.T, db *gorm.DB, status listing.WantListingStatus, createdAt time.Time) *listing.WantListing {
	w := &listing.WantListing{
		UserID: uuid.New(), Title: "Wagon", Make: "Subaru", Model: "Outback",
		YearMin: 2015, YearMax: 2020, BudgetMin: 10000, BudgetMax: 20000,
		Zip: "90210", RadiusMiles: 25, MileageMax: 90000, Status: status,
	}
	w.CreatedAt = createdAt
	require.NoError(t, db.Create(w).Error)
	return w
}

func TestAddFavorite_Idempotent(t *testing.T) {
	service, db := setup(t)
	ctx := context.Background()
	userID := uuid.New()
	w := createWant(t, db, listing.StatusActive, time.Now().UTC())

	require.NoError(t, service.AddFavorite(ctx, userID, w.ID))
	require.NoError(t, service.AddFavorite(ctx, userID, w.ID))

	var rows int64
	require.NoError(t, db.Model(&favorite.Favorite{}).Where("user_id = ?", userID).Count(&rows).Error)
	assert.Equal(t, int64(1), rows)

	ids, err := service.ListFavoriteIDs(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{w.ID}, ids)
}

func TestAddFavorite_MissingOrDeletedListing(t *testing.T) {
	service, db := setup(t)
	ctx := context.Background()
	deleted := createWant(t, db, listing.StatusDeleted, time.Now().UTC())

	err := service.AddFavorite(ctx, uuid.New(), deleted.ID)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	err = service.AddFavorite(ctx, uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, common.ErrNotFound))
}

func TestRemoveFavorite(t *testing.T) {
	service, db := setup(t)
	ctx := context.Background()
	userID := uuid.New()
	w := createWant(t, db, listing.StatusActive, time.Now().UTC())

	require.NoError(t, service.AddFavorite(ctx, userID, w.ID))
	require.NoError(t, service.RemoveFavorite(ctx, userID, w.ID))
	require.NoError(t, service.RemoveFavorite(ctx, userID, w.ID), "removing an absent favorite is a no-op")

	ids, err := service.ListFavoriteIDs(ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, ids)
	assert.Empty(t, ids)
}

func TestListFavoriteIDs_OnlyCallersNewestFirst(t *testing.T) {
	service, db := setup(t)
	userID, other := uuid.New(), uuid.New()
	first := createWant(t, db, listing.StatusActive, time.Now().UTC())
	second := createWant(t, db, listing.StatusActive, time.Now().UTC())

	base := time.Now().UTC().Add(-time.Hour)
	require.NoError(t, db.Create(&favorite.Favorite{UserID: userID, WantListingID: first.ID, CreatedAt: base}).Error)
	require.NoError(t, db.Create(&favorite.Favorite{UserID: userID, WantListingID: second.ID, CreatedAt: base.Add(time.Minute)}).Error)
	require.NoError(t, db.Create(&favorite.Favorite{UserID: other, WantListingID: first.ID, CreatedAt: base}).Error)

	ids, err := service.ListFavoriteIDs(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{second.ID, first.ID}, ids)
}
