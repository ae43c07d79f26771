package introduction_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"carmatch_backend/internal/common"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/introduction"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/matching"
	"carmatch_backend/internal/notification"
	"carmatch_backend/internal/notifier"
	"carmatch_backend/internal/testutil"
	"carmatch_backend/internal/user"
	"carmatch_backend/internal/vehicle"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type sentMessage struct {
	kind        notifier.Kind
	recipientID uuid.UUID
	data        notifier.Data
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (r *recordingNotifier) Notify(_ context.Context, kind notifier.Kind, recipientID uuid.UUID, data notifier.Data) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, sentMessage{kind: kind, recipientID: recipientID, data: data})
}

type failingNotifications struct{}

func (failingNotifications) CreateNotification(context.Context, uuid.UUID, notification.NotificationType, string, *uuid.UUID) (*notification.Notification, error) {
	return nil, errors.New("notifications table unavailable")
}

type harness struct {
	db            *gorm.DB
	clock         time.Time
	service       *introduction.ServiceImplementation
	vehicles      *vehicle.ServiceImplementation
	wantListings  *listing.ServiceImplementation
	notifications *notification.ServiceImplementation
	outbound      *recordingNotifier
	seller        uuid.UUID
	buyer         uuid.UUID
}

func newHarness(t *testing.T) *harness {
	db := testutil.NewDB(t)
	resolver := testutil.SeedZips(t, db,
		geo.ZipGeo{Zip: "90210", Latitude: 34.0901, Longitude: -118.4065},
		geo.ZipGeo{Zip: "90211", Latitude: 34.0650, Longitude: -118.3830},
	)
	cfg := testutil.Config()
	retry := testutil.NewRetrier()
	logger := zap.NewNop()

	listingRepo := listing.NewGORMRepository(db, retry)
	filters := listing.NewFilterBuilder(resolver)
	engine := matching.NewEngine(listingRepo, filters, resolver, cfg, logger)

	h := &harness{
		db:            db,
		clock:         time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC),
		vehicles:      vehicle.NewService(vehicle.NewGORMRepository(db, retry), engine, nil, cfg, logger),
		wantListings:  listing.NewService(listingRepo, filters, resolver, cfg, logger),
		notifications: notification.NewService(notification.NewGORMRepository(db, retry), logger),
		outbound:      &recordingNotifier{},
		seller:        uuid.New(),
		buyer:         uuid.New(),
	}
	h.service = introduction.NewService(
		introduction.NewGORMRepository(db, retry),
		h.vehicles, listingRepo, h.notifications, h.outbound, cfg, logger,
	).WithClock(func() time.Time { return h.clock })

	for id, name := range map[uuid.UUID]string{h.seller: "Sam Seller", h.buyer: "Bea Buyer"} {
		u := user.User{DisplayName: name}
		u.ID = id
		require.NoError(t, db.Create(&u).Error)
	}
	return h
}

func (h *harness) vehicleAndWant(t *testing.T) (*vehicle.VehicleListing, *listing.WantListing) {
	ctx := context.Background()
	v, err := h.vehicles.CreateVehicle(ctx, h.seller, vehicle.VehicleRequest{
		Make: "Honda", Model: "CR-V", Year: 2022, Mileage: 28000, Price: 31000, Zip: "90211",
		ImageRefs: []string{"a.jpg", "b.jpg", "c.jpg"},
	})
	require.NoError(t, err)
	w, err := h.wantListings.CreateWantListing(ctx, h.buyer, listing.WantListingRequest{
		Title: "Family SUV", Make: "Honda", Model: "CR-V", YearMin: 2020, YearMax: 2024,
		BudgetMin: 25000, BudgetMax: 35000, Zip: "90210", RadiusMiles: 50, MileageMax: 50000,
	})
	require.NoError(t, err)
	return v, w
}

func (h *harness) count(t *testing.T) int64 {
	var n int64
	require.NoError(t, h.db.Model(&introduction.Introduction{}).Count(&n).Error)
	return n
}

func TestCreateIntroduction_Success(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)

	intro, err := h.service.CreateIntroduction(context.Background(), h.seller, introduction.CreateIntroductionRequest{
		VehicleListingID: v.ID, WantListingID: w.ID, Message: "  Clean title, one owner.  ",
	})

	require.NoError(t, err)
	assert.Equal(t, introduction.StatusPending, intro.Status)
	assert.Equal(t, h.buyer, intro.BuyerID)
	assert.Equal(t, "Clean title, one owner.", intro.Message)
	assert.Equal(t, h.clock.Add(72*time.Hour), intro.ExpiresAt)

	unread, err := h.notifications.GetUnreadCount(context.Background(), h.buyer)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.Len(t, h.outbound.sent, 1)
	assert.Equal(t, notifier.KindIntroductionReceived, h.outbound.sent[0].kind)
	assert.Equal(t, h.buyer, h.outbound.sent[0].recipientID)
	assert.Equal(t, "2022 Honda CR-V", h.outbound.sent[0].data.VehicleSummary)
}

func TestCreateIntroduction_DuplicatePairConflicts(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	req := introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID}

	_, err := h.service.CreateIntroduction(context.Background(), h.seller, req)
	require.NoError(t, err)

	_, err = h.service.CreateIntroduction(context.Background(), h.seller, req)
	assert.True(t, errors.Is(err, common.ErrConflict))
	assert.Equal(t, int64(1), h.count(t))
	assert.Len(t, h.outbound.sent, 1)
}

func TestCreateIntroduction_ConcurrentDuplicatesInsertOnce(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	req := introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := h.service.CreateIntroduction(context.Background(), h.seller, req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case errors.Is(err, common.ErrConflict):
				conflicts++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, 4, conflicts)
	assert.Equal(t, int64(1), h.count(t))
}

func TestCreateIntroduction_Preconditions(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	ctx := context.Background()

	_, err := h.service.CreateIntroduction(ctx, uuid.New(), introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	assert.True(t, errors.Is(err, common.ErrForbidden), "caller must own the vehicle")

	_, err = h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: uuid.New()})
	assert.True(t, errors.Is(err, common.ErrNotFound), "missing want listing")

	_, err = h.wantListings.ArchiveWantListing(ctx, w.ID, h.buyer)
	require.NoError(t, err)
	_, err = h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code, "inactive want listing")

	require.NoError(t, h.wantListings.DeleteWantListing(ctx, w.ID, h.buyer))
	_, err = h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	assert.True(t, errors.Is(err, common.ErrNotFound), "deleted want listing")

	assert.Zero(t, h.count(t))
}

func TestAcceptIntroduction_NotifiesSellerAndRejectsSecondCall(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	ctx := context.Background()
	intro, err := h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	require.NoError(t, err)

	accepted, err := h.service.AcceptIntroduction(ctx, intro.ID, h.buyer)
	require.NoError(t, err)
	assert.Equal(t, introduction.StatusAccepted, accepted.Status)

	_, err = h.service.AcceptIntroduction(ctx, intro.ID, h.buyer)
	assert.True(t, errors.Is(err, common.ErrConflict))

	stored := introduction.Introduction{}
	require.NoError(t, h.db.First(&stored, "id = ?", intro.ID).Error)
	assert.Equal(t, introduction.StatusAccepted, stored.Status)

	require.Len(t, h.outbound.sent, 2)
	last := h.outbound.sent[1]
	assert.Equal(t, notifier.KindIntroductionAccepted, last.kind)
	assert.Equal(t, h.seller, last.recipientID)
	assert.Equal(t, "Bea Buyer", last.data.CounterpartName)

	unread, err := h.notifications.GetUnreadCount(ctx, h.seller)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestRespondToIntroduction_WrongCallerAndMissing(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	ctx := context.Background()
	intro, err := h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	require.NoError(t, err)

	_, err = h.service.AcceptIntroduction(ctx, intro.ID, h.seller)
	assert.True(t, errors.Is(err, common.ErrForbidden))

	_, err = h.service.RejectIntroduction(ctx, uuid.New(), h.buyer)
	assert.True(t, errors.Is(err, common.ErrNotFound))

	rejected, err := h.service.RejectIntroduction(ctx, intro.ID, h.buyer)
	require.NoError(t, err)
	assert.Equal(t, introduction.StatusRejected, rejected.Status)
	// Rejections are in-app only.
	assert.Len(t, h.outbound.sent, 1)
}

func TestExpireOverdue_ThenAcceptConflicts(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	ctx := context.Background()
	intro, err := h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	require.NoError(t, err)

	h.clock = h.clock.Add(71 * time.Hour)
	n, err := h.service.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	h.clock = h.clock.Add(2 * time.Hour)
	n, err = h.service.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	n, err = h.service.ExpireOverdue(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "a second sweep changes nothing")

	_, err = h.service.AcceptIntroduction(ctx, intro.ID, h.buyer)
	assert.True(t, errors.Is(err, common.ErrConflict))
}

func TestListReceivedAndSent(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	ctx := context.Background()
	intro, err := h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	require.NoError(t, err)

	received, err := h.service.ListReceived(ctx, h.buyer, "", common.PaginationQuery{})
	require.NoError(t, err)
	require.Len(t, received.Items, 1)
	view := received.Items[0]
	assert.Equal(t, intro.ID, view.ID)
	assert.Equal(t, "Honda", view.VehicleMake)
	assert.Equal(t, 31000, view.VehiclePrice)
	assert.Equal(t, "Family SUV", view.WantListingTitle)
	assert.Equal(t, "Sam Seller", view.SellerDisplayName)

	sent, err := h.service.ListSent(ctx, h.seller, "pending", common.PaginationQuery{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), sent.Total)

	sent, err = h.service.ListSent(ctx, h.seller, "accepted", common.PaginationQuery{})
	require.NoError(t, err)
	assert.Zero(t, sent.Total)

	_, err = h.service.ListSent(ctx, h.seller, "bogus", common.PaginationQuery{})
	apiErr, ok := common.IsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, "VALIDATION_ERROR", apiErr.Code)
}

func TestCreateIntroduction_NotificationFailureDoesNotFailCreate(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	outbound := &recordingNotifier{}
	service := introduction.NewService(
		introduction.NewGORMRepository(h.db, testutil.NewRetrier()),
		h.vehicles, listing.NewGORMRepository(h.db, testutil.NewRetrier()),
		failingNotifications{}, outbound, testutil.Config(), zap.NewNop(),
	)

	intro, err := service.CreateIntroduction(context.Background(), h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})

	require.NoError(t, err)
	assert.Equal(t, introduction.StatusPending, intro.Status)
	assert.Len(t, outbound.sent, 1)
}

func TestMatchesHideIntroducedListings(t *testing.T) {
	h := newHarness(t)
	v, w := h.vehicleAndWant(t)
	ctx := context.Background()

	matches, err := h.vehicles.GetMatches(ctx, v.ID, h.seller, common.PaginationQuery{})
	require.NoError(t, err)
	require.Len(t, matches.Items, 1)
	assert.Equal(t, w.ID, matches.Items[0].ID)

	_, err = h.service.CreateIntroduction(ctx, h.seller, introduction.CreateIntroductionRequest{VehicleListingID: v.ID, WantListingID: w.ID})
	require.NoError(t, err)

	matches, err = h.vehicles.GetMatches(ctx, v.ID, h.seller, common.PaginationQuery{})
	require.NoError(t, err)
	assert.Empty(t, matches.Items)
}
