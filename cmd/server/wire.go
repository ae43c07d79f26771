// File: cmd/server/wire.go
//go:build wireinject
// +build wireinject

package main

import (
	"carmatch_backend/internal/app"
	"carmatch_backend/internal/catalog"
	"carmatch_backend/internal/config"
	"carmatch_backend/internal/favorite"
	"carmatch_backend/internal/filestorage"
	"carmatch_backend/internal/geo"
	"carmatch_backend/internal/introduction"
	"carmatch_backend/internal/jobs"
	"carmatch_backend/internal/listing"
	"carmatch_backend/internal/matching"
	"carmatch_backend/internal/notification"
	"carmatch_backend/internal/notifier"
	"carmatch_backend/internal/platform/database"
	"carmatch_backend/internal/platform/logger"
	"carmatch_backend/internal/user"
	"carmatch_backend/internal/vehicle"

	"github.com/google/wire"
)

var platformSet = wire.NewSet(
	logger.New,
	provideContext,
	provideDatabase,
	database.NewRetrier,
	geo.NewGORMRepository,
	provideResolver,
)

var listingSet = wire.NewSet(
	listing.NewGORMRepository,
	listing.NewFilterBuilder,
	listing.NewService,
	wire.Bind(new(listing.Service), new(*listing.ServiceImplementation)),
	wire.Bind(new(introduction.WantListingLookup), new(listing.Repository)),
	wire.Bind(new(favorite.WantListingLookup), new(listing.Repository)),
	listing.NewHandler,
	matching.NewEngine,
)

var vehicleSet = wire.NewSet(
	filestorage.NewService,
	wire.Bind(new(vehicle.ImageUploader), new(*filestorage.Service)),
	wire.Bind(new(vehicle.Matcher), new(*matching.Engine)),
	vehicle.NewGORMRepository,
	vehicle.NewService,
	wire.Bind(new(vehicle.Service), new(*vehicle.ServiceImplementation)),
	wire.Bind(new(introduction.VehicleLookup), new(*vehicle.ServiceImplementation)),
	vehicle.NewHandler,
)

var introductionSet = wire.NewSet(
	user.NewGORMRepository,
	user.NewService,
	wire.Bind(new(user.Service), new(*user.ServiceImplementation)),
	user.NewHandler,
	notification.NewGORMRepository,
	notification.NewService,
	wire.Bind(new(notification.Service), new(*notification.ServiceImplementation)),
	wire.Bind(new(introduction.NotificationCreator), new(*notification.ServiceImplementation)),
	notification.NewHandler,
	notifier.NewSender,
	notifier.New,
	wire.Bind(new(notifier.RecipientLookup), new(user.Repository)),
	wire.Bind(new(introduction.OutboundNotifier), new(*notifier.Notifier)),
	introduction.NewGORMRepository,
	introduction.NewService,
	wire.Bind(new(introduction.Service), new(*introduction.ServiceImplementation)),
	wire.Bind(new(jobs.Expirer), new(*introduction.ServiceImplementation)),
	introduction.NewHandler,
	jobs.NewIntroductionExpiryJob,
)

var supportSet = wire.NewSet(
	favorite.NewGORMRepository,
	favorite.NewService,
	wire.Bind(new(favorite.Service), new(*favorite.ServiceImplementation)),
	favorite.NewHandler,
	catalog.NewService,
	wire.Bind(new(catalog.Service), new(*catalog.CachedService)),
	catalog.NewHandler,
)

// initializeServer is the main Wire injector.
func initializeServer(cfg *config.Config) (*app.Server, func(), error) {
	wire.Build(
		platformSet,
		listingSet,
		vehicleSet,
		introductionSet,
		supportSet,
		wire.Struct(new(app.Handlers), "*"),
		app.NewServer,
	)
	return nil, nil, nil
}
