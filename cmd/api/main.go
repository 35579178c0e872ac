package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/njprem/CityScore_APP_BackEnd/internal/config"
	"github.com/njprem/CityScore_APP_BackEnd/internal/logging"
	"github.com/njprem/CityScore_APP_BackEnd/internal/media"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/geocoding"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/memory"
	miniorepo "github.com/njprem/CityScore_APP_BackEnd/internal/repository/minio"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/ports"
	"github.com/njprem/CityScore_APP_BackEnd/internal/repository/postgres"
	redisrepo "github.com/njprem/CityScore_APP_BackEnd/internal/repository/redis"
	"github.com/njprem/CityScore_APP_BackEnd/internal/service"
	httpx "github.com/njprem/CityScore_APP_BackEnd/internal/transport/http"
	"github.com/njprem/CityScore_APP_BackEnd/internal/util"
)

func main() {
	cfg := config.Load()

	logger, cleanup, err := logging.New(logging.Config{
		Level:        cfg.LogLevel,
		Format:       cfg.LogFormat,
		LogstashAddr: cfg.LogstashTCPAddr,
		Service:      "cityscore-api",
	})
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer cleanup()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("api stopped", zap.Error(err))
		cleanup()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	db, err := postgres.New(cfg.DatabaseURL, cfg.DBMaxOpenConns)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()
	logger.Info("database connection pool established")

	if cfg.DBAutoMigrate {
		if err := postgres.EnsureSchema(ctx, db); err != nil {
			return fmt.Errorf("apply schema: %w", err)
		}
		logger.Info("database schema ensured")
	}

	placeRepo := postgres.NewPlaceRepo(db)
	reviewRepo := postgres.NewReviewRepo(db)
	userRepo := postgres.NewUserRepo(db)

	geocoder, err := newGeocoder(cfg)
	if err != nil {
		return err
	}
	cityCache, closeCache, err := newCityCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	resolver := service.NewPlaceResolver(geocoder, cityCache, placeRepo, logger.Named("resolver"), service.PlaceResolverConfig{
		Timeout:     cfg.GeocoderTimeout,
		SearchLimit: cfg.CitySearchLimit,
	})

	var storage ports.ObjectStorage
	if cfg.PhotosEnabled() {
		client, err := miniorepo.NewClient(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOUseSSL)
		if err != nil {
			return fmt.Errorf("minio client: %w", err)
		}
		photoStore, err := miniorepo.NewStorage(ctx, client, cfg.MinIOBucketPlaces, cfg.MinIOPublicURL)
		if err != nil {
			return err
		}
		storage = photoStore
		logger.Info("place photos enabled", zap.String("bucket", cfg.MinIOBucketPlaces))
	}

	placeService := service.NewPlaceService(placeRepo, storage, service.PlaceServiceConfig{
		MaxPhotoBytes:     cfg.PlacePhotoMaxBytes,
		ImageProcessor:    media.NewScaleProcessor(cfg.PlacePhotoMaxDimension),
		ImageMaxDimension: cfg.PlacePhotoMaxDimension,
	})
	reviewService := service.NewReviewService(reviewRepo, userRepo, resolver)
	profileService := service.NewProfileService(userRepo, placeRepo)

	verifiers := []ports.SessionVerifier{
		service.NewJWTSessionVerifier(util.NewJWTManager(cfg.JWTSecret, cfg.SessionTTL)),
	}
	if cfg.GoogleAudience != "" {
		verifiers = append(verifiers, service.NewGoogleSessionVerifier(cfg.GoogleAudience))
	}
	sessions := service.NewSessionService(verifiers...)

	e := httpx.NewRouter(httpx.RouterConfig{
		AllowOrigins: cfg.AllowOrigins,
		Logger:       logger,
		Sessions:     sessions,
	})
	httpx.RegisterPlaces(e, placeService, storage != nil)
	httpx.RegisterReviews(e, reviewService)
	httpx.RegisterCities(e, resolver)
	httpx.RegisterProfile(e, profileService)
	httpx.RegisterSwagger(e, "docs/swagger.yaml")

	errCh := make(chan error, 1)
	go func() {
		logger.Info("api listening", zap.String("port", cfg.Port), zap.String("geocoder", cfg.Geocoder))
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

func newGeocoder(cfg config.Config) (ports.Geocoder, error) {
	switch cfg.Geocoder {
	case "", "teleport":
		return geocoding.NewTeleportClient(cfg.TeleportBaseURL, cfg.GeocoderTimeout), nil
	case "google":
		client, err := geocoding.NewGoogleClient(cfg.GoogleMapsAPIKey, cfg.GeocoderTimeout)
		if err != nil {
			return nil, fmt.Errorf("google maps client: %w", err)
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown GEOCODER %q", cfg.Geocoder)
	}
}

func newCityCache(ctx context.Context, cfg config.Config, logger *zap.Logger) (ports.CityCache, func(), error) {
	if cfg.RedisAddr == "" {
		return memory.NewCityCache(), func() {}, nil
	}
	client, err := redisrepo.NewClient(ctx, redisrepo.Config{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}
	logger.Info("city search cache backed by redis", zap.String("addr", cfg.RedisAddr))
	return redisrepo.NewCityCache(client, cfg.CityCacheTTL), func() { _ = client.Close() }, nil
}
