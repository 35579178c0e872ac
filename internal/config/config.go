package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port            string
	DatabaseURL     string
	DBAutoMigrate   bool
	DBMaxOpenConns  int
	JWTSecret       string
	SessionTTL      time.Duration
	GoogleAudience  string
	AllowOrigins    []string
	LogLevel        string
	LogFormat       string
	LogstashTCPAddr string

	Geocoder         string
	TeleportBaseURL  string
	GoogleMapsAPIKey string
	GeocoderTimeout  time.Duration
	CitySearchLimit  int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	CityCacheTTL  time.Duration

	MinIOEndpoint     string
	MinIOAccessKey    string
	MinIOSecretKey    string
	MinIOUseSSL       bool
	MinIOBucketPlaces string
	MinIOPublicURL    string

	PlacePhotoMaxBytes     int64
	PlacePhotoMaxDimension int
}

// PhotosEnabled reports whether object storage is configured for place
// photos.
func (c Config) PhotosEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

func Load() Config {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	return Config{
		Port:            getenv("PORT", "8080"),
		DatabaseURL:     must("DATABASE_URL"),
		DBAutoMigrate:   getenv("DB_AUTO_MIGRATE", "false") == "true",
		DBMaxOpenConns:  getInt("DB_MAX_OPEN_CONNS", 25),
		JWTSecret:       must("JWT_SECRET"),
		SessionTTL:      getDuration("SESSION_TTL", 24*time.Hour),
		GoogleAudience:  getenv("GOOGLE_AUDIENCE", ""),
		AllowOrigins:    splitAndTrim(getenv("ALLOW_ORIGINS", "*")),
		LogLevel:        getenv("LOG_LEVEL", "info"),
		LogFormat:       getenv("LOG_FORMAT", "json"),
		LogstashTCPAddr: getenv("LOGSTASH_TCP_ADDR", ""),

		Geocoder:         strings.ToLower(getenv("GEOCODER", "teleport")),
		TeleportBaseURL:  getenv("TELEPORT_BASE_URL", ""),
		GoogleMapsAPIKey: getenv("GOOGLE_MAPS_API_KEY", ""),
		GeocoderTimeout:  getDuration("GEOCODER_TIMEOUT", 5*time.Second),
		CitySearchLimit:  getInt("CITY_SEARCH_LIMIT", 10),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getInt("REDIS_DB", 0),
		CityCacheTTL:  getDuration("CITY_CACHE_TTL", 0),

		MinIOEndpoint:     getenv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:    getenv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:    getenv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:       getenv("MINIO_USE_SSL", "false") == "true",
		MinIOBucketPlaces: getenv("MINIO_BUCKET_PLACES", "cityscore-places"),
		MinIOPublicURL:    getenv("MINIO_PUBLIC_URL", ""),

		PlacePhotoMaxBytes:     getInt64("PLACE_PHOTO_MAX_BYTES", 5*1024*1024),
		PlacePhotoMaxDimension: getInt("PLACE_PHOTO_MAX_DIMENSION", 1920),
	}
}

func splitAndTrim(input string) []string {
	parts := strings.Split(input, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getInt(k string, d int) int {
	if v, err := strconv.Atoi(getenv(k, "")); err == nil && v >= 0 {
		return v
	}
	return d
}

func getInt64(k string, d int64) int64 {
	if v, err := strconv.ParseInt(getenv(k, ""), 10, 64); err == nil && v > 0 {
		return v
	}
	return d
}

// getDuration falls back to d when the value is missing or unparsable.
func getDuration(k string, d time.Duration) time.Duration {
	raw := getenv(k, "")
	if raw == "" {
		return d
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v < 0 {
		log.Printf("Warning: invalid duration for %s=%q, using %s", k, raw, d)
		return d
	}
	return v
}

func must(k string) string {
	v := os.Getenv(k)
	if v == "" {
		panic("missing env: " + k)
	}
	return v
}
