package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "playday"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultRedisDB = 0

	DefaultPort     = "8080"
	DefaultLogLevel = "info"
	DefaultEnvFile  = ".env"

	DefaultRateLimitRequests = 60
	DefaultRateLimitWindow   = 1 * time.Minute

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultTokenTTL         = 24 * time.Hour
	DefaultFacebookGraphURL = "https://graph.facebook.com"
	MinJWTSecretLength      = 32

	DefaultNavOwnerSeesGames      = false
	DefaultGameJoinMaxAttempts    = 5
	DefaultFieldUpdateMaxAttempts = 3
	DefaultRentalLockTTL          = 45 * time.Second

	DefaultLiveBufferSize = 32

	DefaultKafkaEnabled = false
	DefaultEventsTopic  = "playday.events"

	DefaultPaginationLimit = 100
)
