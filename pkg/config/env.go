package config

const (
	EnvMongoURI          = "MONGO_URI"
	EnvMongoDatabaseName = "MONGO_DATABASE_NAME"
	EnvMongoConnTimeout  = "MONGO_CONN_TIMEOUT"

	EnvRedisAddr     = "REDIS_ADDR"
	EnvRedisPassword = "REDIS_PASSWORD"
	EnvRedisDB       = "REDIS_DB"

	EnvPort     = "PORT"
	EnvLogLevel = "LOG_LEVEL"
	EnvEnvFile  = "ENV_FILE"

	EnvRateLimitRequests = "RATE_LIMIT_REQUESTS"
	EnvRateLimitWindow   = "RATE_LIMIT_WINDOW"

	EnvRequestTimeout = "REQUEST_TIMEOUT"
	EnvIdempotencyTTL = "IDEMPOTENCY_TTL"
	EnvMaxRequestSize = "MAX_REQUEST_SIZE"

	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvIdleTimeout     = "IDLE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"

	EnvJWTSecret        = "JWT_SECRET"
	EnvTokenTTL         = "TOKEN_TTL"
	EnvGoogleClientID   = "GOOGLE_CLIENT_ID"
	EnvFacebookGraphURL = "FACEBOOK_GRAPH_URL"

	EnvNavOwnerSeesGames      = "NAV_OWNER_SEES_GAMES"
	EnvGameJoinMaxAttempts    = "GAME_JOIN_MAX_ATTEMPTS"
	EnvFieldUpdateMaxAttempts = "FIELD_UPDATE_MAX_ATTEMPTS"
	EnvRentalLockTTL          = "RENTAL_LOCK_TTL"

	EnvLiveBufferSize = "LIVE_BUFFER_SIZE"
	EnvLiveOrigins    = "LIVE_ORIGINS"
	EnvWebRoot        = "WEB_ROOT"

	EnvKafkaEnabled = "KAFKA_ENABLED"
	EnvEventsTopic  = "EVENTS_TOPIC"
)
