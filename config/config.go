package config

import "time"

type Config struct {
	AppName                       string `env:"APP_NAME" env-default:"ipet-api"`
	Port                          int    `env:"PORT" env-default:"3000"`
	LogLevel                      string `env:"LOG_LEVEL" env-default:"info"`
	PrettyLogs                    bool   `env:"PRETTY_LOGS" env-default:"false"`
	HttpServerWriteTimeoutSeconds int    `env:"HTTP_SERVER_WRITE_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerReadTimeoutSeconds  int    `env:"HTTP_SERVER_READ_TIMEOUT_SECONDS" env-default:"10"`
	HttpServerIdleTimeoutSeconds  int    `env:"HTTP_SERVER_IDLE_TIMEOUT_SECONDS" env-default:"10"`

	// Database driver
	DatabaseDriver string `env:"DB_DRIVER" env-default:"postgres"`
	// Database host
	DatabaseHost string `env:"DB_HOST" env-default:""`
	// Database port
	DatabasePort string `env:"DB_PORT" env-default:"5432"`
	// Database user
	DatabaseUserName string `env:"DB_USER_NAME" env-default:""`
	// Database user password
	DatabasePassword string `env:"DB_PASSWORD" env-default:""`
	// Database name
	DatabaseName string `env:"DB_NAME" env-default:"ipet"`
	// Database SSL Mode
	DatabaseSSLMode string `env:"DB_SQL_MODE" env-default:"disable"`
	// Max Open Conns
	DatabaseMaxOpenConns int `env:"DB_MAX_OPEN_CONNS" env-default:"25"`
	// Max Idle Conns
	DatabaseMaxIdleConns int `env:"DB_MAX_IDLE_CONNS" env-default:"10"`
	// Conn Max Lifetime
	DatabaseConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME" env-default:"10s"`
	// Migration Folder Path
	DatabaseMigrationFolderPath string `env:"DB_MIGRATION_FOLDER_PATH" env-default:"db/pg"`
	// Database Migration Version
	DatabaseMigrationVersion int `env:"DB_MIGRATION_VERSION" env-default:"0"`
	// Database Migration Force
	DatabaseMigrationForce int `env:"DB_MIGRATION_FORCE" env-default:"0"`
	// Database Migration Auto Rollback
	DatabaseMigrationAutoRollback bool `env:"DB_MIGRATION_AUTO_ROLLBACK" env-default:"true"`

	// Auth Enabled - when false, allows X-User-ID header for testing
	AuthEnabled bool `env:"AUTH_ENABLED" env-default:"false"`
	// Auth Issuer URL
	AuthIssuerURL string `env:"AUTH_ISSUER_URL" env-default:""`
	// Auth Client ID
	AuthClientID string `env:"AUTH_CLIENT_ID" env-default:""`

	// Redis host
	RedisHost string `env:"REDIS_HOST" env-default:"localhost"`
	// Redis port
	RedisPort int `env:"REDIS_PORT" env-default:"6379"`
	// Redis password
	RedisPassword string `env:"REDIS_PASSWORD" env-default:""`
	// Redis database number
	RedisDB int `env:"REDIS_DB" env-default:"0"`

	// Kafka brokers
	KafkaBrokers []string `env:"KAFKA_BROKERS" env-default:"localhost:9092"`
	// Kafka topic for association lifecycle events
	KafkaAssociationTopic string `env:"KAFKA_ASSOCIATION_TOPIC" env-default:"association-events"`
	// Kafka producer enabled
	KafkaProducerEnabled bool `env:"KAFKA_PRODUCER_ENABLED" env-default:"true"`
	// Kafka producer batch size
	KafkaBatchSize int `env:"KAFKA_BATCH_SIZE" env-default:"100"`
	// Kafka producer batch timeout
	KafkaBatchTimeout time.Duration `env:"KAFKA_BATCH_TIMEOUT" env-default:"100ms"`
	// Kafka required acks (0 = none, 1 = leader, -1 = all)
	KafkaRequiredAcks int `env:"KAFKA_REQUIRED_ACKS" env-default:"1"`

	// Offline base sync settings
	// SSH host serving the offline base file
	SSHHost string `env:"SSH_HOST" env-default:""`
	// SSH port
	SSHPort int `env:"SSH_PORT" env-default:"22"`
	// SSH user
	SSHUser string `env:"SSH_USER" env-default:""`
	// SSH password
	SSHPassword string `env:"SSH_PASSWORD" env-default:""`
	// SSH connect timeout
	SSHConnectTimeout time.Duration `env:"SSH_CONNECT_TIMEOUT" env-default:"10s"`
	// Remote path of the offline base file
	OfflineBaseFilePath string `env:"DB_FILE_PATH" env-default:""`
	// Local directory the offline base file is copied into
	LocalDataDir string `env:"LOCAL_DATA_DIR" env-default:"."`
	// Interval between sync runs
	SyncInterval time.Duration `env:"SYNC_INTERVAL" env-default:"20s"`
	// How stale a delayed tick may be and still fire
	SyncMisfireGrace time.Duration `env:"SYNC_MISFIRE_GRACE" env-default:"15m"`
	// Enable/disable the sync scheduler
	SyncEnabled bool `env:"SYNC_ENABLED" env-default:"true"`
}
