package configuration

import (
	"fmt"
	"os"
	"strconv"

	"youtube-auto-post/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	App         App         `json:"app"`
	Database    Database    `json:"database"`
	RedisClient RedisClient `json:"redisClient"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	Logger      Logger      `json:"logger"`
	YouTube     YouTube     `json:"youtube"`
	Scheduler   Scheduler   `json:"scheduler"`
}

type App struct {
	Port         int      `json:"port"`
	SecretKey    string   `json:"secretKey"`
	TLSEnabled   bool     `json:"tlsEnabled"`
	TLSCertFile  string   `json:"tlsCertFile"`
	TLSKeyFile   string   `json:"tlsKeyFile"`
	AllowOrigins []string `json:"allowOrigins"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type Logger struct {
	Level string `json:"level"`
}

type YouTube struct {
	// ChunkSize is the resumable upload chunk size in bytes. Zero sends the
	// media in a single request.
	ChunkSize            int    `json:"chunkSize"`
	TokenBackend         string `json:"tokenBackend"`
	TokenFile            string `json:"tokenFile"`
	AuthTimeoutSeconds   int    `json:"authTimeoutSeconds"`
	RedirectURI          string `json:"redirectURI"`
	LocalAuthPort        int    `json:"localAuthPort"`
	UploadLockTTLMinutes int    `json:"uploadLockTTLMinutes"`
}

type Scheduler struct {
	Enabled         bool `json:"enabled"`
	IntervalSeconds int  `json:"intervalSeconds"`
	Concurrency     int  `json:"concurrency"`
}

const (
	TokenBackendFile     = "file"
	TokenBackendPostgres = "postgres"
	TokenBackendMSSQL    = "mssql"

	defaultPort          = 10001
	defaultChunkSize     = 8 * 1024 * 1024
	defaultTokenFile     = "static/token_youtube_v3.json"
	defaultAuthTimeout   = 300
	defaultUploadLockTTL = 2
	defaultSweepInterval = 60
	defaultSweepWorkers  = 2
)

var C Config

func init() {
	LoadEnvFromFile("config.env", ".env")
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initYouTube(&C)
	initScheduler(&C)
	logger.SetLevel(getConfigValue(C.Logger.Level, "LOG_LEVEL", "debug"))
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	C.Database.Psql.Name = getConfigValue(C.Database.Psql.Name, "DB_NAME", "youtube_auto_post")
	C.Database.Psql.Host = getConfigValue(C.Database.Psql.Host, "DB_HOST", "localhost")
	C.Database.Psql.Port = getConfigValue(C.Database.Psql.Port, "DB_PORT", "5432")
	C.Database.Psql.User = getConfigValue(C.Database.Psql.User, "DB_USER", "postgres")
	C.Database.Psql.Password = getConfigValue(C.Database.Psql.Password, "DB_PASSWORD", "")
	C.Database.Psql.SSLMode = getConfigValue(C.Database.Psql.SSLMode, "DB_SSLMODE", "disable")

	C.Database.MySql.Name = getConfigValue(C.Database.MySql.Name, "MYSQL_DB_NAME", "youtube_auto_post")
	C.Database.MySql.Host = getConfigValue(C.Database.MySql.Host, "MYSQL_HOST", "localhost")
	C.Database.MySql.Port = getConfigValue(C.Database.MySql.Port, "MYSQL_PORT", "3306")
	C.Database.MySql.User = getConfigValue(C.Database.MySql.User, "MYSQL_USER", "root")
	C.Database.MySql.Password = getConfigValue(C.Database.MySql.Password, "MYSQL_PASSWORD", "")

	// MSSQL only backs the token cache, so it stays empty unless configured.
	C.Database.Mssql.Name = getConfigValue(C.Database.Mssql.Name, "MSSQL_DB_NAME", "")
	C.Database.Mssql.Host = getConfigValue(C.Database.Mssql.Host, "MSSQL_HOST", "")
	C.Database.Mssql.Port = getConfigValue(C.Database.Mssql.Port, "MSSQL_PORT", "1433")
	C.Database.Mssql.User = getConfigValue(C.Database.Mssql.User, "MSSQL_USER", "")
	C.Database.Mssql.Password = getConfigValue(C.Database.Mssql.Password, "MSSQL_PASSWORD", "")

	C.Database.Mongo.Host = getConfigValue(C.Database.Mongo.Host, "MONGO_HOST", "")
	C.Database.Mongo.Name = getConfigValue(C.Database.Mongo.Name, "MONGO_DB_NAME", "youtube_auto_post")
}

func initApp(C *Config) {
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = defaultPort
	}
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			C.App.TLSEnabled = b
		}
	}
	C.App.TLSCertFile = getConfigValue(C.App.TLSCertFile, "TLS_CERT_FILE", "")
	C.App.TLSKeyFile = getConfigValue(C.App.TLSKeyFile, "TLS_KEY_FILE", "")
	if len(C.App.AllowOrigins) == 0 {
		C.App.AllowOrigins = []string{"http://localhost:4200"}
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

func initYouTube(C *Config) {
	C.YouTube.TokenBackend = getConfigValue(C.YouTube.TokenBackend, "YOUTUBE_TOKEN_BACKEND", TokenBackendFile)
	C.YouTube.TokenFile = getConfigValue(C.YouTube.TokenFile, "YOUTUBE_TOKEN_FILE", defaultTokenFile)
	scheme := "http"
	if C.App.TLSEnabled {
		scheme = "https"
	}
	C.YouTube.RedirectURI = getConfigValue(C.YouTube.RedirectURI, "YOUTUBE_REDIRECT_URL",
		fmt.Sprintf("%s://localhost:%d/auth/youtube/callback", scheme, C.App.Port))
	if C.YouTube.ChunkSize < 0 {
		C.YouTube.ChunkSize = 0
	} else if C.YouTube.ChunkSize == 0 && !viper.IsSet("youtube.chunkSize") {
		C.YouTube.ChunkSize = defaultChunkSize
	}
	C.YouTube.AuthTimeoutSeconds = getIntValue(C.YouTube.AuthTimeoutSeconds, "YOUTUBE_AUTH_TIMEOUT_SECONDS", defaultAuthTimeout)
	C.YouTube.UploadLockTTLMinutes = getIntValue(C.YouTube.UploadLockTTLMinutes, "YOUTUBE_UPLOAD_LOCK_TTL_MINUTES", defaultUploadLockTTL)
}

func initScheduler(C *Config) {
	if !viper.IsSet("scheduler.enabled") {
		C.Scheduler.Enabled = true
	}
	C.Scheduler.IntervalSeconds = getIntValue(C.Scheduler.IntervalSeconds, "SCHEDULER_INTERVAL_SECONDS", defaultSweepInterval)
	C.Scheduler.Concurrency = getIntValue(C.Scheduler.Concurrency, "SCHEDULER_CONCURRENCY", defaultSweepWorkers)
}
