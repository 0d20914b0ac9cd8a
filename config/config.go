package config

import (
	"fmt"
	"time"

	"adboard/cache"

	"github.com/gomodule/redigo/redis"
	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/postgres"
	"github.com/kelseyhightower/envconfig"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const DEVELOPMENT = "development"

// DBConf defaults come from the environment (ADBOARD_DB_*); flags on
// the entrypoint override them.
type DBConf struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     int    `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"adboard"`
	Name     string `envconfig:"DB_NAME" default:"adboard"`
	Password string `envconfig:"DB_PASS" default:""`
}

type RedisConf struct {
	Host string `envconfig:"REDIS_HOST" default:"localhost"`
	Port int    `envconfig:"REDIS_PORT" default:"6379"`
}

type Configuration struct {
	AppName         string
	Env             string `envconfig:"ENV" default:"development"`
	Port            int    `envconfig:"PORT" default:"8080"`
	DBInfo          DBConf
	RedisInfo       RedisConf
	CacheTTLSeconds int  `envconfig:"CACHE_TTL_SECONDS" default:"60"`
	DisableCache    bool `envconfig:"DISABLE_CACHE" default:"false"`
	AutoMigrate     bool `envconfig:"AUTO_MIGRATE" default:"false"`
}

// Services holds the process-level connections the entrypoint builds
// once and injects into stores and handlers. Nothing below the
// entrypoint reads it through globals.
type Services struct {
	Db    *gorm.DB
	Redis *redis.Pool
}

var configuration *Configuration
var services *Services

// FromEnv loads defaults from ADBOARD_* environment variables.
func FromEnv(appName string) (*Configuration, error) {
	var config Configuration
	if err := envconfig.Process("adboard", &config); err != nil {
		return nil, errors.Wrap(err, "failed to process env config")
	}
	if err := envconfig.Process("adboard", &config.DBInfo); err != nil {
		return nil, errors.Wrap(err, "failed to process db env config")
	}
	if err := envconfig.Process("adboard", &config.RedisInfo); err != nil {
		return nil, errors.Wrap(err, "failed to process redis env config")
	}
	config.AppName = appName
	return &config, nil
}

// InitConf initializes logging and the shared connections.
func InitConf(config *Configuration) error {
	configuration = config
	initLogging()

	db, err := initDB(config.DBInfo)
	if err != nil {
		return err
	}

	services = &Services{Db: db}
	if !config.DisableCache {
		services.Redis = cache.NewPool(config.RedisInfo.Host, config.RedisInfo.Port)
	}
	return nil
}

func initLogging() {
	log.SetFormatter(&log.JSONFormatter{})
	if IsDevelopment() {
		log.SetLevel(log.DebugLevel)
	}
}

func initDB(conf DBConf) (*gorm.DB, error) {
	// connect_timeout bounds dials; statement_timeout bounds every
	// query so a stuck store call surfaces as a retryable error
	// instead of hanging.
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s dbname=%s password=%s sslmode=disable connect_timeout=5 statement_timeout=10000",
		conf.Host, conf.Port, conf.User, conf.Name, conf.Password)

	db, err := gorm.Open("postgres", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}
	db.DB().SetMaxOpenConns(20)
	db.DB().SetMaxIdleConns(5)
	db.DB().SetConnMaxLifetime(30 * time.Minute)
	db.LogMode(IsDevelopment())
	return db, nil
}

func GetConfig() *Configuration {
	return configuration
}

func GetServices() *Services {
	return services
}

func IsDevelopment() bool {
	return configuration == nil || configuration.Env == DEVELOPMENT
}

func CacheTTL() time.Duration {
	if configuration == nil {
		return time.Minute
	}
	return time.Duration(configuration.CacheTTLSeconds) * time.Second
}
