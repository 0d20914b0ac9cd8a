package main

import (
	"flag"
	"fmt"

	"adboard/cache"
	C "adboard/config"
	H "adboard/handler"
	"adboard/model/store"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// ./app --env=development --api_http_port=8080 --db_host=localhost --db_port=5432 --db_user=adboard --db_name=adboard --db_pass=secret --redis_host=localhost --redis_port=6379 --auto_migrate
func main() {
	defaults, err := C.FromEnv("app_server")
	if err != nil {
		log.WithError(err).Fatal("Failed to read environment config.")
	}

	env := flag.String("env", defaults.Env, "")
	port := flag.Int("api_http_port", defaults.Port, "")

	dbHost := flag.String("db_host", defaults.DBInfo.Host, "")
	dbPort := flag.Int("db_port", defaults.DBInfo.Port, "")
	dbUser := flag.String("db_user", defaults.DBInfo.User, "")
	dbName := flag.String("db_name", defaults.DBInfo.Name, "")
	dbPass := flag.String("db_pass", defaults.DBInfo.Password, "")

	redisHost := flag.String("redis_host", defaults.RedisInfo.Host, "")
	redisPort := flag.Int("redis_port", defaults.RedisInfo.Port, "")

	cacheTTL := flag.Int("cache_ttl_seconds", defaults.CacheTTLSeconds, "")
	disableCache := flag.Bool("disable_cache", defaults.DisableCache, "")
	autoMigrate := flag.Bool("auto_migrate", defaults.AutoMigrate, "Create or update the schema on boot.")
	flag.Parse()

	config := &C.Configuration{
		AppName: "app_server",
		Env:     *env,
		Port:    *port,
		DBInfo: C.DBConf{
			Host:     *dbHost,
			Port:     *dbPort,
			User:     *dbUser,
			Name:     *dbName,
			Password: *dbPass,
		},
		RedisInfo: C.RedisConf{
			Host: *redisHost,
			Port: *redisPort,
		},
		CacheTTLSeconds: *cacheTTL,
		DisableCache:    *disableCache,
		AutoMigrate:     *autoMigrate,
	}

	if err := C.InitConf(config); err != nil {
		log.WithError(err).Fatal("Failed to initialize config and services.")
	}
	services := C.GetServices()
	defer services.Db.Close()

	if config.AutoMigrate {
		if err := store.Migrate(services.Db); err != nil {
			log.WithError(err).Fatal("Failed to migrate schema.")
		}
		log.Info("Schema migrated.")
	}

	dataStore := store.New(services.Db)
	responseCache := cache.NewResponseCache(services.Redis, C.CacheTTL())
	handlers := H.NewHandlers(dataStore, responseCache)

	if !C.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	H.InitRoutes(r, handlers)

	log.WithField("port", config.Port).Info("Starting adboard server.")
	if err := r.Run(fmt.Sprintf(":%d", config.Port)); err != nil {
		log.WithError(err).Fatal("Server exited.")
	}
}
