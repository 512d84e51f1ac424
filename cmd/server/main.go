package main

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/shehrozeikram/ERP-sub001/internal/config"
	"github.com/shehrozeikram/ERP-sub001/internal/db"
	"github.com/shehrozeikram/ERP-sub001/internal/directory"
	"github.com/shehrozeikram/ERP-sub001/internal/push"
	"github.com/shehrozeikram/ERP-sub001/internal/routes"
	"github.com/shehrozeikram/ERP-sub001/internal/store"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config error")
	}

	database, err := db.Open(cfg.DbDsn)
	if err != nil {
		log.Fatal().Err(err).Msg("db error")
	}

	service, err := push.NewService(cfg, store.NewGormStore(database), directory.NewGormDirectory(database))
	if err != nil {
		log.Fatal().Err(err).Msg("push service error")
	}

	if err := service.Start(); err != nil {
		log.Fatal().Err(err).Msg("push server error")
	}
	defer service.Stop()

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())

	routes.Register(router, service, cfg)

	if err := router.Run(cfg.Addr); err != nil {
		log.Fatal().Err(err).Msg("server error")
	}
}
