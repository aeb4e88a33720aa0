package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/azaliaz/bookstore/internal/config"
	"github.com/azaliaz/bookstore/internal/logger"
	"github.com/azaliaz/bookstore/internal/server"
	"github.com/azaliaz/bookstore/internal/storage"
)

func main() {
	cfg, err := config.ReadConfig()
	if err != nil {
		log.Fatal(err)
	}
	log := logger.Get(cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
		<-c

		log.Debug().Msg("ctx cancel; catch os signal")
		cancel()
	}()

	log.Debug().
		Str("addr", cfg.Addr).
		Str("migrations", cfg.MigratePath).
		Bool("in_memory", cfg.InMemory).
		Int32("db_max_conns", cfg.DBMaxConns).
		Float64("auth_rps", cfg.AuthRPS).
		Int("auth_burst", cfg.AuthBurst).
		Msg("config loaded")

	var stor server.Storage
	if cfg.InMemory {
		log.Warn().Msg("using in-memory storage; data is lost on exit")
		stor = storage.New()
	} else {
		if err = storage.Migrations(cfg.DBDsn, cfg.MigratePath); err != nil {
			log.Fatal().Err(err).Msg("migrations failed")
		}
		db, err := storage.NewDB(ctx, cfg.DBDsn, cfg.DBMaxConns)
		if err != nil {
			log.Fatal().Err(err).Msg("connecting to data base failed")
		}
		defer db.Close()
		stor = db
	}

	serv := server.New(*cfg, stor)
	group, gCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return serv.Run(gCtx)
	})
	group.Go(func() error {
		<-gCtx.Done()
		return serv.ShutdownServer()
	})

	if err = group.Wait(); err != nil {
		log.Info().Str("stoping reason", err.Error()).Msg("server stopped")
		return
	}
	log.Info().Msg("server stopped")
}
