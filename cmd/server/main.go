package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mxcd/apod-web/internal/download"
	"github.com/mxcd/apod-web/internal/nasa"
	"github.com/mxcd/apod-web/internal/server"
	"github.com/mxcd/apod-web/internal/store"
	"github.com/mxcd/apod-web/internal/util"
	"github.com/mxcd/go-config/config"
	"github.com/rs/zerolog/log"
)

func main() {
	if err := util.InitConfig(); err != nil {
		log.Panic().Err(err).Msg("error initializing config")
	}
	config.Print()

	if err := util.InitLogger(); err != nil {
		log.Panic().Err(err).Msg("error initializing logger")
	}

	devMode := config.Get().Bool("DEV")
	apiKey := config.Get().String("NASA_API_KEY")
	if apiKey == "" {
		log.Warn().Msg("NASA_API_KEY is empty; upstream requests will be rejected")
	}

	mediaStore, err := store.NewStore(config.Get().String("DOWNLOADS_DIR"))
	if err != nil {
		log.Panic().Err(err).Msg("error initializing download store")
	}

	s, err := server.NewServer(&server.ServerOptions{
		DevMode:    devMode,
		Port:       config.Get().Int("PORT"),
		BaseURL:    config.Get().String("BASE_URL"),
		APOD:       nasa.NewClient(config.Get().String("APOD_API_URL"), apiKey, nasa.NewMetadataFetcher()),
		Downloader: download.NewDownloader(download.NewMediaFetcher(), mediaStore),
		Store:      mediaStore,
	})
	if err != nil {
		log.Panic().Err(err).Msg("error initializing server")
	}

	if err := s.RegisterRoutes(); err != nil {
		log.Panic().Err(err).Msg("error registering routes")
	}

	// Start server in a goroutine so we can listen for shutdown signals
	go func() {
		if err := s.Run(); err != nil {
			log.Panic().Err(err).Msg("error running server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info().Str("signal", sig.String()).Msg("received shutdown signal")

	// grace period for in-flight requests
	ctx, cancel := context.WithTimeout(context.Background(), download.Timeout+5*time.Second)
	defer cancel()

	s.Shutdown(ctx)
	log.Info().Msg("server shutdown complete")
}
