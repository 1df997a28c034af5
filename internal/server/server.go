package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/mxcd/apod-web/internal/download"
	"github.com/mxcd/apod-web/internal/nasa"
	"github.com/mxcd/apod-web/internal/store"
	"github.com/mxcd/apod-web/internal/web"
	"github.com/mxcd/apod-web/internal/ws"
	"github.com/rs/zerolog/log"
)

const (
	apiBasePath       = "/api"
	downloadsBasePath = "/downloads"
)

type ServerOptions struct {
	DevMode bool
	Port    int
	// BaseURL is the externally reachable root, used in QR codes.
	BaseURL    string
	APOD       *nasa.Client
	Downloader *download.Downloader
	Store      *store.Store
}

type Server struct {
	Options    *ServerOptions
	Engine     *gin.Engine
	HttpServer *http.Server
	API        *gin.RouterGroup
	APOD       *nasa.Client
	Downloader *download.Downloader
	Store      *store.Store
	Hub        *ws.Hub
}

func NewServer(options *ServerOptions) (*Server, error) {
	if options == nil {
		return nil, fmt.Errorf("server options cannot be nil")
	}
	if options.APOD == nil {
		return nil, fmt.Errorf("server options APOD cannot be nil")
	}
	if options.Downloader == nil {
		return nil, fmt.Errorf("server options Downloader cannot be nil")
	}
	if options.Store == nil {
		return nil, fmt.Errorf("server options Store cannot be nil")
	}
	options.BaseURL = strings.TrimRight(options.BaseURL, "/")

	server := &Server{
		Options:    options,
		APOD:       options.APOD,
		Downloader: options.Downloader,
		Store:      options.Store,
		Hub:        ws.NewHub(),
	}

	if !server.Options.DevMode {
		log.Info().Msg("Running Gin in production mode")
		gin.SetMode(gin.ReleaseMode)
	} else {
		log.Info().Msg("Running Gin in development mode")
	}

	engine := gin.New()
	server.Engine = engine
	server.Engine.Use(gin.Recovery(), requestID(), requestLogger())

	server.HttpServer = &http.Server{
		Addr:    fmt.Sprintf(":%d", options.Port),
		Handler: engine,
	}

	return server, nil
}

func (s *Server) RegisterRoutes() error {
	s.Engine.GET("/", s.indexHandler())

	s.API = s.Engine.Group(apiBasePath)
	s.API.GET("/health", s.getHealthHandler())
	s.API.GET("/version", s.getVersionHandler())
	s.API.GET("/apod", s.apodHandler())
	s.API.POST("/download", s.downloadHandler())
	s.API.GET("/qr/:filename", s.qrHandler())
	s.API.GET("/events", s.eventsHandler())

	s.Engine.GET(downloadsBasePath+"/:filename", s.serveDownloadHandler())

	web.RegisterStaticFiles(s.Engine)
	return nil
}

func (s *Server) Run() error {
	log.Info().Str("addr", s.HttpServer.Addr).Str("downloads", s.Store.Dir()).Msg("server: listening")
	if err := s.HttpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) {
	s.Hub.CloseAll()
	if err := s.HttpServer.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server: shutdown failed")
	}
}
