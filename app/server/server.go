package server

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strconv"

	"pdfcombine/app/api"
	"pdfcombine/app/middleware"
	"pdfcombine/store"
	"pdfcombine/types"

	"github.com/gofiber/fiber/v2"
)

var config = fiber.Config{
	ErrorHandler: api.ErrorHandler,
	BodyLimit:    100 * 1024 * 1024, // scanned PDFs are large
}

type Server struct {
	listenAddr string
	cfg        types.Config
	logger     *slog.Logger
}

func NewServer(cfg types.Config) *Server {
	return &Server{
		listenAddr: cfg.ServerAddr,
		cfg:        cfg,
		logger:     slog.Default(),
	}
}

func (s *Server) Stop() {
	s.logger.Info("server stopped")
}

func (s *Server) Run() {
	ctx := context.Background()
	port, _ := strconv.Atoi(os.Getenv("PG_PORT"))
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable", os.Getenv("PG_HOST"), port, os.Getenv("PG_USER"), os.Getenv("PG_PASS"), os.Getenv("PG_DB_NAME"))
	pool, err := store.NewPostgresStore(ctx, connStr)
	if err != nil {
		log.Fatal("error to connect to Postgres database", err)
		return
	}

	if err := pool.Init(ctx); err != nil {
		log.Fatal("error to create tables", err)
		return
	}

	var (
		app           = fiber.New(config)
		checkHandler  = api.NewCheckHandler()
		fileHandler   = api.NewFileHandler(s.cfg)
		jobHandler    = api.NewJobHandler(s.cfg, pool)
		configHandler = api.NewConfigHandler(s.cfg)
		check         = app.Group("/check")
		apiv1         = app.Group("/api/v1")
	)

	app.Use(middleware.PlugStatic("/outputs"))
	app.Static("/outputs", s.cfg.OutputDir)

	check.Get("/healthy", checkHandler.HandleHealthy)
	apiv1.Get("/config", configHandler.HandleGetConfig)
	apiv1.Post("/files", fileHandler.HandleUpload)
	apiv1.Post("/jobs", jobHandler.HandleCombine)
	apiv1.Get("/jobs", jobHandler.HandleListJobs)
	apiv1.Get("/jobs/:id", jobHandler.HandleGetJob)

	err = app.Listen(s.listenAddr)
	if err != nil {
		s.logger.Error("error to start server", "error", err.Error())
		return
	}
}
