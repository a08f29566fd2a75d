// Package server exposes the complaint pipeline over HTTP for the desktop
// frontend: upload-and-extract, verify-and-save, listing, letter runs.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"log/slog"

	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/docread"
	"github.com/ncrp-tools/complaints-tracker/internal/export"
	"github.com/ncrp-tools/complaints-tracker/internal/letters"
	"github.com/ncrp-tools/complaints-tracker/internal/repository"
	"github.com/ncrp-tools/complaints-tracker/internal/staging"
)

// DocumentReader reads a source document into text; *docread.Reader.
type DocumentReader interface {
	Read(ctx context.Context, path string) (docread.Result, error)
}

// LetterGenerator runs one letter-generation request; *letters.Engine.
type LetterGenerator interface {
	Generate(ctx context.Context, req letters.Request) (letters.Result, error)
}

type Server struct {
	cfg     *common.Config
	logger  *slog.Logger
	repo    repository.ComplaintRepository
	staging *staging.Staging
	ledger  *export.Ledger
	reader  DocumentReader
	letters LetterGenerator
}

func NewServer(
	cfg *common.Config,
	repo repository.ComplaintRepository,
	stg *staging.Staging,
	ledger *export.Ledger,
	reader DocumentReader,
	gen LetterGenerator,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{
		cfg:     cfg,
		logger:  logger,
		repo:    repo,
		staging: stg,
		ledger:  ledger,
		reader:  reader,
		letters: gen,
	}
}

// Router builds the gin engine with all routes attached.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Length", "Content-Type", "Accept"},
		MaxAge:          12 * time.Hour,
	}))

	api := r.Group("/api")
	api.POST("/upload", s.handleUpload)
	api.POST("/verify", s.handleVerify)
	api.GET("/complaints", s.handleComplaints)
	api.POST("/letters", s.handleLetters)
	api.GET("/config", s.handleConfig)

	r.Static(s.cfg.Server.UploadsBase, s.cfg.Server.UploadDir)
	return r
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("http server listening", "addr", s.cfg.Server.HTTPAddr)
	return s.Router().Run(s.cfg.Server.HTTPAddr)
}

func (s *Server) respondError(c *gin.Context, err error) {
	s.logger.Error("request failed", "path", c.FullPath(), "error", err)
	c.JSON(common.HTTPStatus(err), gin.H{"error": err.Error()})
}

func (s *Server) handleConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"API_BASE":      s.cfg.Server.APIBaseURL,
		"UPLOADS_ROUTE": s.cfg.Server.UploadsBase,
	})
}
