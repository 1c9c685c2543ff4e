package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"unigraph/backend/internal/graph"
	"unigraph/backend/internal/kg"
	"unigraph/backend/internal/source"
	"unigraph/backend/pkg/config"
	"unigraph/backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load(os.Getenv("KG_CONFIG"), nil)
	if err != nil {
		panic(fmt.Sprintf("Failed to load configuration: %v", err))
	}

	// Initialize logger
	if err := logger.Init(cfg.Env, logger.Options{Debug: cfg.Debug, File: cfg.LogFile}); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Starting preview server...")

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := newRouter(log, optionsFrom(cfg))

	// Start server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	log.Info("Server started", zap.String("port", cfg.Port))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

func optionsFrom(cfg *config.Config) kg.Options {
	return kg.Options{
		UniversityName:    cfg.UniversityName,
		UniversityWebsite: cfg.UniversityWebsite,
		CountryCode:       cfg.CountryCode,
		CoursePrefixes:    cfg.CoursePrefixes,
	}
}

// previewResponse is what a preview build would write
type previewResponse struct {
	Statements    []graph.Statement `json:"statements"`
	Report        *kg.Report        `json:"report"`
	Nodes         map[string]int    `json:"nodes"`
	Relationships map[string]int    `json:"relationships"`
}

func newRouter(log *zap.Logger, opts kg.Options) *gin.Engine {
	router := gin.New()
	router.Use(ginLogger(log))
	router.Use(gin.Recovery())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/graph")
	{
		// Build the posted documents against an in-memory store
		api.POST("/preview", func(c *gin.Context) {
			var docs source.Documents
			if err := c.ShouldBindJSON(&docs); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			if docs.Faculty == nil && docs.Course == nil && docs.Contact == nil && docs.General == nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": "at least one of faculty, course, contact, general is required"})
				return
			}

			k := kg.New(opts, log)
			k.Build(docs)

			store := graph.NewMemoryStore()
			report := k.ExecuteAll(c.Request.Context(), store)
			if report.Failed > 0 {
				log.Warn("Preview had failed writes", zap.String("run_id", report.RunID), zap.Int("failed", report.Failed))
			}

			c.JSON(http.StatusOK, previewResponse{
				Statements:    k.Serialize(),
				Report:        report,
				Nodes:         store.NodeCounts(),
				Relationships: store.RelationshipCounts(),
			})
		})

		// Summarize a dry-run artifact
		api.POST("/summary", func(c *gin.Context) {
			var statements []graph.Statement
			if err := c.ShouldBindJSON(&statements); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, graph.Summarize(statements))
		})
	}

	return router
}

// ginLogger is a custom logger middleware for Gin
func ginLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		raw := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		if raw != "" {
			path = path + "?" + raw
		}

		log.Info("HTTP Request",
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Duration("latency", latency),
			zap.String("ip", c.ClientIP()),
		)
	}
}
