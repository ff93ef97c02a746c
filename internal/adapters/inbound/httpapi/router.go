// Package httpapi exposes the analysis service over HTTP with gin.
package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/complyai/comply/internal/domain"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// Analyzer is the slice of the application layer the HTTP API needs.
type Analyzer interface {
	RunAnalysis(ctx context.Context, input domain.AnalysisInput) (*domain.ComplianceReport, error)
	Rules() *domain.RuleSet
}

const serviceName = "comply"

// multipartOverhead is allowed on top of the upload cap for form framing
// and the repo_url field.
const multipartOverhead = 1 << 20

// NewRouter builds the gin engine with every route and middleware.
func NewRouter(svc Analyzer, extractor domain.DocumentExtractor, cfg domain.ServiceConfig, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.MaxMultipartMemory = cfg.MaxUploadBytes + multipartOverhead

	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(RequestLogger(logger))
	r.Use(cors.New(corsConfig(cfg.AllowedOrigins)))

	NewHealthHandler(serviceName, cfg.Version).RegisterRoutes(r)

	h := &AnalysisHandler{
		svc:       svc,
		extractor: extractor,
		maxUpload: cfg.MaxUploadBytes,
	}
	limiter := rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst)
	r.POST("/analyze", RateLimit(limiter), h.Analyze)
	r.GET("/rules", h.ListRules)

	return r
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", HeaderRequestID},
		ExposeHeaders: []string{HeaderRequestID},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}
