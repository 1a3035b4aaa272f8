package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/Chandru2600/Vaidra/internal/sdk/sqldb"
	"github.com/Chandru2600/Vaidra/internal/services/analysis"
	"github.com/Chandru2600/Vaidra/internal/services/hash"
	"github.com/Chandru2600/Vaidra/internal/services/sentry"
	"github.com/Chandru2600/Vaidra/internal/services/storage"
	"github.com/Chandru2600/Vaidra/internal/services/token"
)

// Analyzer produces a diagnosis envelope for an image on local disk.
type Analyzer interface {
	Analyze(ctx context.Context, localPath string) (analysis.Envelope, error)
}

type App struct {
	db        sqldb.Service
	sentry    *sentry.Service
	tokens    *token.Service
	hash      *hash.Service
	storage   *storage.Service
	analysis  Analyzer
	uploadDir string
}

func NewApp(
	db sqldb.Service,
	sentry *sentry.Service,
	tokens *token.Service,
	hash *hash.Service,
	storage *storage.Service,
	analysis Analyzer,
	uploadDir string,
) *App {
	return &App{
		db:        db,
		sentry:    sentry,
		tokens:    tokens,
		hash:      hash,
		storage:   storage,
		analysis:  analysis,
		uploadDir: uploadDir,
	}
}

func (a *App) toSentry(c *gin.Context, handler, errType string, level sentry.Level, err error) {
	a.sentry.WithScope(func(scope *sentry.Scope) {
		scope.SetTag("handler", handler)
		scope.SetExtra("error_type", errType)
		scope.SetLevel(level)
		if reqID := c.GetHeader("X-Request-ID"); reqID != "" {
			scope.SetTag("request_id", reqID)
		}
		a.sentry.CaptureException(err)
	})
}
