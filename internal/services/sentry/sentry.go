package sentry

import (
	"log"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/Chandru2600/Vaidra/internal/config"
)

// Aliases so handler code does not import the sentry SDK directly.
type (
	Scope = sentry.Scope
	Level = sentry.Level
)

const (
	LevelError   = sentry.LevelError
	LevelWarning = sentry.LevelWarning
)

// Service provides Sentry error tracking functionality
type Service struct {
	initialized bool
}

// New creates and initializes a new Sentry service. A missing DSN disables
// reporting and every method becomes a no-op.
func New(cfg config.Sentry) *Service {
	if cfg.DSN == "" {
		log.Println("SENTRY_DSN not set, Sentry disabled")
		return &Service{initialized: false}
	}

	environment := cfg.Environment
	if environment == "" {
		environment = "development"
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      environment,
		TracesSampleRate: 1.0,
		EnableTracing:    true,
	})
	if err != nil {
		log.Printf("Sentry initialization failed: %v", err)
		return &Service{initialized: false}
	}

	log.Println("Sentry initialized successfully")
	return &Service{initialized: true}
}

// CaptureException captures an error and sends it to Sentry
func (s *Service) CaptureException(err error) {
	if !s.initialized {
		return
	}
	sentry.CaptureException(err)
}

// Flush waits for all events to be sent to Sentry
func (s *Service) Flush(timeout time.Duration) bool {
	if !s.initialized {
		return true
	}
	return sentry.Flush(timeout)
}

// Close flushes and closes the Sentry client
func (s *Service) Close() {
	s.Flush(2 * time.Second)
}

// WithScope executes a function with a new Sentry scope
func (s *Service) WithScope(fn func(scope *sentry.Scope)) {
	if !s.initialized {
		return
	}
	sentry.WithScope(fn)
}
