package config

import (
	"fmt"
	"os"

	assistantHandler "StockVoice/internal/api/assistant/handler"
	assistantService "StockVoice/internal/api/assistant/service"
	"StockVoice/internal/middleware"
	"StockVoice/pkg/audio"
	"StockVoice/pkg/gemini"
	"StockVoice/pkg/google"
	"StockVoice/pkg/redis"
	"StockVoice/pkg/sheets"
	"StockVoice/pkg/smtp"
	"StockVoice/pkg/speech"
	"StockVoice/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type ServerOption func(*Server) error

type Server struct {
	engine         *fiber.App
	log            *logrus.Logger
	middleware     middleware.Middleware
	validator      *validator.Validate
	utils          utils.IUtils
	handlers       []handler
	googleProvider google.ItfGoogle
	redisServer    redis.IRedis
	smtpMailer     smtp.ItfSmtp
	geminiClient   gemini.IGemini
	sheetsClient   sheets.ItfSheets
	transcriber    assistantService.Transcriber
	backendFactory assistantService.BackendFactory
}

type handler interface {
	Start(srv fiber.Router)
}

func NewServer(options ...ServerOption) (*Server, error) {
	server := &Server{}

	for _, option := range options {
		if err := option(server); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	if server.engine == nil {
		return nil, fmt.Errorf("fiber app is required")
	}
	if server.log == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return server, nil
}

func WithFiber(fiberApp *fiber.App) ServerOption {
	return func(s *Server) error {
		s.engine = fiberApp
		return nil
	}
}

func WithLogger(logger *logrus.Logger) ServerOption {
	return func(s *Server) error {
		s.log = logger
		return nil
	}
}

func WithValidator(validator *validator.Validate) ServerOption {
	return func(s *Server) error {
		s.validator = validator
		return nil
	}
}

func WithGoogleProvider(provider google.ItfGoogle) ServerOption {
	return func(s *Server) error {
		s.googleProvider = provider
		return nil
	}
}

func WithRedisServer(redisServer redis.IRedis) ServerOption {
	return func(s *Server) error {
		s.redisServer = redisServer
		return nil
	}
}

func WithSMTPMailer(smtpMailer smtp.ItfSmtp) ServerOption {
	return func(s *Server) error {
		s.smtpMailer = smtpMailer
		return nil
	}
}

func WithGeminiClient() ServerOption {
	return func(s *Server) error {
		client, err := gemini.NewGeminiClient()
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Gemini client: %v", err)
			}
			return fmt.Errorf("failed to create Gemini client: %w", err)
		}
		s.geminiClient = client
		return nil
	}
}

func WithSheetsClient() ServerOption {
	return func(s *Server) error {
		if s.googleProvider == nil {
			return fmt.Errorf("google provider must be initialized before sheets client")
		}
		client, err := sheets.New(s.googleProvider)
		if err != nil {
			if s.log != nil {
				s.log.Errorf("Failed to create Sheets client: %v", err)
			}
			return fmt.Errorf("failed to create sheets client: %w", err)
		}
		s.sheetsClient = client
		return nil
	}
}

func WithTranscriber() ServerOption {
	return func(s *Server) error {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			return fmt.Errorf("OPENAI_API_KEY is required for the transcriber")
		}
		s.transcriber = audio.NewTranscriptionService(apiKey)
		return nil
	}
}

// WithSpeechBackendFactory selects the streaming recognition backend. The
// mock backend serves local development without cloud credentials.
func WithSpeechBackendFactory() ServerOption {
	return func(s *Server) error {
		switch os.Getenv("SPEECH_BACKEND") {
		case "mock":
			s.backendFactory = func(_ context.Context) (speech.Backend, error) {
				return speech.NewMockBackend(speech.DefaultUtterances), nil
			}
		default:
			s.backendFactory = func(ctx context.Context) (speech.Backend, error) {
				return speech.NewGoogleBackend(ctx)
			}
		}
		return nil
	}
}

func WithMiddleware() ServerOption {
	return func(s *Server) error {
		if s.log == nil {
			return fmt.Errorf("logger must be initialized before middleware")
		}
		s.middleware = middleware.New(s.log)
		return nil
	}
}

func WithUtils() ServerOption {
	return func(s *Server) error {
		s.utils = utils.New()
		return nil
	}
}

func (s *Server) RegisterHandler() {
	// Assistant Domain
	assistantServices := assistantService.New(s.log, s.geminiClient, s.transcriber, s.smtpMailer, s.sheetsClient, s.redisServer, s.utils, s.backendFactory)
	assistantHandlers := assistantHandler.New(s.log, s.validator, s.middleware, assistantServices, s.utils)

	s.setupHealthCheck()
	s.setupMetrics()
	s.handlers = append(s.handlers, assistantHandlers)
}

func (s *Server) Run() error {
	router := s.engine.Group("/api/v1")
	s.engine.Use(s.middleware.NewRequestIDMiddleware())
	s.engine.Use(s.middleware.NewLoggingMiddleware)
	s.engine.Use(s.middleware.NewRateLimiter)

	for _, h := range s.handlers {
		h.Start(router)
	}

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "3000"
	}

	return s.engine.Listen(fmt.Sprintf(":%s", port))
}

func (s *Server) setupHealthCheck() {
	s.engine.Get("/", func(ctx *fiber.Ctx) error {
		return ctx.JSON(fiber.Map{
			"message": "Server is Healthy!",
		})
	})
}

func (s *Server) setupMetrics() {
	s.engine.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))
}
