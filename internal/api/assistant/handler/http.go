package assistantHandler

import (
	assistantService "StockVoice/internal/api/assistant/service"
	"StockVoice/internal/middleware"
	"StockVoice/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/sirupsen/logrus"
)

type AssistantHandler struct {
	log              *logrus.Logger
	validator        *validator.Validate
	middleware       middleware.Middleware
	assistantService assistantService.IAssistantService
	utils            utils.IUtils
}

func New(
	log *logrus.Logger,
	validator *validator.Validate,
	middleware middleware.Middleware,
	as assistantService.IAssistantService,
	utils utils.IUtils,
) *AssistantHandler {
	return &AssistantHandler{
		log:              log,
		validator:        validator,
		middleware:       middleware,
		assistantService: as,
		utils:            utils,
	}
}

func (h *AssistantHandler) Start(srv fiber.Router) {
	wsMiddleware := func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	}

	assistant := srv.Group("/assistant")
	assistant.Use("/stream", wsMiddleware)
	assistant.Get("/stream", websocket.New(h.handleStream))

	assistant.Post("/command", h.ProcessVoiceCommand)
	assistant.Post("/confirm", h.ProcessConfirmation)
	assistant.Get("/history", h.GetHistory)
}
