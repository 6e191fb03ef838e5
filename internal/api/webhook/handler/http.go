package webhookHandler

import (
	webhookService "CoachingAPI/internal/api/webhook/service"
	"CoachingAPI/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

type WebhooksHandler struct {
	log            *logrus.Logger
	validator      *validator.Validate
	middleware     middleware.Middleware
	webhookService webhookService.IWebhookService
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	ws webhookService.IWebhookService,
) *WebhooksHandler {
	return &WebhooksHandler{
		log:            log,
		validator:      validate,
		middleware:     middleware,
		webhookService: ws,
	}
}

func (h *WebhooksHandler) Start(srv fiber.Router) {
	webhooks := srv.Group("/webhooks")

	webhooks.Post("/call-completed", h.CallCompleted)
	webhooks.Post("/analysis-ready", h.AnalysisReady)
}
