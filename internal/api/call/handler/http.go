package callHandler

import (
	callService "CoachingAPI/internal/api/call/service"
	"CoachingAPI/internal/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"time"
)

type CallsHandler struct {
	log         *logrus.Logger
	validator   *validator.Validate
	middleware  middleware.Middleware
	callService callService.ICallService
	timeout     time.Duration
}

func New(
	log *logrus.Logger,
	validate *validator.Validate,
	middleware middleware.Middleware,
	cs callService.ICallService,
) *CallsHandler {
	return &CallsHandler{
		log:         log,
		validator:   validate,
		middleware:  middleware,
		callService: cs,
		timeout:     requestTimeout,
	}
}

func (h *CallsHandler) Start(srv fiber.Router) {
	calls := srv.Group("/calls", h.middleware.NewTokenMiddleware)

	calls.Get("", h.ListCalls)
	calls.Post("", h.CreateCall)
	// Fixed paths go before /:id.
	calls.Get("/summary", h.GetSummary)
	calls.Get("/:id", h.GetCall)
	calls.Patch("/:id", h.UpdateCall)
	calls.Delete("/:id", h.DeleteCall)

	calls.Get("/:id/analyses", h.ListAnalyses)
	calls.Post("/:id/analyses", h.AddAnalysis)
	calls.Get("/:id/objections", h.ListObjections)
	calls.Post("/:id/objections", h.AddObjection)

	objections := srv.Group("/objections", h.middleware.NewTokenMiddleware)

	objections.Get("/stats", h.GetObjectionStats)
	objections.Get("/:id", h.GetObjection)
	objections.Post("/:id/resolve", h.ResolveObjection)
}
