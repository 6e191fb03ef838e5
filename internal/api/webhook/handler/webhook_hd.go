package webhookHandler

import (
	"CoachingAPI/internal/api/webhook"
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/handlerUtil"
	"CoachingAPI/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"time"
)

func (h *WebhooksHandler) CallCompleted(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing call completed webhook")

	if len(ctx.Body()) == 0 {
		return errHandler.Handle(ctx, requestID, webhooks.ErrEmptyPayload, ctx.Path(), "call_completed_webhook")
	}

	var req webhooks.CallCompletedRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.webhookService.CallCompleted(c, req)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "call_completed_webhook")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *WebhooksHandler) AnalysisReady(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), 10*time.Second)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing analysis ready webhook")

	if len(ctx.Body()) == 0 {
		return errHandler.Handle(ctx, requestID, webhooks.ErrEmptyPayload, ctx.Path(), "analysis_ready_webhook")
	}

	var req webhooks.AnalysisReadyRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	resp, err := h.webhookService.AnalysisReady(c, req)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "analysis_ready_webhook")
		}
	}

	status := fiber.StatusCreated
	if resp.Duplicate {
		status = fiber.StatusOK
	}

	return errHandler.HandleSuccess(ctx, status, resp)
}
