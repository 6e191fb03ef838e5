package callHandler

import (
	"CoachingAPI/internal/api/call"
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/handlerUtil"
	"CoachingAPI/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *CallsHandler) AddObjection(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	callID, err := parseID(ctx, calls.ErrInvalidCallID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_objection")
	}

	var req calls.CreateObjectionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	objection, err := h.callService.AddObjection(c, callID, req)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_objection")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, calls.NewObjectionResponse(objection))
}

func (h *CallsHandler) ListObjections(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	callID, err := parseID(ctx, calls.ErrInvalidCallID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_objections")
	}

	objections, err := h.callService.ListObjections(c, callID)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_objections")
		}
	}

	resp := make([]calls.ObjectionResponse, 0, len(objections))
	for _, o := range objections {
		resp = append(resp, calls.NewObjectionResponse(o))
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}

func (h *CallsHandler) GetObjection(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := parseID(ctx, calls.ErrInvalidObjectionID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_objection")
	}

	objection, err := h.callService.GetObjection(c, id)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_objection")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, calls.NewObjectionResponse(objection))
}

func (h *CallsHandler) ResolveObjection(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing resolve objection request")

	id, err := parseID(ctx, calls.ErrInvalidObjectionID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "resolve_objection")
	}

	var req calls.ResolveObjectionRequest
	if len(ctx.Body()) > 0 {
		if err := ctx.BodyParser(&req); err != nil {
			return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
		}
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	objection, err := h.callService.ResolveObjection(c, id, req)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "resolve_objection")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, calls.NewObjectionResponse(objection))
}

func (h *CallsHandler) GetObjectionStats(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	stats, err := h.callService.GetObjectionStats(c)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_objection_stats")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, stats)
}
