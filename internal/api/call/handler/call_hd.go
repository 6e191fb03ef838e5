package callHandler

import (
	"CoachingAPI/internal/api/call"
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/handlerUtil"
	"CoachingAPI/pkg/log"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
	"strconv"
	"time"
)

const requestTimeout = 10 * time.Second

func parseID(ctx *fiber.Ctx, invalid error) (int64, error) {
	id, err := strconv.ParseInt(ctx.Params("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid
	}
	return id, nil
}

func (h *CallsHandler) CreateCall(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	h.log.WithFields(log.Fields{
		"request_id": requestID,
		"path":       ctx.Path(),
	}).Debug("Processing create call request")

	var req calls.CreateCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	call, err := h.callService.CreateCall(c, req)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "create_call")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, calls.NewCallResponse(call))
}

func (h *CallsHandler) GetCall(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := parseID(ctx, calls.ErrInvalidCallID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_call")
	}

	call, err := h.callService.GetCall(c, id)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_call")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, call)
}

func (h *CallsHandler) ListCalls(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	page, err := strconv.Atoi(ctx.Query("page", "1"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, calls.ErrInvalidPagination, ctx.Path(), "list_calls")
	}

	limit, err := strconv.Atoi(ctx.Query("limit", "20"))
	if err != nil {
		return errHandler.Handle(ctx, requestID, calls.ErrInvalidPagination, ctx.Path(), "list_calls")
	}

	result, err := h.callService.ListCalls(c, page, limit)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_calls")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, result)
}

func (h *CallsHandler) UpdateCall(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := parseID(ctx, calls.ErrInvalidCallID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_call")
	}

	var req calls.UpdateCallRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	call, err := h.callService.UpdateCall(c, id, req)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "update_call")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, calls.NewCallResponse(call))
}

func (h *CallsHandler) DeleteCall(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	id, err := parseID(ctx, calls.ErrInvalidCallID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_call")
	}

	if err := h.callService.DeleteCall(c, id); err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "delete_call")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, fiber.Map{
		"message": "Call deleted successfully",
	})
}

func (h *CallsHandler) GetSummary(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	summary, err := h.callService.GetSummary(c)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "get_summary")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, summary)
}
