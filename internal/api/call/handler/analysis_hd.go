package callHandler

import (
	"CoachingAPI/internal/api/call"
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/handlerUtil"
	"github.com/gofiber/fiber/v2"
	"golang.org/x/net/context"
)

func (h *CallsHandler) AddAnalysis(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	callID, err := parseID(ctx, calls.ErrInvalidCallID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_analysis")
	}

	var req calls.CreateAnalysisRequest
	if err := ctx.BodyParser(&req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	if err := h.validator.Struct(req); err != nil {
		return errHandler.HandleValidationError(ctx, requestID, err, ctx.Path())
	}

	analysis, err := h.callService.AddAnalysis(c, callID, req)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "add_analysis")
		}
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusCreated, calls.NewAnalysisResponse(analysis))
}

func (h *CallsHandler) ListAnalyses(ctx *fiber.Ctx) error {
	requestID := h.middleware.GetRequestID(ctx)
	c, cancel := context.WithTimeout(contextPkg.FromFiberCtx(ctx), h.timeout)
	defer cancel()

	errHandler := handlerUtil.New(h.log)

	callID, err := parseID(ctx, calls.ErrInvalidCallID)
	if err != nil {
		return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_analyses")
	}

	analyses, err := h.callService.ListAnalyses(c, callID)
	if err != nil {
		select {
		case <-c.Done():
			return errHandler.HandleRequestTimeout(ctx)
		default:
			return errHandler.Handle(ctx, requestID, err, ctx.Path(), "list_analyses")
		}
	}

	resp := make([]calls.AnalysisResponse, 0, len(analyses))
	for _, a := range analyses {
		resp = append(resp, calls.NewAnalysisResponse(a))
	}

	return errHandler.HandleSuccess(ctx, fiber.StatusOK, resp)
}
