package webhookService

import (
	"CoachingAPI/internal/api/call"
	"CoachingAPI/internal/api/webhook"
	"CoachingAPI/internal/entity"
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/messaging"
	"context"
	"github.com/sirupsen/logrus"
	"time"
)

const (
	kindCallCompleted = "call-completed"
	kindAnalysisReady = "analysis-ready"
)

func (s *webhookService) CallCompleted(ctx context.Context, req webhooks.CallCompletedRequest) (resp webhooks.CallCompletedResponse, err error) {
	defer func() { s.observe(kindCallCompleted, resp.Duplicate, err) }()
	requestID := contextPkg.GetRequestID(ctx)

	claimed, release, err := s.claim(ctx, kindCallCompleted, req.EventID)
	if err != nil {
		return webhooks.CallCompletedResponse{}, err
	}
	if !claimed {
		return webhooks.CallCompletedResponse{Duplicate: true}, nil
	}

	call, err := s.upsertCall(ctx, req)
	if err != nil {
		release()
		return webhooks.CallCompletedResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"event_id":   req.EventID,
		"call_id":    call.ID,
	}).Info("Call completed webhook processed")

	s.publish(ctx, messaging.RoutingCallCompleted, webhooks.CallCompletedEvent{
		CallID:        call.ID,
		Title:         call.Title,
		AudioFilePath: call.AudioFilePath,
		Duration:      call.Duration,
	})

	if req.WantsAnalysis() {
		s.publish(ctx, messaging.RoutingAnalysisRequested, webhooks.AnalysisRequestedEvent{
			CallID:        call.ID,
			AudioFilePath: call.AudioFilePath,
			HasTranscript: call.Transcript != nil && *call.Transcript != "",
		})
	}

	callResp := calls.NewCallResponse(call)
	return webhooks.CallCompletedResponse{Call: &callResp}, nil
}

func (s *webhookService) upsertCall(ctx context.Context, req webhooks.CallCompletedRequest) (entity.Call, error) {
	if req.CallID != nil {
		return s.callService.UpdateCall(ctx, *req.CallID, calls.UpdateCallRequest{
			Title:         req.Title,
			Description:   req.Description,
			AudioFilePath: req.AudioFilePath,
			Transcript:    req.Transcript,
			Duration:      req.Duration,
		})
	}

	var title string
	if req.Title != nil {
		title = *req.Title
	}

	return s.callService.CreateCall(ctx, calls.CreateCallRequest{
		Title:         title,
		Description:   req.Description,
		AudioFilePath: req.AudioFilePath,
		Transcript:    req.Transcript,
		Duration:      req.Duration,
	})
}

func (s *webhookService) AnalysisReady(ctx context.Context, req webhooks.AnalysisReadyRequest) (resp webhooks.AnalysisReadyResponse, err error) {
	defer func() { s.observe(kindAnalysisReady, resp.Duplicate, err) }()
	requestID := contextPkg.GetRequestID(ctx)

	claimed, release, err := s.claim(ctx, kindAnalysisReady, req.EventID)
	if err != nil {
		return webhooks.AnalysisReadyResponse{}, err
	}
	if !claimed {
		return webhooks.AnalysisReadyResponse{Duplicate: true}, nil
	}

	analysis, objections, err := s.callService.RecordAnalysisResult(ctx, req.CallID,
		calls.CreateAnalysisRequest{
			AnalysisType:    req.AnalysisType,
			Content:         req.Content,
			ConfidenceScore: req.ConfidenceScore,
		},
		req.Objections,
	)
	if err != nil {
		release()
		return webhooks.AnalysisReadyResponse{}, err
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"event_id":    req.EventID,
		"call_id":     req.CallID,
		"analysis_id": analysis.ID,
		"objections":  len(objections),
	}).Info("Analysis ready webhook processed")

	analysisResp := calls.NewAnalysisResponse(analysis)
	resp = webhooks.AnalysisReadyResponse{
		Analysis:   &analysisResp,
		Objections: make([]calls.ObjectionResponse, 0, len(objections)),
	}
	for _, o := range objections {
		resp.Objections = append(resp.Objections, calls.NewObjectionResponse(o))
	}

	return resp, nil
}

// publish never fails the webhook. The call is already committed.
func (s *webhookService) publish(ctx context.Context, eventType string, data interface{}) {
	requestID := contextPkg.GetRequestID(ctx)

	id, err := s.utils.NewULIDFromTimestamp(time.Now())
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate event id")
		return
	}

	event := messaging.Event{
		ID:         id,
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}

	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"event_type": eventType,
			"error":      err.Error(),
		}).Warn("Failed to publish event")
	}
}
