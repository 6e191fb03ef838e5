package webhookService

import (
	callService "CoachingAPI/internal/api/call/service"
	"CoachingAPI/internal/api/webhook"
	"CoachingAPI/pkg/messaging"
	"CoachingAPI/pkg/utils"
	"context"
	"github.com/sirupsen/logrus"
	"time"
)

type IWebhookService interface {
	CallCompleted(ctx context.Context, req webhooks.CallCompletedRequest) (webhooks.CallCompletedResponse, error)
	AnalysisReady(ctx context.Context, req webhooks.AnalysisReadyRequest) (webhooks.AnalysisReadyResponse, error)
}

// DeliveryStore remembers which event ids were already processed.
type DeliveryStore interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}

type DeliveryObserver interface {
	ObserveWebhookDelivery(event, result string)
}

type webhookService struct {
	log         *logrus.Logger
	callService callService.ICallService
	store       DeliveryStore
	publisher   messaging.Publisher
	utils       utils.IUtils
	dedupTTL    time.Duration
	observer    DeliveryObserver
}

func NewWebhookService(
	log *logrus.Logger,
	cs callService.ICallService,
	store DeliveryStore,
	publisher messaging.Publisher,
	utils utils.IUtils,
	dedupTTL time.Duration,
	observer DeliveryObserver,
) IWebhookService {
	return &webhookService{
		log:         log,
		callService: cs,
		store:       store,
		publisher:   publisher,
		utils:       utils,
		dedupTTL:    dedupTTL,
		observer:    observer,
	}
}

func (s *webhookService) observe(event string, duplicate bool, err error) {
	if s.observer == nil {
		return
	}
	result := "ok"
	switch {
	case err != nil:
		result = "error"
	case duplicate:
		result = "duplicate"
	}
	s.observer.ObserveWebhookDelivery(event, result)
}
