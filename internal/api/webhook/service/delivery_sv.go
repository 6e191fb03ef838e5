package webhookService

import (
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/response"
	"context"
	"github.com/sirupsen/logrus"
)

// claim returns a release func to call when processing fails. An empty
// eventID opts out of deduplication.
func (s *webhookService) claim(ctx context.Context, kind, eventID string) (claimed bool, release func(), err error) {
	noop := func() {}
	if eventID == "" {
		return true, noop, nil
	}

	key := kind + ":" + eventID
	claimed, err = s.store.Claim(ctx, key, s.dedupTTL)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"event_id":   eventID,
			"error":      err.Error(),
		}).Error("Failed to claim webhook delivery")
		return false, noop, response.NewStorageError("claim_delivery", err)
	}

	if !claimed {
		s.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"event_id":   eventID,
			"kind":       kind,
		}).Info("Duplicate webhook delivery ignored")
		return false, noop, nil
	}

	release = func() {
		if err := s.store.Release(context.WithoutCancel(ctx), key); err != nil {
			s.log.WithFields(logrus.Fields{
				"request_id": contextPkg.GetRequestID(ctx),
				"event_id":   eventID,
				"error":      err.Error(),
			}).Warn("Failed to release webhook delivery")
		}
	}

	return true, release, nil
}
