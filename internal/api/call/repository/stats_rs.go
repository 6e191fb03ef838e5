package callRepository

import (
	contextPkg "CoachingAPI/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/sirupsen/logrus"
)

type CallTotals struct {
	TotalCalls    int     `db:"total_calls"`
	TotalDuration float64 `db:"total_duration"`
}

type ObjectionTotals struct {
	TotalObjections    int `db:"total_objections"`
	ResolvedObjections int `db:"resolved_objections"`
}

type ObjectionTypeStats struct {
	ObjectionType        string  `db:"objection_type"`
	Count                int     `db:"objection_count"`
	AverageEffectiveness float64 `db:"average_effectiveness"`
	ResolvedCount        int     `db:"resolved_count"`
}

func (r *statsRepository) GetCallTotals(ctx context.Context) (CallTotals, error) {
	var totals CallTotals
	if err := r.q.GetContext(ctx, &totals, queryCallTotals); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("GetCallTotals execution err")
		return CallTotals{}, err
	}
	return totals, nil
}

func (r *statsRepository) GetObjectionTotals(ctx context.Context) (ObjectionTotals, error) {
	var totals ObjectionTotals
	if err := r.q.GetContext(ctx, &totals, queryObjectionTotals); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("GetObjectionTotals execution err")
		return ObjectionTotals{}, err
	}
	return totals, nil
}

// GetMostCommonObjectionType returns "" when no objection carries a type.
func (r *statsRepository) GetMostCommonObjectionType(ctx context.Context) (string, error) {
	var objectionType string
	if err := r.q.GetContext(ctx, &objectionType, queryMostCommonObjectionType); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("GetMostCommonObjectionType execution err")
		return "", err
	}
	return objectionType, nil
}

func (r *statsRepository) GetObjectionStatsByType(ctx context.Context) ([]ObjectionTypeStats, error) {
	stats := make([]ObjectionTypeStats, 0)
	if err := r.q.SelectContext(ctx, &stats, queryObjectionStatsByType); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": contextPkg.GetRequestID(ctx),
			"error":      err.Error(),
		}).Error("GetObjectionStatsByType execution err")
		return nil, err
	}
	return stats, nil
}
