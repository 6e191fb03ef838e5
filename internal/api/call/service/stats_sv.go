package callService

import (
	"CoachingAPI/internal/api/call"
	contextPkg "CoachingAPI/pkg/context"
	"context"
	"github.com/sirupsen/logrus"
)

func (s *callsService) GetSummary(ctx context.Context) (summary calls.CallSummaryResponse, err error) {
	defer func() { s.observe("get_summary", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return calls.CallSummaryResponse{}, storageErr("get_summary", err)
	}

	callTotals, err := repo.Stats.GetCallTotals(ctx)
	if err != nil {
		return calls.CallSummaryResponse{}, storageErr("get_summary", err)
	}

	objectionTotals, err := repo.Stats.GetObjectionTotals(ctx)
	if err != nil {
		return calls.CallSummaryResponse{}, storageErr("get_summary", err)
	}

	mostCommon, err := repo.Stats.GetMostCommonObjectionType(ctx)
	if err != nil {
		return calls.CallSummaryResponse{}, storageErr("get_summary", err)
	}

	return calls.CallSummaryResponse{
		TotalCalls:               callTotals.TotalCalls,
		TotalDuration:            callTotals.TotalDuration,
		AverageObjectionsPerCall: ratio(objectionTotals.TotalObjections, callTotals.TotalCalls),
		ResolutionRate:           ratio(objectionTotals.ResolvedObjections, objectionTotals.TotalObjections),
		MostCommonObjectionType:  mostCommon,
	}, nil
}

func (s *callsService) GetObjectionStats(ctx context.Context) (stats []calls.ObjectionStatsResponse, err error) {
	defer func() { s.observe("get_objection_stats", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, storageErr("get_objection_stats", err)
	}

	rows, err := repo.Stats.GetObjectionStatsByType(ctx)
	if err != nil {
		return nil, storageErr("get_objection_stats", err)
	}

	stats = make([]calls.ObjectionStatsResponse, 0, len(rows))
	for _, row := range rows {
		stats = append(stats, calls.ObjectionStatsResponse{
			Type:                 row.ObjectionType,
			Count:                row.Count,
			AverageEffectiveness: row.AverageEffectiveness,
			ResolutionRate:       ratio(row.ResolvedCount, row.Count),
		})
	}

	return stats, nil
}

func ratio(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole)
}
