package callService

import (
	"CoachingAPI/internal/api/call"
	"CoachingAPI/internal/entity"
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/response"
	"context"
	"errors"
	"fmt"
	"github.com/sirupsen/logrus"
	"time"
)

func (s *callsService) AddAnalysis(ctx context.Context, callID int64, req calls.CreateAnalysisRequest) (analysis entity.CallAnalysis, err error) {
	defer func() { s.observe("add_analysis", err) }()

	analysis, _, err = s.recordChildren(ctx, "add_analysis", callID, &req, nil)
	return analysis, err
}

// RecordAnalysisResult stores an analysis and the objections found with it.
// Either every row is written or none is.
func (s *callsService) RecordAnalysisResult(
	ctx context.Context,
	callID int64,
	analysisReq calls.CreateAnalysisRequest,
	objectionReqs []calls.CreateObjectionRequest,
) (analysis entity.CallAnalysis, objections []entity.Objection, err error) {
	defer func() { s.observe("record_analysis_result", err) }()

	return s.recordChildren(ctx, "record_analysis_result", callID, &analysisReq, objectionReqs)
}

func (s *callsService) ListAnalyses(ctx context.Context, callID int64) (analyses []entity.CallAnalysis, err error) {
	defer func() { s.observe("list_analyses", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, storageErr("list_analyses", err)
	}

	if _, err := repo.Calls.GetCallByID(ctx, callID); err != nil {
		return nil, storageErr("list_analyses", err)
	}

	analyses, err = repo.Analyses.GetAnalysesByCallID(ctx, callID)
	if err != nil {
		return nil, storageErr("list_analyses", err)
	}

	return analyses, nil
}

// recordChildren inserts an optional analysis and any number of objections
// for one call inside a single transaction that first locks the parent row.
func (s *callsService) recordChildren(
	ctx context.Context,
	op string,
	callID int64,
	analysisReq *calls.CreateAnalysisRequest,
	objectionReqs []calls.CreateObjectionRequest,
) (entity.CallAnalysis, []entity.Objection, error) {
	requestID := contextPkg.GetRequestID(ctx)
	now := s.now()

	verr := response.NewValidationError()

	var analysis entity.CallAnalysis
	if analysisReq != nil {
		analysis = entity.CallAnalysis{
			CallID:          callID,
			AnalysisType:    analysisReq.AnalysisType,
			Content:         analysisReq.Content,
			ConfidenceScore: analysisReq.ConfidenceScore,
			CreatedAt:       now,
		}
		var analysisErr *response.ValidationError
		if errors.As(analysis.Validate(), &analysisErr) {
			verr.Merge(analysisErr)
		}
	}

	objections := make([]entity.Objection, 0, len(objectionReqs))
	for i, req := range objectionReqs {
		objection := newObjection(callID, req, now)
		var objectionErr *response.ValidationError
		if errors.As(objection.Validate(), &objectionErr) {
			for field, reason := range objectionErr.Fields {
				verr.Add(fmt.Sprintf("objections[%d].%s", i, field), reason)
			}
		}
		objections = append(objections, objection)
	}

	if err := verr.Err(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
			"error":      err.Error(),
		}).Warn("Rejected invalid call children")
		return entity.CallAnalysis{}, nil, err
	}

	unlock := s.locks.Lock(callID)
	defer unlock()

	repo, err := s.repo.NewClient(ctx, true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.CallAnalysis{}, nil, storageErr(op, err)
	}
	defer repo.Rollback()

	if _, err := repo.Calls.LockCallByID(ctx, callID); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
			"error":      err.Error(),
		}).Warn("Parent call unavailable")
		return entity.CallAnalysis{}, nil, storageErr(op, err)
	}

	if analysisReq != nil {
		id, err := repo.Analyses.CreateAnalysis(ctx, analysis)
		if err != nil {
			return entity.CallAnalysis{}, nil, storageErr(op, err)
		}
		analysis.ID = id
	}

	for i := range objections {
		id, err := repo.Objections.CreateObjection(ctx, objections[i])
		if err != nil {
			return entity.CallAnalysis{}, nil, storageErr(op, err)
		}
		objections[i].ID = id
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return entity.CallAnalysis{}, nil, storageErr(op, err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":  requestID,
		"call_id":     callID,
		"analysis_id": analysis.ID,
		"objections":  len(objections),
	}).Info("Call children recorded")

	return analysis, objections, nil
}

func newObjection(callID int64, req calls.CreateObjectionRequest, now time.Time) entity.Objection {
	return entity.Objection{
		CallID:               callID,
		ObjectionText:        req.ObjectionText,
		ObjectionType:        req.ObjectionType,
		Timestamp:            req.Timestamp,
		ResponseText:         req.ResponseText,
		EffectivenessScore:   req.EffectivenessScore,
		SuggestedImprovement: req.SuggestedImprovement,
		CreatedAt:            now,
	}
}
