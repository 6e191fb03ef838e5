package callService

import (
	"CoachingAPI/internal/api/call"
	"CoachingAPI/internal/entity"
	contextPkg "CoachingAPI/pkg/context"
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"math"
)

func (s *callsService) CreateCall(ctx context.Context, req calls.CreateCallRequest) (call entity.Call, err error) {
	defer func() { s.observe("create_call", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	now := s.now()
	call = entity.Call{
		Title:         req.Title,
		Description:   req.Description,
		AudioFilePath: req.AudioFilePath,
		Transcript:    req.Transcript,
		Duration:      req.Duration,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := call.Validate(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Warn("Rejected invalid call")
		return entity.Call{}, err
	}

	repo, err := s.repo.NewClient(ctx, true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.Call{}, storageErr("create_call", err)
	}
	defer repo.Rollback()

	id, err := repo.Calls.CreateCall(ctx, call)
	if err != nil {
		return entity.Call{}, storageErr("create_call", err)
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return entity.Call{}, storageErr("create_call", err)
	}

	call.ID = id
	call.Analyses = []entity.CallAnalysis{}
	call.Objections = []entity.Objection{}

	s.log.WithFields(logrus.Fields{
		"request_id": requestID,
		"call_id":    id,
	}).Info("Call created")

	return call, nil
}

func (s *callsService) GetCall(ctx context.Context, id int64) (resp calls.CallResponse, err error) {
	defer func() { s.observe("get_call", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return calls.CallResponse{}, storageErr("get_call", err)
	}

	call, err := repo.Calls.GetCallByID(ctx, id)
	if err != nil {
		if errors.Is(err, calls.ErrCallNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("Call not found")
		}
		return calls.CallResponse{}, storageErr("get_call", err)
	}

	call.Analyses, err = repo.Analyses.GetAnalysesByCallID(ctx, id)
	if err != nil {
		return calls.CallResponse{}, storageErr("get_call", err)
	}

	call.Objections, err = repo.Objections.GetObjectionsByCallID(ctx, id)
	if err != nil {
		return calls.CallResponse{}, storageErr("get_call", err)
	}

	resp = calls.NewCallResponse(call)
	resp.AudioURL = s.presignAudio(requestID, call)

	return resp, nil
}

func (s *callsService) presignAudio(requestID string, call entity.Call) string {
	if s.s3Client == nil || call.AudioFilePath == nil || *call.AudioFilePath == "" {
		return ""
	}

	presignedURL, err := s.s3Client.PresignUrl(*call.AudioFilePath)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id":      requestID,
			"call_id":         call.ID,
			"audio_file_path": *call.AudioFilePath,
			"error":           err.Error(),
		}).Warn("Failed to create presigned URL for audio")
		return ""
	}

	return presignedURL
}

func (s *callsService) ListCalls(ctx context.Context, page, limit int) (resp *calls.CallListResponse, err error) {
	defer func() { s.observe("list_calls", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	// Keeps the offset from overflowing; such a page is past any real data.
	if page > math.MaxInt/limit {
		page = math.MaxInt / limit
	}
	offset := (page - 1) * limit

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, storageErr("list_calls", err)
	}

	callsList, total, err := repo.Calls.GetAllCalls(ctx, limit, offset)
	if err != nil {
		return nil, storageErr("list_calls", err)
	}

	ids := make([]int64, 0, len(callsList))
	for _, c := range callsList {
		ids = append(ids, c.ID)
	}

	analyses, err := repo.Analyses.GetAnalysesByCallIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("list_calls", err)
	}

	objections, err := repo.Objections.GetObjectionsByCallIDs(ctx, ids)
	if err != nil {
		return nil, storageErr("list_calls", err)
	}

	resp = &calls.CallListResponse{
		Calls: make([]calls.CallResponse, 0, len(callsList)),
		Total: total,
		Page:  page,
		Limit: limit,
	}

	for _, c := range callsList {
		c.Analyses = analyses[c.ID]
		c.Objections = objections[c.ID]
		resp.Calls = append(resp.Calls, calls.NewCallResponse(c))
	}

	return resp, nil
}

func (s *callsService) UpdateCall(ctx context.Context, id int64, req calls.UpdateCallRequest) (call entity.Call, err error) {
	defer func() { s.observe("update_call", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	unlock := s.locks.Lock(id)
	defer unlock()

	repo, err := s.repo.NewClient(ctx, true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.Call{}, storageErr("update_call", err)
	}
	defer repo.Rollback()

	call, err = repo.Calls.LockCallByID(ctx, id)
	if err != nil {
		if errors.Is(err, calls.ErrCallNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("Call not found for update")
		}
		return entity.Call{}, storageErr("update_call", err)
	}

	applyCallPatch(&call, req)

	if err := call.Validate(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		}).Warn("Rejected invalid call update")
		return entity.Call{}, err
	}

	call.UpdatedAt = s.now()
	if call.UpdatedAt.Before(call.CreatedAt) {
		call.UpdatedAt = call.CreatedAt
	}

	if err := repo.Calls.UpdateCall(ctx, call); err != nil {
		return entity.Call{}, storageErr("update_call", err)
	}

	call.Analyses, err = repo.Analyses.GetAnalysesByCallID(ctx, id)
	if err != nil {
		return entity.Call{}, storageErr("update_call", err)
	}

	call.Objections, err = repo.Objections.GetObjectionsByCallID(ctx, id)
	if err != nil {
		return entity.Call{}, storageErr("update_call", err)
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return entity.Call{}, storageErr("update_call", err)
	}

	return call, nil
}

func applyCallPatch(call *entity.Call, req calls.UpdateCallRequest) {
	if req.Title != nil {
		call.Title = *req.Title
	}
	if req.Description != nil {
		call.Description = req.Description
	}
	if req.AudioFilePath != nil {
		call.AudioFilePath = req.AudioFilePath
	}
	if req.Transcript != nil {
		call.Transcript = req.Transcript
	}
	if req.Duration != nil {
		call.Duration = req.Duration
	}
}

// DeleteCall removes the call together with its analyses and objections in
// one transaction, under the call's lock.
func (s *callsService) DeleteCall(ctx context.Context, id int64) (err error) {
	defer func() { s.observe("delete_call", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	unlock := s.locks.Lock(id)
	defer unlock()

	repo, err := s.repo.NewClient(ctx, true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return storageErr("delete_call", err)
	}
	defer repo.Rollback()

	if _, err := repo.Calls.LockCallByID(ctx, id); err != nil {
		if errors.Is(err, calls.ErrCallNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("Call not found for delete")
		}
		return storageErr("delete_call", err)
	}

	analysesDeleted, err := repo.Analyses.DeleteAnalysesByCallID(ctx, id)
	if err != nil {
		return storageErr("delete_call", err)
	}

	objectionsDeleted, err := repo.Objections.DeleteObjectionsByCallID(ctx, id)
	if err != nil {
		return storageErr("delete_call", err)
	}

	if err := repo.Calls.DeleteCall(ctx, id); err != nil {
		return storageErr("delete_call", err)
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return storageErr("delete_call", err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":         requestID,
		"call_id":            id,
		"analyses_deleted":   analysesDeleted,
		"objections_deleted": objectionsDeleted,
	}).Info("Call deleted")

	return nil
}
