package callService

import (
	"CoachingAPI/internal/api/call"
	"CoachingAPI/internal/entity"
	contextPkg "CoachingAPI/pkg/context"
	"CoachingAPI/pkg/response"
	"context"
	"errors"
	"github.com/sirupsen/logrus"
)

func (s *callsService) AddObjection(ctx context.Context, callID int64, req calls.CreateObjectionRequest) (objection entity.Objection, err error) {
	defer func() { s.observe("add_objection", err) }()

	_, objections, err := s.recordChildren(ctx, "add_objection", callID, nil, []calls.CreateObjectionRequest{req})
	if err != nil {
		var verr *response.ValidationError
		if errors.As(err, &verr) {
			return entity.Objection{}, unprefixObjectionFields(verr)
		}
		return entity.Objection{}, err
	}

	return objections[0], nil
}

// unprefixObjectionFields drops the list index recordChildren puts on
// field names when only a single objection was submitted.
func unprefixObjectionFields(verr *response.ValidationError) error {
	const prefix = "objections[0]."
	out := response.NewValidationError()
	for field, reason := range verr.Fields {
		if len(field) > len(prefix) && field[:len(prefix)] == prefix {
			field = field[len(prefix):]
		}
		out.Add(field, reason)
	}
	return out.Err()
}

func (s *callsService) ListObjections(ctx context.Context, callID int64) (objections []entity.Objection, err error) {
	defer func() { s.observe("list_objections", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return nil, storageErr("list_objections", err)
	}

	if _, err := repo.Calls.GetCallByID(ctx, callID); err != nil {
		return nil, storageErr("list_objections", err)
	}

	objections, err = repo.Objections.GetObjectionsByCallID(ctx, callID)
	if err != nil {
		return nil, storageErr("list_objections", err)
	}

	return objections, nil
}

func (s *callsService) GetObjection(ctx context.Context, id int64) (objection entity.Objection, err error) {
	defer func() { s.observe("get_objection", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	repo, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.Objection{}, storageErr("get_objection", err)
	}

	objection, err = repo.Objections.GetObjectionByID(ctx, id)
	if err != nil {
		if errors.Is(err, calls.ErrObjectionNotFound) {
			s.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Warn("Objection not found")
		}
		return entity.Objection{}, storageErr("get_objection", err)
	}

	return objection, nil
}

// ResolveObjection marks the objection resolved. Resolving twice keeps it
// resolved and applies whichever fields were supplied.
func (s *callsService) ResolveObjection(ctx context.Context, id int64, req calls.ResolveObjectionRequest) (objection entity.Objection, err error) {
	defer func() { s.observe("resolve_objection", err) }()
	requestID := contextPkg.GetRequestID(ctx)

	verr := response.NewValidationError()
	entity.CheckScore(verr, "effectiveness_score", req.EffectivenessScore)
	if err := verr.Err(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
			"error":      err.Error(),
		}).Warn("Rejected invalid resolution")
		return entity.Objection{}, err
	}

	reader, err := s.repo.NewClient(ctx, false)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.Objection{}, storageErr("resolve_objection", err)
	}

	current, err := reader.Objections.GetObjectionByID(ctx, id)
	if err != nil {
		return entity.Objection{}, storageErr("resolve_objection", err)
	}

	unlock := s.locks.Lock(current.CallID)
	defer unlock()

	repo, err := s.repo.NewClient(ctx, true)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to create repository client")
		return entity.Objection{}, storageErr("resolve_objection", err)
	}
	defer repo.Rollback()

	if _, err := repo.Calls.LockCallByID(ctx, current.CallID); err != nil {
		if errors.Is(err, calls.ErrCallNotFound) {
			return entity.Objection{}, calls.ErrObjectionNotFound
		}
		return entity.Objection{}, storageErr("resolve_objection", err)
	}

	objection, err = repo.Objections.GetObjectionByID(ctx, id)
	if err != nil {
		return entity.Objection{}, storageErr("resolve_objection", err)
	}

	objection.Resolve(req.ResponseText, req.SuggestedImprovement, req.EffectivenessScore)

	if err := objection.Validate(); err != nil {
		return entity.Objection{}, err
	}

	if err := repo.Objections.ResolveObjection(ctx, objection); err != nil {
		return entity.Objection{}, storageErr("resolve_objection", err)
	}

	if err := repo.Commit(); err != nil {
		s.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to commit transaction")
		return entity.Objection{}, storageErr("resolve_objection", err)
	}

	s.log.WithFields(logrus.Fields{
		"request_id":   requestID,
		"objection_id": id,
		"call_id":      objection.CallID,
	}).Info("Objection resolved")

	return objection, nil
}
