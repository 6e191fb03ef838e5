package callRepository

import (
	"CoachingAPI/internal/api/call"
	"CoachingAPI/internal/entity"
	contextPkg "CoachingAPI/pkg/context"
	"context"
	"database/sql"
	"errors"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

type ObjectionDB struct {
	ID                   int64           `db:"id"`
	CallID               int64           `db:"call_id"`
	ObjectionText        sql.NullString  `db:"objection_text"`
	ObjectionType        sql.NullString  `db:"objection_type"`
	Timestamp            sql.NullFloat64 `db:"timestamp"`
	ResponseText         sql.NullString  `db:"response_text"`
	EffectivenessScore   sql.NullFloat64 `db:"effectiveness_score"`
	SuggestedImprovement sql.NullString  `db:"suggested_improvement"`
	IsResolved           bool            `db:"is_resolved"`
	CreatedAt            time.Time       `db:"created_at"`
}

func (r *objectionsRepository) CreateObjection(ctx context.Context, objection entity.Objection) (int64, error) {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"call_id":               objection.CallID,
		"objection_text":        objection.ObjectionText,
		"objection_type":        nullString(objection.ObjectionType),
		"timestamp":             nullFloat(objection.Timestamp),
		"response_text":         nullString(objection.ResponseText),
		"effectiveness_score":   nullFloat(objection.EffectivenessScore),
		"suggested_improvement": nullString(objection.SuggestedImprovement),
		"is_resolved":           objection.IsResolved,
		"created_at":            objection.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateObjection, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateObjection")
		return 0, err
	}
	query = r.q.Rebind(query)

	var id int64
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    objection.CallID,
			"error":      err.Error(),
		}).Error("Database error when creating objection")
		return 0, err
	}

	return id, nil
}

func (r *objectionsRepository) GetObjectionByID(ctx context.Context, id int64) (entity.Objection, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var objection ObjectionDB

	query, args, err := sqlx.Named(queryGetObjectionByID, map[string]interface{}{
		"id": id,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetObjectionByID named query preparation err")
		return entity.Objection{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&objection); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Debug("GetObjectionByID no rows found")
			return entity.Objection{}, calls.ErrObjectionNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetObjectionByID execution err")
		return entity.Objection{}, err
	}

	return r.makeObjection(objection), nil
}

func (r *objectionsRepository) GetObjectionsByCallID(ctx context.Context, callID int64) ([]entity.Objection, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var objectionsList []ObjectionDB

	query, args, err := sqlx.Named(queryGetObjectionsByCallID, map[string]interface{}{
		"call_id": callID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetObjectionsByCallID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &objectionsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetObjectionsByCallID execution err")
		return nil, err
	}

	objections := make([]entity.Objection, 0, len(objectionsList))
	for _, objectionDB := range objectionsList {
		objections = append(objections, r.makeObjection(objectionDB))
	}

	return objections, nil
}

func (r *objectionsRepository) GetObjectionsByCallIDs(ctx context.Context, callIDs []int64) (map[int64][]entity.Objection, error) {
	requestID := contextPkg.GetRequestID(ctx)
	grouped := make(map[int64][]entity.Objection, len(callIDs))
	if len(callIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(queryGetObjectionsByCallIDs, callIDs)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetObjectionsByCallIDs in query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	var objectionsList []ObjectionDB
	if err := r.q.SelectContext(ctx, &objectionsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetObjectionsByCallIDs execution err")
		return nil, err
	}

	for _, objectionDB := range objectionsList {
		grouped[objectionDB.CallID] = append(grouped[objectionDB.CallID], r.makeObjection(objectionDB))
	}

	return grouped, nil
}

func (r *objectionsRepository) ResolveObjection(ctx context.Context, objection entity.Objection) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":                    objection.ID,
		"response_text":         nullString(objection.ResponseText),
		"suggested_improvement": nullString(objection.SuggestedImprovement),
		"effectiveness_score":   nullFloat(objection.EffectivenessScore),
		"is_resolved":           objection.IsResolved,
	}

	query, args, err := sqlx.Named(queryResolveObjection, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ResolveObjection named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ResolveObjection execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("ResolveObjection rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         objection.ID,
		}).Warn("ResolveObjection no rows affected")
		return calls.ErrObjectionNotFound
	}

	return nil
}

func (r *objectionsRepository) DeleteObjectionsByCallID(ctx context.Context, callID int64) (int64, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryDeleteObjectionsByCallID, map[string]interface{}{
		"call_id": callID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteObjectionsByCallID named query preparation err")
		return 0, err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
			"error":      err.Error(),
		}).Error("DeleteObjectionsByCallID execution err")
		return 0, err
	}

	return result.RowsAffected()
}

func (r *objectionsRepository) makeObjection(objection ObjectionDB) entity.Objection {
	return entity.Objection{
		ID:                   objection.ID,
		CallID:               objection.CallID,
		ObjectionText:        objection.ObjectionText.String,
		ObjectionType:        stringPtr(objection.ObjectionType),
		Timestamp:            floatPtr(objection.Timestamp),
		ResponseText:         stringPtr(objection.ResponseText),
		EffectivenessScore:   floatPtr(objection.EffectivenessScore),
		SuggestedImprovement: stringPtr(objection.SuggestedImprovement),
		IsResolved:           objection.IsResolved,
		CreatedAt:            objection.CreatedAt,
	}
}
