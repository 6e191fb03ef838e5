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

type CallDB struct {
	ID            int64           `db:"id"`
	Title         sql.NullString  `db:"title"`
	Description   sql.NullString  `db:"description"`
	AudioFilePath sql.NullString  `db:"audio_file_path"`
	Transcript    sql.NullString  `db:"transcript"`
	Duration      sql.NullFloat64 `db:"duration"`
	CreatedAt     time.Time       `db:"created_at"`
	UpdatedAt     time.Time       `db:"updated_at"`
}

func (r *callsRepository) CreateCall(ctx context.Context, call entity.Call) (int64, error) {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"title":           call.Title,
		"description":     nullString(call.Description),
		"audio_file_path": nullString(call.AudioFilePath),
		"transcript":      nullString(call.Transcript),
		"duration":        nullFloat(call.Duration),
		"created_at":      call.CreatedAt,
		"updated_at":      call.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryCreateCall, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateCall")
		return 0, err
	}
	query = r.q.Rebind(query)

	var id int64
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Database error when creating call")
		return 0, err
	}

	return id, nil
}

func (r *callsRepository) GetCallByID(ctx context.Context, id int64) (entity.Call, error) {
	return r.getCall(ctx, queryGetCallByID, id, "GetCallByID")
}

// LockCallByID reads the call and, on Postgres, holds a row lock on it until the
// surrounding transaction ends. SQLite serializes writers on its own.
func (r *callsRepository) LockCallByID(ctx context.Context, id int64) (entity.Call, error) {
	query := queryGetCallByID
	if r.q.DriverName() == "postgres" {
		query = queryLockCallByIDPostgres
	}
	return r.getCall(ctx, query, id, "LockCallByID")
}

func (r *callsRepository) getCall(ctx context.Context, namedQuery string, id int64, op string) (entity.Call, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var call CallDB

	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(namedQuery, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Errorf("%s named query preparation err", op)
		return entity.Call{}, err
	}

	query = r.q.Rebind(query)

	if err := r.q.QueryRowxContext(ctx, query, args...).StructScan(&call); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			r.log.WithFields(logrus.Fields{
				"request_id": requestID,
				"id":         id,
			}).Debugf("%s no rows found", op)
			return entity.Call{}, calls.ErrCallNotFound
		}
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Errorf("%s execution err", op)
		return entity.Call{}, err
	}

	return r.makeCall(call), nil
}

func (r *callsRepository) GetAllCalls(ctx context.Context, limit, offset int) ([]entity.Call, int, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var callsList []CallDB
	var total int

	if err := r.q.QueryRowxContext(ctx, queryCountAllCalls).Scan(&total); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("CountAllCalls execution err")
		return nil, 0, err
	}

	argsKV := map[string]interface{}{
		"limit":  limit,
		"offset": offset,
	}

	query, args, err := sqlx.Named(queryGetAllCalls, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllCalls named query preparation err")
		return nil, 0, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &callsList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAllCalls execution err")
		return nil, 0, err
	}

	result := make([]entity.Call, 0, len(callsList))
	for _, callDB := range callsList {
		result = append(result, r.makeCall(callDB))
	}

	return result, total, nil
}

func (r *callsRepository) UpdateCall(ctx context.Context, call entity.Call) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id":              call.ID,
		"title":           call.Title,
		"description":     nullString(call.Description),
		"audio_file_path": nullString(call.AudioFilePath),
		"transcript":      nullString(call.Transcript),
		"duration":        nullFloat(call.Duration),
		"updated_at":      call.UpdatedAt,
	}

	query, args, err := sqlx.Named(queryUpdateCall, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCall named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCall execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("UpdateCall rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         call.ID,
		}).Warn("UpdateCall no rows affected")
		return calls.ErrCallNotFound
	}

	return nil
}

func (r *callsRepository) DeleteCall(ctx context.Context, id int64) error {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"id": id,
	}

	query, args, err := sqlx.Named(queryDeleteCall, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCall named query preparation err")
		return err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCall execution err")
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteCall rows affected err")
		return err
	}

	if rowsAffected == 0 {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"id":         id,
		}).Warn("DeleteCall no rows affected")
		return calls.ErrCallNotFound
	}

	return nil
}

func (r *callsRepository) makeCall(call CallDB) entity.Call {
	return entity.Call{
		ID:            call.ID,
		Title:         call.Title.String,
		Description:   stringPtr(call.Description),
		AudioFilePath: stringPtr(call.AudioFilePath),
		Transcript:    stringPtr(call.Transcript),
		Duration:      floatPtr(call.Duration),
		CreatedAt:     call.CreatedAt,
		UpdatedAt:     call.UpdatedAt,
	}
}
