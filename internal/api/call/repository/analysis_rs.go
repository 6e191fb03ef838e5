package callRepository

import (
	"CoachingAPI/internal/entity"
	contextPkg "CoachingAPI/pkg/context"
	"context"
	"database/sql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"time"
)

type AnalysisDB struct {
	ID              int64           `db:"id"`
	CallID          int64           `db:"call_id"`
	AnalysisType    sql.NullString  `db:"analysis_type"`
	Content         sql.NullString  `db:"content"`
	ConfidenceScore sql.NullFloat64 `db:"confidence_score"`
	CreatedAt       time.Time       `db:"created_at"`
}

func (r *analysesRepository) CreateAnalysis(ctx context.Context, analysis entity.CallAnalysis) (int64, error) {
	requestID := contextPkg.GetRequestID(ctx)
	argsKV := map[string]interface{}{
		"call_id":          analysis.CallID,
		"analysis_type":    analysis.AnalysisType,
		"content":          analysis.Content,
		"confidence_score": nullFloat(analysis.ConfidenceScore),
		"created_at":       analysis.CreatedAt,
	}

	query, args, err := sqlx.Named(queryCreateAnalysis, argsKV)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to build SQL query for CreateAnalysis")
		return 0, err
	}
	query = r.q.Rebind(query)

	var id int64
	if err := r.q.QueryRowxContext(ctx, query, args...).Scan(&id); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    analysis.CallID,
			"error":      err.Error(),
		}).Error("Database error when creating call analysis")
		return 0, err
	}

	return id, nil
}

func (r *analysesRepository) GetAnalysesByCallID(ctx context.Context, callID int64) ([]entity.CallAnalysis, error) {
	requestID := contextPkg.GetRequestID(ctx)
	var analysesList []AnalysisDB

	query, args, err := sqlx.Named(queryGetAnalysesByCallID, map[string]interface{}{
		"call_id": callID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysesByCallID named query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	if err := r.q.SelectContext(ctx, &analysesList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysesByCallID execution err")
		return nil, err
	}

	analyses := make([]entity.CallAnalysis, 0, len(analysesList))
	for _, analysisDB := range analysesList {
		analyses = append(analyses, r.makeAnalysis(analysisDB))
	}

	return analyses, nil
}

func (r *analysesRepository) GetAnalysesByCallIDs(ctx context.Context, callIDs []int64) (map[int64][]entity.CallAnalysis, error) {
	requestID := contextPkg.GetRequestID(ctx)
	grouped := make(map[int64][]entity.CallAnalysis, len(callIDs))
	if len(callIDs) == 0 {
		return grouped, nil
	}

	query, args, err := sqlx.In(queryGetAnalysesByCallIDs, callIDs)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysesByCallIDs in query preparation err")
		return nil, err
	}

	query = r.q.Rebind(query)

	var analysesList []AnalysisDB
	if err := r.q.SelectContext(ctx, &analysesList, query, args...); err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("GetAnalysesByCallIDs execution err")
		return nil, err
	}

	for _, analysisDB := range analysesList {
		grouped[analysisDB.CallID] = append(grouped[analysisDB.CallID], r.makeAnalysis(analysisDB))
	}

	return grouped, nil
}

func (r *analysesRepository) DeleteAnalysesByCallID(ctx context.Context, callID int64) (int64, error) {
	requestID := contextPkg.GetRequestID(ctx)

	query, args, err := sqlx.Named(queryDeleteAnalysesByCallID, map[string]interface{}{
		"call_id": callID,
	})
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("DeleteAnalysesByCallID named query preparation err")
		return 0, err
	}

	query = r.q.Rebind(query)

	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		r.log.WithFields(logrus.Fields{
			"request_id": requestID,
			"call_id":    callID,
			"error":      err.Error(),
		}).Error("DeleteAnalysesByCallID execution err")
		return 0, err
	}

	return result.RowsAffected()
}

func (r *analysesRepository) makeAnalysis(analysis AnalysisDB) entity.CallAnalysis {
	return entity.CallAnalysis{
		ID:              analysis.ID,
		CallID:          analysis.CallID,
		AnalysisType:    analysis.AnalysisType.String,
		Content:         analysis.Content.String,
		ConfidenceScore: floatPtr(analysis.ConfidenceScore),
		CreatedAt:       analysis.CreatedAt,
	}
}
