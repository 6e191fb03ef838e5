package callRepository

import (
	"CoachingAPI/internal/entity"
	"database/sql"
	"github.com/jmoiron/sqlx"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

type SQLExecutor interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row
	Rebind(query string) string
}

func New(db *sqlx.DB, log *logrus.Logger) Repository {
	return &repository{
		DB:  db,
		log: log,
	}
}

type repository struct {
	DB  *sqlx.DB
	log *logrus.Logger
}

type Repository interface {
	NewClient(ctx context.Context, tx bool) (Client, error)
}

func (r *repository) NewClient(ctx context.Context, tx bool) (Client, error) {
	var sqlExecutor SQLExecutor
	var commitFunc, rollbackFunc func() error

	sqlExecutor = r.DB

	if tx {
		txx, err := r.DB.BeginTxx(ctx, &sql.TxOptions{})
		if err != nil {
			return Client{}, err
		}

		sqlExecutor = txx
		commitFunc = txx.Commit
		rollbackFunc = txx.Rollback
	} else {
		commitFunc = func() error { return nil }
		rollbackFunc = func() error { return nil }
	}

	return Client{
		Calls:      &callsRepository{q: sqlExecutor, log: r.log},
		Analyses:   &analysesRepository{q: sqlExecutor, log: r.log},
		Objections: &objectionsRepository{q: sqlExecutor, log: r.log},
		Stats:      &statsRepository{q: sqlExecutor, log: r.log},
		Commit:     commitFunc,
		Rollback:   rollbackFunc,
	}, nil
}

type Client struct {
	Calls interface {
		CreateCall(ctx context.Context, call entity.Call) (int64, error)
		GetCallByID(ctx context.Context, id int64) (entity.Call, error)
		LockCallByID(ctx context.Context, id int64) (entity.Call, error)
		GetAllCalls(ctx context.Context, limit, offset int) ([]entity.Call, int, error)
		UpdateCall(ctx context.Context, call entity.Call) error
		DeleteCall(ctx context.Context, id int64) error
	}

	Analyses interface {
		CreateAnalysis(ctx context.Context, analysis entity.CallAnalysis) (int64, error)
		GetAnalysesByCallID(ctx context.Context, callID int64) ([]entity.CallAnalysis, error)
		GetAnalysesByCallIDs(ctx context.Context, callIDs []int64) (map[int64][]entity.CallAnalysis, error)
		DeleteAnalysesByCallID(ctx context.Context, callID int64) (int64, error)
	}

	Objections interface {
		CreateObjection(ctx context.Context, objection entity.Objection) (int64, error)
		GetObjectionByID(ctx context.Context, id int64) (entity.Objection, error)
		GetObjectionsByCallID(ctx context.Context, callID int64) ([]entity.Objection, error)
		GetObjectionsByCallIDs(ctx context.Context, callIDs []int64) (map[int64][]entity.Objection, error)
		ResolveObjection(ctx context.Context, objection entity.Objection) error
		DeleteObjectionsByCallID(ctx context.Context, callID int64) (int64, error)
	}

	Stats interface {
		GetCallTotals(ctx context.Context) (CallTotals, error)
		GetObjectionTotals(ctx context.Context) (ObjectionTotals, error)
		GetMostCommonObjectionType(ctx context.Context) (string, error)
		GetObjectionStatsByType(ctx context.Context) ([]ObjectionTypeStats, error)
	}

	Commit   func() error
	Rollback func() error
}

type callsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type analysesRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type objectionsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

type statsRepository struct {
	q   SQLExecutor
	log *logrus.Logger
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

func floatPtr(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}
