package callService

import (
	"CoachingAPI/internal/api/call"
	callRepository "CoachingAPI/internal/api/call/repository"
	"CoachingAPI/internal/entity"
	"CoachingAPI/pkg/response"
	"CoachingAPI/pkg/s3"
	"context"
	"errors"
	"github.com/sirupsen/logrus"
	"time"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

type ICallService interface {
	CreateCall(ctx context.Context, req calls.CreateCallRequest) (entity.Call, error)
	GetCall(ctx context.Context, id int64) (calls.CallResponse, error)
	ListCalls(ctx context.Context, page, limit int) (*calls.CallListResponse, error)
	UpdateCall(ctx context.Context, id int64, req calls.UpdateCallRequest) (entity.Call, error)
	DeleteCall(ctx context.Context, id int64) error

	AddAnalysis(ctx context.Context, callID int64, req calls.CreateAnalysisRequest) (entity.CallAnalysis, error)
	ListAnalyses(ctx context.Context, callID int64) ([]entity.CallAnalysis, error)
	RecordAnalysisResult(ctx context.Context, callID int64, analysis calls.CreateAnalysisRequest, objections []calls.CreateObjectionRequest) (entity.CallAnalysis, []entity.Objection, error)

	AddObjection(ctx context.Context, callID int64, req calls.CreateObjectionRequest) (entity.Objection, error)
	ListObjections(ctx context.Context, callID int64) ([]entity.Objection, error)
	GetObjection(ctx context.Context, id int64) (entity.Objection, error)
	ResolveObjection(ctx context.Context, id int64, req calls.ResolveObjectionRequest) (entity.Objection, error)

	GetSummary(ctx context.Context) (calls.CallSummaryResponse, error)
	GetObjectionStats(ctx context.Context) ([]calls.ObjectionStatsResponse, error)
}

// StoreObserver receives one outcome per store operation.
type StoreObserver interface {
	ObserveStoreOperation(operation, result string)
}

type callsService struct {
	log      *logrus.Logger
	repo     callRepository.Repository
	s3Client s3.ItfS3
	observer StoreObserver
	locks    *keyedMutex
	now      func() time.Time
}

// NewCallService wires the store. s3Client and observer may be nil.
func NewCallService(
	log *logrus.Logger,
	repo callRepository.Repository,
	s3Client s3.ItfS3,
	observer StoreObserver,
) ICallService {
	return &callsService{
		log:      log,
		repo:     repo,
		s3Client: s3Client,
		observer: observer,
		locks:    newKeyedMutex(),
		now:      func() time.Time { return time.Now().UTC().Truncate(time.Microsecond) },
	}
}

func (s *callsService) observe(operation string, err error) {
	if s.observer == nil {
		return
	}
	s.observer.ObserveStoreOperation(operation, outcome(err))
}

func outcome(err error) string {
	if err == nil {
		return "ok"
	}

	var verr *response.ValidationError
	if errors.As(err, &verr) {
		return "invalid"
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		if respErr.Code == 404 {
			return "not_found"
		}
		return "rejected"
	}

	return "error"
}

// storageErr keeps domain errors as they are and wraps everything else.
func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}

	var respErr *response.Error
	if errors.As(err, &respErr) {
		return err
	}

	var verr *response.ValidationError
	if errors.As(err, &verr) {
		return err
	}

	return response.NewStorageError(op, err)
}
