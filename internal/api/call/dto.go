package calls

import (
	"CoachingAPI/internal/entity"
	"time"
)

type CreateCallRequest struct {
	Title         string   `json:"title" validate:"required,max=255"`
	Description   *string  `json:"description"`
	AudioFilePath *string  `json:"audio_file_path" validate:"omitempty,max=500"`
	Transcript    *string  `json:"transcript"`
	Duration      *float64 `json:"duration" validate:"omitempty,gte=0"`
}

// UpdateCallRequest is a partial update, nil fields are left untouched.
type UpdateCallRequest struct {
	Title         *string  `json:"title" validate:"omitempty,max=255"`
	Description   *string  `json:"description"`
	AudioFilePath *string  `json:"audio_file_path" validate:"omitempty,max=500"`
	Transcript    *string  `json:"transcript"`
	Duration      *float64 `json:"duration" validate:"omitempty,gte=0"`
}

func (r UpdateCallRequest) IsEmpty() bool {
	return r.Title == nil && r.Description == nil && r.AudioFilePath == nil &&
		r.Transcript == nil && r.Duration == nil
}

type CreateAnalysisRequest struct {
	AnalysisType    string   `json:"analysis_type" validate:"required,max=100"`
	Content         string   `json:"content" validate:"required"`
	ConfidenceScore *float64 `json:"confidence_score" validate:"omitempty,gte=0,lte=1"`
}

type CreateObjectionRequest struct {
	ObjectionText        string   `json:"objection_text" validate:"required"`
	ObjectionType        *string  `json:"objection_type" validate:"omitempty,max=100"`
	Timestamp            *float64 `json:"timestamp" validate:"omitempty,gte=0"`
	ResponseText         *string  `json:"response_text"`
	EffectivenessScore   *float64 `json:"effectiveness_score" validate:"omitempty,gte=0,lte=1"`
	SuggestedImprovement *string  `json:"suggested_improvement"`
}

type ResolveObjectionRequest struct {
	ResponseText         *string  `json:"response_text"`
	SuggestedImprovement *string  `json:"suggested_improvement"`
	EffectivenessScore   *float64 `json:"effectiveness_score" validate:"omitempty,gte=0,lte=1"`
}

type CallResponse struct {
	ID            int64               `json:"id"`
	Title         string              `json:"title"`
	Description   *string             `json:"description,omitempty"`
	AudioFilePath *string             `json:"audio_file_path,omitempty"`
	AudioURL      string              `json:"audio_url,omitempty"`
	Transcript    *string             `json:"transcript,omitempty"`
	Duration      *float64            `json:"duration,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	UpdatedAt     time.Time           `json:"updated_at"`
	Analyses      []AnalysisResponse  `json:"analyses"`
	Objections    []ObjectionResponse `json:"objections"`
}

type AnalysisResponse struct {
	ID              int64     `json:"id"`
	CallID          int64     `json:"call_id"`
	AnalysisType    string    `json:"analysis_type"`
	Content         string    `json:"content"`
	ConfidenceScore *float64  `json:"confidence_score,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

type ObjectionResponse struct {
	ID                   int64     `json:"id"`
	CallID               int64     `json:"call_id"`
	ObjectionText        string    `json:"objection_text"`
	ObjectionType        *string   `json:"objection_type,omitempty"`
	Timestamp            *float64  `json:"timestamp,omitempty"`
	ResponseText         *string   `json:"response_text,omitempty"`
	EffectivenessScore   *float64  `json:"effectiveness_score,omitempty"`
	SuggestedImprovement *string   `json:"suggested_improvement,omitempty"`
	IsResolved           bool      `json:"is_resolved"`
	CreatedAt            time.Time `json:"created_at"`
}

type CallListResponse struct {
	Calls []CallResponse `json:"calls"`
	Total int            `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

type CallSummaryResponse struct {
	TotalCalls               int     `json:"total_calls"`
	TotalDuration            float64 `json:"total_duration"`
	AverageObjectionsPerCall float64 `json:"average_objections_per_call"`
	ResolutionRate           float64 `json:"resolution_rate"`
	MostCommonObjectionType  string  `json:"most_common_objection_type"`
}

type ObjectionStatsResponse struct {
	Type                 string  `json:"type"`
	Count                int     `json:"count"`
	AverageEffectiveness float64 `json:"average_effectiveness"`
	ResolutionRate       float64 `json:"resolution_rate"`
}

func NewCallResponse(call entity.Call) CallResponse {
	resp := CallResponse{
		ID:            call.ID,
		Title:         call.Title,
		Description:   call.Description,
		AudioFilePath: call.AudioFilePath,
		Transcript:    call.Transcript,
		Duration:      call.Duration,
		CreatedAt:     call.CreatedAt,
		UpdatedAt:     call.UpdatedAt,
		Analyses:      make([]AnalysisResponse, 0, len(call.Analyses)),
		Objections:    make([]ObjectionResponse, 0, len(call.Objections)),
	}

	for _, a := range call.Analyses {
		resp.Analyses = append(resp.Analyses, NewAnalysisResponse(a))
	}
	for _, o := range call.Objections {
		resp.Objections = append(resp.Objections, NewObjectionResponse(o))
	}

	return resp
}

func NewAnalysisResponse(a entity.CallAnalysis) AnalysisResponse {
	return AnalysisResponse{
		ID:              a.ID,
		CallID:          a.CallID,
		AnalysisType:    a.AnalysisType,
		Content:         a.Content,
		ConfidenceScore: a.ConfidenceScore,
		CreatedAt:       a.CreatedAt,
	}
}

func NewObjectionResponse(o entity.Objection) ObjectionResponse {
	return ObjectionResponse{
		ID:                   o.ID,
		CallID:               o.CallID,
		ObjectionText:        o.ObjectionText,
		ObjectionType:        o.ObjectionType,
		Timestamp:            o.Timestamp,
		ResponseText:         o.ResponseText,
		EffectivenessScore:   o.EffectivenessScore,
		SuggestedImprovement: o.SuggestedImprovement,
		IsResolved:           o.IsResolved,
		CreatedAt:            o.CreatedAt,
	}
}
