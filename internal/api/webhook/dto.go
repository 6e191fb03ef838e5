package webhooks

import "CoachingAPI/internal/api/call"

type CallCompletedRequest struct {
	EventID         string   `json:"event_id" validate:"omitempty,max=255"`
	CallID          *int64   `json:"call_id" validate:"omitempty,gt=0"`
	Title           *string  `json:"title" validate:"omitempty,max=255"`
	Description     *string  `json:"description"`
	AudioFilePath   *string  `json:"audio_file_path" validate:"omitempty,max=500"`
	Transcript      *string  `json:"transcript"`
	Duration        *float64 `json:"duration" validate:"omitempty,gte=0"`
	RequestAnalysis *bool    `json:"request_analysis"`
}

// WantsAnalysis defaults to true when the sender leaves the flag out.
func (r CallCompletedRequest) WantsAnalysis() bool {
	return r.RequestAnalysis == nil || *r.RequestAnalysis
}

type AnalysisReadyRequest struct {
	EventID         string                         `json:"event_id" validate:"omitempty,max=255"`
	CallID          int64                          `json:"call_id" validate:"required,gt=0"`
	AnalysisType    string                         `json:"analysis_type" validate:"required,max=100"`
	Content         string                         `json:"content" validate:"required"`
	ConfidenceScore *float64                       `json:"confidence_score" validate:"omitempty,gte=0,lte=1"`
	Objections      []calls.CreateObjectionRequest `json:"objections" validate:"omitempty,dive"`
}

type CallCompletedResponse struct {
	Duplicate bool                `json:"duplicate"`
	Call      *calls.CallResponse `json:"call,omitempty"`
}

type AnalysisReadyResponse struct {
	Duplicate  bool                      `json:"duplicate"`
	Analysis   *calls.AnalysisResponse   `json:"analysis,omitempty"`
	Objections []calls.ObjectionResponse `json:"objections,omitempty"`
}

// CallCompletedEvent is published on call.completed.
type CallCompletedEvent struct {
	CallID        int64    `json:"call_id"`
	Title         string   `json:"title"`
	AudioFilePath *string  `json:"audio_file_path,omitempty"`
	Duration      *float64 `json:"duration,omitempty"`
}

// AnalysisRequestedEvent is published on analysis.requested.
type AnalysisRequestedEvent struct {
	CallID        int64   `json:"call_id"`
	AudioFilePath *string `json:"audio_file_path,omitempty"`
	HasTranscript bool    `json:"has_transcript"`
}
