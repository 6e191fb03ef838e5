package entity

import (
	"CoachingAPI/pkg/response"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MaxTitleLength         = 255
	MaxAudioFilePathLength = 500
	MaxCategoryLength      = 100
)

type Call struct {
	ID            int64     `db:"id"`
	Title         string    `db:"title"`
	Description   *string   `db:"description"`
	AudioFilePath *string   `db:"audio_file_path"`
	Transcript    *string   `db:"transcript"`
	Duration      *float64  `db:"duration"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`

	Analyses   []CallAnalysis
	Objections []Objection
}

type CallAnalysis struct {
	ID              int64     `db:"id"`
	CallID          int64     `db:"call_id"`
	AnalysisType    string    `db:"analysis_type"`
	Content         string    `db:"content"`
	ConfidenceScore *float64  `db:"confidence_score"`
	CreatedAt       time.Time `db:"created_at"`
}

type Objection struct {
	ID                   int64     `db:"id"`
	CallID               int64     `db:"call_id"`
	ObjectionText        string    `db:"objection_text"`
	ObjectionType        *string   `db:"objection_type"`
	Timestamp            *float64  `db:"timestamp"`
	ResponseText         *string   `db:"response_text"`
	EffectivenessScore   *float64  `db:"effectiveness_score"`
	SuggestedImprovement *string   `db:"suggested_improvement"`
	IsResolved           bool      `db:"is_resolved"`
	CreatedAt            time.Time `db:"created_at"`
}

func (c *Call) Validate() error {
	verr := response.NewValidationError()

	if strings.TrimSpace(c.Title) == "" {
		verr.Add("title", "is required")
	} else if utf8.RuneCountInString(c.Title) > MaxTitleLength {
		verr.Add("title", fmt.Sprintf("must be at most %d characters", MaxTitleLength))
	}

	if c.AudioFilePath != nil && utf8.RuneCountInString(*c.AudioFilePath) > MaxAudioFilePathLength {
		verr.Add("audio_file_path", fmt.Sprintf("must be at most %d characters", MaxAudioFilePathLength))
	}

	checkNonNegative(verr, "duration", c.Duration)

	return verr.Err()
}

func (a *CallAnalysis) Validate() error {
	verr := response.NewValidationError()

	if strings.TrimSpace(a.AnalysisType) == "" {
		verr.Add("analysis_type", "is required")
	} else if utf8.RuneCountInString(a.AnalysisType) > MaxCategoryLength {
		verr.Add("analysis_type", fmt.Sprintf("must be at most %d characters", MaxCategoryLength))
	}

	if strings.TrimSpace(a.Content) == "" {
		verr.Add("content", "is required")
	}

	CheckScore(verr, "confidence_score", a.ConfidenceScore)

	return verr.Err()
}

func (o *Objection) Validate() error {
	verr := response.NewValidationError()

	if strings.TrimSpace(o.ObjectionText) == "" {
		verr.Add("objection_text", "is required")
	}

	if o.ObjectionType != nil && utf8.RuneCountInString(*o.ObjectionType) > MaxCategoryLength {
		verr.Add("objection_type", fmt.Sprintf("must be at most %d characters", MaxCategoryLength))
	}

	checkNonNegative(verr, "timestamp", o.Timestamp)
	CheckScore(verr, "effectiveness_score", o.EffectivenessScore)

	return verr.Err()
}

// Resolve marks the objection as handled. There is no way back to unresolved.
func (o *Objection) Resolve(responseText, suggestedImprovement *string, effectivenessScore *float64) {
	if responseText != nil {
		o.ResponseText = responseText
	}
	if suggestedImprovement != nil {
		o.SuggestedImprovement = suggestedImprovement
	}
	if effectivenessScore != nil {
		o.EffectivenessScore = effectivenessScore
	}
	o.IsResolved = true
}

// CheckScore rejects scores outside [0, 1]. NaN fails both comparisons and is rejected too.
func CheckScore(verr *response.ValidationError, field string, score *float64) {
	if score == nil {
		return
	}
	if !(*score >= 0 && *score <= 1) {
		verr.Add(field, "must be between 0 and 1")
	}
}

func checkNonNegative(verr *response.ValidationError, field string, value *float64) {
	if value == nil {
		return
	}
	if math.IsNaN(*value) || math.IsInf(*value, 0) {
		verr.Add(field, "must be a finite number")
		return
	}
	if *value < 0 {
		verr.Add(field, "must be greater than or equal to 0")
	}
}
