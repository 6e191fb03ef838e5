package entity

import (
	"CoachingAPI/pkg/response"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T {
	return &v
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *response.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	return verr.Fields
}

func TestCallValidate(t *testing.T) {
	tests := []struct {
		name    string
		call    Call
		invalid []string
	}{
		{name: "minimal", call: Call{Title: "Demo Call"}},
		{name: "zero duration", call: Call{Title: "Demo Call", Duration: ptr(0.0)}},
		{name: "empty title", call: Call{Title: ""}, invalid: []string{"title"}},
		{name: "blank title", call: Call{Title: "   "}, invalid: []string{"title"}},
		{name: "long title", call: Call{Title: strings.Repeat("a", MaxTitleLength+1)}, invalid: []string{"title"}},
		{name: "negative duration", call: Call{Title: "x", Duration: ptr(-0.5)}, invalid: []string{"duration"}},
		{name: "nan duration", call: Call{Title: "x", Duration: ptr(math.NaN())}, invalid: []string{"duration"}},
		{
			name:    "long audio path and empty title",
			call:    Call{AudioFilePath: ptr(strings.Repeat("p", MaxAudioFilePathLength+1))},
			invalid: []string{"title", "audio_file_path"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.call.Validate()
			if len(tt.invalid) == 0 {
				assert.NoError(t, err)
				return
			}
			fields := fieldsOf(t, err)
			assert.Len(t, fields, len(tt.invalid))
			for _, f := range tt.invalid {
				assert.Contains(t, fields, f)
			}
		})
	}
}

func TestCallAnalysisValidateScoreBoundaries(t *testing.T) {
	base := CallAnalysis{AnalysisType: "coaching_feedback", Content: "Good discovery questions."}

	for _, score := range []float64{0, 0.5, 1} {
		a := base
		a.ConfidenceScore = ptr(score)
		assert.NoError(t, a.Validate(), "score %v", score)
	}

	for _, score := range []float64{-0.01, 1.5, math.NaN(), math.Inf(1)} {
		a := base
		a.ConfidenceScore = ptr(score)
		fields := fieldsOf(t, a.Validate())
		assert.Contains(t, fields, "confidence_score", "score %v", score)
	}

	fields := fieldsOf(t, (&CallAnalysis{}).Validate())
	assert.Contains(t, fields, "analysis_type")
	assert.Contains(t, fields, "content")
}

func TestObjectionValidate(t *testing.T) {
	ok := Objection{ObjectionText: "too expensive", ObjectionType: ptr("price"), Timestamp: ptr(0.0)}
	assert.NoError(t, ok.Validate())

	bad := Objection{ObjectionText: "too expensive", Timestamp: ptr(-1.0), EffectivenessScore: ptr(2.0)}
	fields := fieldsOf(t, bad.Validate())
	assert.Contains(t, fields, "timestamp")
	assert.Contains(t, fields, "effectiveness_score")

	fields = fieldsOf(t, (&Objection{ObjectionType: ptr(strings.Repeat("t", MaxCategoryLength+1))}).Validate())
	assert.Contains(t, fields, "objection_text")
	assert.Contains(t, fields, "objection_type")
}

func TestObjectionResolveIsOneWay(t *testing.T) {
	o := Objection{ObjectionText: "too expensive", ResponseText: ptr("initial")}

	o.Resolve(nil, ptr("anchor on ROI"), ptr(0.8))
	assert.True(t, o.IsResolved)
	assert.Equal(t, "initial", *o.ResponseText)
	assert.Equal(t, "anchor on ROI", *o.SuggestedImprovement)
	assert.Equal(t, 0.8, *o.EffectivenessScore)

	o.Resolve(ptr("offered discount"), nil, nil)
	assert.True(t, o.IsResolved)
	assert.Equal(t, "offered discount", *o.ResponseText)
	assert.Equal(t, 0.8, *o.EffectivenessScore)
}
