package mood

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-moodshell/pkg/expression"
)

func TestNewSelfieEntryCarriesClassification(t *testing.T) {
	c := expression.Classify([]expression.FaceObservation{{
		SmilingProbability:      expression.P(0.8),
		LeftEyeOpenProbability:  expression.P(1),
		RightEyeOpenProbability: expression.P(1),
		HeadEulerAngleX:         expression.P(0),
	}})
	require.NotNil(t, c)

	taken := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	e := NewSelfieEntry(10, c, taken, "pleasant")

	data, err := json.Marshal(e)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, "selfie", got["entry_type"])
	assert.Equal(t, float64(10), got["mood_score"])
	assert.Equal(t, "very_happy", got["face_expression"])
	assert.Equal(t, 0.8, got["face_expression_confidence"])
	assert.Equal(t, "high", got["face_energy_level"])
	assert.Equal(t, float64(1), got["face_eyes_openness"])
	assert.Equal(t, "alone", got["face_social_context"])
	assert.Equal(t, float64(1), got["face_total_faces"])
	assert.Equal(t, "pleasant", got["environment_brightness"])
	assert.Equal(t, "2026-03-01T12:00:00Z", got["selfie_taken_at"])

	raw, ok := got["face_analysis_raw"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 0.8, raw["smilingProbability"])
	assert.Contains(t, raw, "headEulerAngleZ")
}

func TestNewSelfieEntryUndetected(t *testing.T) {
	e := NewSelfieEntry(5, nil, time.Now(), "dark")

	assert.Equal(t, EntryTypeSelfie, e.EntryType)
	assert.Nil(t, e.FaceExpression)
	assert.Nil(t, e.FaceAnalysisRaw)
	require.NoError(t, e.Validate())
}

func TestManualEntryNullFields(t *testing.T) {
	e := NewManualEntry(7, "  ").WithTags()

	data, err := json.Marshal(e)
	require.NoError(t, err)
	s := string(data)

	assert.Contains(t, s, `"note":null`)
	assert.Contains(t, s, `"tag_ids":null`)
	assert.Contains(t, s, `"calendar_event_id":null`)
	assert.NotContains(t, s, "user_id")
}

func TestEntryBuilders(t *testing.T) {
	e := NewManualEntry(6, "ok").WithNote(" better now ").WithEvent("evt-1").WithTags("work", "sleep")

	require.NotNil(t, e.Note)
	assert.Equal(t, "better now", *e.Note)
	require.NotNil(t, e.CalendarEventID)
	assert.Equal(t, "evt-1", *e.CalendarEventID)
	assert.Equal(t, []string{"work", "sleep"}, e.TagIDs)
	assert.Equal(t, "Neutral", e.Label())
}

func TestEntryValidate(t *testing.T) {
	tests := []struct {
		name    string
		entry   Entry
		wantErr error
	}{
		{"zero score", NewManualEntry(0, ""), ErrInvalidScore},
		{"score too high", NewManualEntry(11, ""), ErrInvalidScore},
		{"note too long", NewManualEntry(5, strings.Repeat("a", MaxNoteLength+1)), ErrNoteTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.entry.Validate(), tt.wantErr)
		})
	}

	assert.NoError(t, NewManualEntry(1, strings.Repeat("a", MaxNoteLength)).Validate())
	assert.Error(t, Entry{MoodScore: 5, EntryType: "voice"}.Validate())
}
