// Package mood builds mood entries and posts them to the backend.
package mood

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/teslashibe/go-moodshell/pkg/expression"
)

// Entry types.
const (
	EntryTypeSelfie = "selfie"
	EntryTypeManual = "manual"
)

// MaxNoteLength is the longest note the backend accepts.
const MaxNoteLength = 300

var (
	ErrInvalidScore = errors.New("mood score must be between 1 and 10")
	ErrNoteTooLong  = fmt.Errorf("note exceeds %d characters", MaxNoteLength)
)

// Entry is the payload for POST /api/moods. Face fields carry the
// classification verbatim and are omitted for manual entries.
type Entry struct {
	UserID          string     `json:"user_id,omitempty"`
	MoodScore       int        `json:"mood_score"`
	Note            *string    `json:"note"`
	CalendarEventID *string    `json:"calendar_event_id"`
	TagIDs          []string   `json:"tag_ids"`
	EntryType       string     `json:"entry_type"`
	SelfieTakenAt   *time.Time `json:"selfie_taken_at"`

	FaceExpression           *expression.Expression    `json:"face_expression"`
	FaceExpressionConfidence *float64                  `json:"face_expression_confidence"`
	FaceEnergyLevel          *expression.EnergyLevel   `json:"face_energy_level"`
	FaceEyesOpenness         *float64                  `json:"face_eyes_openness"`
	FaceSocialContext        *expression.SocialContext `json:"face_social_context"`
	FaceTotalFaces           *int                      `json:"face_total_faces"`
	EnvironmentBrightness    *string                   `json:"environment_brightness"`
	FaceAnalysisRaw          *expression.RawData       `json:"face_analysis_raw"`
}

// NewManualEntry creates an entry without selfie data.
func NewManualEntry(score int, note string) Entry {
	return Entry{
		MoodScore: score,
		Note:      optional(note),
		EntryType: EntryTypeManual,
	}
}

// NewSelfieEntry creates an entry from a classification. c may be nil when
// no face was detected; the entry is still a selfie entry.
func NewSelfieEntry(score int, c *expression.Classification, takenAt time.Time, environment string) Entry {
	e := Entry{
		MoodScore:             score,
		EntryType:             EntryTypeSelfie,
		SelfieTakenAt:         &takenAt,
		EnvironmentBrightness: optional(environment),
	}
	if c == nil {
		return e
	}

	expr := c.Expression
	energy := c.EnergyLevel
	social := c.SocialContext
	conf := c.ExpressionConfidence
	eyes := c.EyesOpenness
	total := c.TotalFaces
	raw := c.RawData

	e.FaceExpression = &expr
	e.FaceExpressionConfidence = &conf
	e.FaceEnergyLevel = &energy
	e.FaceEyesOpenness = &eyes
	e.FaceSocialContext = &social
	e.FaceTotalFaces = &total
	e.FaceAnalysisRaw = &raw
	return e
}

// WithNote sets the note. Blank notes are sent as null.
func (e Entry) WithNote(note string) Entry {
	e.Note = optional(note)
	return e
}

// WithEvent links the entry to a calendar event.
func (e Entry) WithEvent(eventID string) Entry {
	e.CalendarEventID = optional(eventID)
	return e
}

// WithTags attaches tag ids. An empty list is sent as null.
func (e Entry) WithTags(ids ...string) Entry {
	if len(ids) == 0 {
		e.TagIDs = nil
		return e
	}
	e.TagIDs = append([]string(nil), ids...)
	return e
}

// Validate checks the entry before it is sent.
func (e Entry) Validate() error {
	var errs []error
	if !expression.ValidMoodScore(e.MoodScore) {
		errs = append(errs, fmt.Errorf("%w: got %d", ErrInvalidScore, e.MoodScore))
	}
	if e.Note != nil && len([]rune(*e.Note)) > MaxNoteLength {
		errs = append(errs, ErrNoteTooLong)
	}
	if e.EntryType != EntryTypeSelfie && e.EntryType != EntryTypeManual {
		errs = append(errs, fmt.Errorf("unknown entry type %q", e.EntryType))
	}
	return errors.Join(errs...)
}

// Label returns the display label for the entry's score.
func (e Entry) Label() string {
	return expression.MoodLabel(e.MoodScore)
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
