// Package selfie runs the mood selfie pipeline: normalize the photo, detect
// faces, classify the expression and map it to a mood score.
package selfie

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/teslashibe/go-moodshell/internal/log"
	"github.com/teslashibe/go-moodshell/pkg/camera"
	"github.com/teslashibe/go-moodshell/pkg/detection"
	"github.com/teslashibe/go-moodshell/pkg/expression"
	"github.com/teslashibe/go-moodshell/pkg/metrics"
	"github.com/teslashibe/go-moodshell/pkg/mood"
)

// Environment brightness estimates.
const (
	EnvironmentPleasant = "pleasant"
	EnvironmentNeutral  = "neutral"
	EnvironmentDim      = "dim"
	EnvironmentDark     = "dark"
)

// FaceBox is a detected face in normalized image coordinates.
type FaceBox struct {
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
	Confidence float64 `json:"confidence"`
}

// Analysis is the result of one selfie.
type Analysis struct {
	Detected       bool                       `json:"detected"`
	Classification *expression.Classification `json:"classification,omitempty"`
	MoodScore      int                        `json:"mood_score"`
	MoodLabel      string                     `json:"mood_label"`
	Environment    string                     `json:"environment"`
	Faces          []FaceBox                  `json:"faces"`
	Width          int                        `json:"width"`
	Height         int                        `json:"height"`
	CapturedAt     time.Time                  `json:"captured_at"`

	// Image is the normalized JPEG the detector saw.
	Image []byte `json:"-"`
}

// Analyzer runs detection and classification on selfies.
type Analyzer struct {
	detector detection.Detector
	camera   *camera.Manager
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewAnalyzer creates an analyzer. A nil detector reports every photo as
// undetected. Preprocessing follows the camera manager's current settings.
func NewAnalyzer(d detection.Detector, cam *camera.Manager, m *metrics.Metrics) *Analyzer {
	if cam == nil {
		cam = camera.NewManager()
	}
	return &Analyzer{
		detector: d,
		camera:   cam,
		metrics:  m,
		logger:   log.With("component", "selfie"),
		now:      time.Now,
	}
}

// HasDetector reports whether a face detector is configured.
func (a *Analyzer) HasDetector() bool {
	return a.detector != nil
}

// Analyze normalizes jpeg and classifies the best face in it.
// Detector failures are logged and treated as no faces.
func (a *Analyzer) Analyze(ctx context.Context, jpeg []byte) (*Analysis, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := a.camera.GetConfig()
	img, err := Normalize(jpeg, NormalizeOptions{
		Mirror:       cfg.Mirror && cfg.Facing == camera.FacingFront,
		MaxDimension: cfg.MaxDimension,
		Quality:      cfg.UploadQuality,
	})
	if err != nil {
		return nil, err
	}

	faces := a.detect(img.JPEG)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	now := a.now()
	result := &Analysis{
		MoodScore:   expression.DefaultMoodScore,
		Environment: Environment(now),
		Faces:       boxes(faces),
		Width:       img.Width,
		Height:      img.Height,
		CapturedAt:  now,
		Image:       img.JPEG,
	}

	if c := expression.Classify(detection.Observations(faces)); c != nil {
		result.Detected = true
		result.Classification = c
		result.MoodScore = expression.MoodScoreFor(c.Expression)
		a.metrics.IncAnalysis(string(c.Expression))
		a.logger.Info("selfie analyzed", "expression", c.Expression, "confidence", c.ExpressionConfidence,
			"score", result.MoodScore, "faces", c.TotalFaces)
	} else {
		a.metrics.IncAnalysis("undetected")
		a.logger.Info("no face detected")
	}
	result.MoodLabel = expression.MoodLabel(result.MoodScore)

	return result, nil
}

// Capture waits out the camera's countdown, takes one frame from src and
// analyzes it. Canceling ctx aborts the countdown.
func (a *Analyzer) Capture(ctx context.Context, src camera.Source) (*Analysis, error) {
	if countdown := a.camera.GetConfig().CountdownSeconds; countdown > 0 {
		a.logger.Debug("selfie countdown", "seconds", countdown)
		timer := time.NewTimer(time.Duration(countdown) * time.Second)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	frame, err := src.CaptureFrame(ctx)
	if err != nil {
		return nil, fmt.Errorf("capture: %w", err)
	}
	return a.Analyze(ctx, frame)
}

func (a *Analyzer) detect(jpeg []byte) []detection.Face {
	if a.detector == nil {
		return nil
	}
	faces, err := a.detector.Detect(jpeg)
	if err != nil {
		a.metrics.IncDetectorError()
		a.logger.Warn("face detection failed, treating as no faces", "error", err)
		return nil
	}
	return detection.Rank(faces)
}

func boxes(faces []detection.Face) []FaceBox {
	out := make([]FaceBox, 0, len(faces))
	for _, f := range faces {
		out = append(out, FaceBox{X: f.X, Y: f.Y, W: f.W, H: f.H, Confidence: f.Confidence})
	}
	return out
}

// Environment estimates lighting from the local hour.
func Environment(t time.Time) string {
	switch h := t.Hour(); {
	case h >= 10 && h <= 15:
		return EnvironmentPleasant
	case h >= 16 && h <= 18:
		return EnvironmentNeutral
	case h >= 19 && h <= 21:
		return EnvironmentDim
	default:
		return EnvironmentDark
	}
}

// Confirmation is the user's decision on an analysis.
type Confirmation struct {
	MoodScore int      `json:"mood_score,omitempty"` // 0 keeps the detected score
	Note      string   `json:"note,omitempty"`
	EventID   string   `json:"event_id,omitempty"`
	TagIDs    []string `json:"tag_ids,omitempty"`
}

// Confirm builds the mood entry for an analysis. A user-selected score
// overrides the detected one.
func Confirm(a *Analysis, c Confirmation) mood.Entry {
	score := a.MoodScore
	if c.MoodScore != 0 {
		score = c.MoodScore
	}
	return mood.NewSelfieEntry(score, a.Classification, a.CapturedAt, a.Environment).
		WithNote(c.Note).
		WithEvent(c.EventID).
		WithTags(c.TagIDs...)
}
