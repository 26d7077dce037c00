package detection

import (
	"testing"

	"github.com/teslashibe/go-moodshell/pkg/expression"
)

func TestFace_Center(t *testing.T) {
	tests := []struct {
		name    string
		face    Face
		expectX float64
		expectY float64
	}{
		{
			name:    "center of image",
			face:    Face{X: 0.25, Y: 0.25, W: 0.5, H: 0.5},
			expectX: 0.5,
			expectY: 0.5,
		},
		{
			name:    "top left corner",
			face:    Face{X: 0, Y: 0, W: 0.2, H: 0.2},
			expectX: 0.1,
			expectY: 0.1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := tc.face.Center()
			if x != tc.expectX {
				t.Errorf("Center X: got %.2f, want %.2f", x, tc.expectX)
			}
			if y != tc.expectY {
				t.Errorf("Center Y: got %.2f, want %.2f", y, tc.expectY)
			}
		})
	}
}

func TestFace_Area(t *testing.T) {
	f := Face{W: 0.1, H: 0.2}
	diff := f.Area() - 0.02
	if diff < -0.0001 || diff > 0.0001 {
		t.Errorf("Area: got %.4f, want 0.02", f.Area())
	}
}

func TestSelectBest(t *testing.T) {
	tests := []struct {
		name      string
		faces     []Face
		expectNil bool
		expectIdx int
	}{
		{
			name:      "empty list",
			faces:     []Face{},
			expectNil: true,
		},
		{
			name:      "single face",
			faces:     []Face{{X: 0.4, Y: 0.4, W: 0.2, H: 0.2, Confidence: 0.9}},
			expectIdx: 0,
		},
		{
			name: "high confidence beats larger area",
			faces: []Face{
				{X: 0.0, Y: 0.0, W: 0.4, H: 0.4, Confidence: 0.5},
				{X: 0.3, Y: 0.3, W: 0.2, H: 0.2, Confidence: 0.95},
			},
			expectIdx: 1, // 0.95*0.7 + 0.25*0.3 = 0.74 vs 0.5*0.7 + 1.0*0.3 = 0.65
		},
		{
			name: "similar confidence picks larger",
			faces: []Face{
				{X: 0.3, Y: 0.3, W: 0.1, H: 0.1, Confidence: 0.8},
				{X: 0.0, Y: 0.0, W: 0.5, H: 0.5, Confidence: 0.8},
			},
			expectIdx: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			best := SelectBest(tc.faces)
			if tc.expectNil {
				if best != nil {
					t.Errorf("SelectBest: expected nil, got %+v", best)
				}
				return
			}
			if best == nil {
				t.Fatal("SelectBest: expected non-nil, got nil")
			}

			expected := tc.faces[tc.expectIdx]
			if best.Confidence != expected.Confidence || best.X != expected.X {
				t.Errorf("SelectBest: got %+v, want %+v", best, expected)
			}
		})
	}
}

func TestRankDoesNotMutateInput(t *testing.T) {
	faces := []Face{
		{W: 0.1, H: 0.1, Confidence: 0.6},
		{W: 0.5, H: 0.5, Confidence: 0.9},
	}

	ranked := Rank(faces)

	if faces[0].Confidence != 0.6 {
		t.Error("Rank reordered the caller's slice")
	}
	if ranked[0].Confidence != 0.9 {
		t.Errorf("Rank: best face should come first, got %+v", ranked[0])
	}
}

func TestObservationsBestFirst(t *testing.T) {
	faces := []Face{
		{W: 0.1, H: 0.1, Confidence: 0.55, Observation: expression.FaceObservation{SmilingProbability: expression.P(0.1)}},
		{W: 0.4, H: 0.4, Confidence: 0.95, Observation: expression.FaceObservation{SmilingProbability: expression.P(0.9)}},
		{W: 0.2, H: 0.2, Confidence: 0.7, Observation: expression.FaceObservation{SmilingProbability: expression.P(0.5)}},
	}

	obs := Observations(faces)

	if len(obs) != 3 {
		t.Fatalf("Observations: got %d, want 3", len(obs))
	}
	if *obs[0].SmilingProbability != 0.9 {
		t.Errorf("Observations: first should be the best face, got smile %.2f", *obs[0].SmilingProbability)
	}
}

func TestObservationsEmpty(t *testing.T) {
	if obs := Observations(nil); len(obs) != 0 {
		t.Errorf("Observations(nil): got %d, want 0", len(obs))
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ModelPath == "" {
		t.Error("DefaultConfig: ModelPath should not be empty")
	}
	if cfg.ConfidenceThresh <= 0 || cfg.ConfidenceThresh > 1 {
		t.Errorf("DefaultConfig: ConfidenceThresh should be 0-1, got %f", cfg.ConfidenceThresh)
	}
	if cfg.InputWidth <= 0 || cfg.InputHeight <= 0 {
		t.Errorf("DefaultConfig: input size should be positive, got %dx%d", cfg.InputWidth, cfg.InputHeight)
	}
}
