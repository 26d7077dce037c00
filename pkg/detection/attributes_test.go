package detection

import (
	"math"
	"testing"
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 0.01
}

// levelFace is a frontal face with the nose halfway between eyes and mouth.
func levelFace() Landmarks {
	return Landmarks{
		RightEye:   Point{X: 0.40, Y: 0.40},
		LeftEye:    Point{X: 0.60, Y: 0.40},
		Nose:       Point{X: 0.50, Y: 0.50},
		RightMouth: Point{X: 0.42, Y: 0.60},
		LeftMouth:  Point{X: 0.58, Y: 0.60},
	}
}

func TestHeadPose_Level(t *testing.T) {
	x, y, z := HeadPose(levelFace())
	if !near(x, 0) || !near(y, 0) || !near(z, 0) {
		t.Errorf("HeadPose(level): got (%.2f, %.2f, %.2f), want zeros", x, y, z)
	}
}

func TestHeadPose_LookingDown(t *testing.T) {
	l := levelFace()
	l.Nose.Y = 0.56 // ratio 0.8

	x, _, _ := HeadPose(l)
	if x >= -8 {
		t.Errorf("HeadPose(down): pitch %.2f should be below -8", x)
	}
}

func TestHeadPose_LookingUp(t *testing.T) {
	l := levelFace()
	l.Nose.Y = 0.45

	x, _, _ := HeadPose(l)
	if x <= 0 {
		t.Errorf("HeadPose(up): pitch %.2f should be positive", x)
	}
}

func TestHeadPose_Turned(t *testing.T) {
	l := levelFace()
	l.Nose.X = 0.55

	_, y, _ := HeadPose(l)
	if !near(y, 22.5) {
		t.Errorf("HeadPose(turned): yaw got %.2f, want 22.5", y)
	}

	l.Nose.X = 0.9
	_, y, _ = HeadPose(l)
	if y != maxYaw {
		t.Errorf("HeadPose(turned far): yaw got %.2f, want clamp %.0f", y, maxYaw)
	}
}

func TestHeadPose_Tilted(t *testing.T) {
	l := levelFace()
	l.LeftEye.Y = 0.60 // 45 degrees

	_, _, z := HeadPose(l)
	if !near(z, 45) {
		t.Errorf("HeadPose(tilted): roll got %.2f, want 45", z)
	}
}

func TestHeadPose_Degenerate(t *testing.T) {
	x, y, _ := HeadPose(Landmarks{})
	if x != 0 || y != 0 {
		t.Errorf("HeadPose(zero landmarks): got (%.2f, %.2f), want zeros", x, y)
	}
}

func TestSmileProbability(t *testing.T) {
	tests := []struct {
		name   string
		smile  float64
		face   float64
		expect float64
	}{
		{"no smile", 0, 100, 0},
		{"no face", 50, 0, 0},
		{"narrow", 20, 100, 0},
		{"half", 42.5, 100, 0.5},
		{"wide", 60, 100, 1},
		{"wider than max", 80, 100, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := SmileProbability(tc.smile, tc.face)
			if !near(got, tc.expect) {
				t.Errorf("SmileProbability(%.0f, %.0f): got %.3f, want %.3f", tc.smile, tc.face, got, tc.expect)
			}
		})
	}
}

func TestEyeOpenProbability(t *testing.T) {
	if EyeOpenProbability(true) != eyeOpen {
		t.Error("EyeOpenProbability(true) should be the open estimate")
	}
	if EyeOpenProbability(false) != eyeClosed {
		t.Error("EyeOpenProbability(false) should be the closed estimate")
	}
}
