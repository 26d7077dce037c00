// Package detection provides face detection and facial attribute estimation
// using computer vision
package detection

import (
	"errors"
	"sort"

	"github.com/teslashibe/go-moodshell/pkg/expression"
)

var (
	// ErrModelNotFound is returned when the detector model file is missing
	ErrModelNotFound = errors.New("detection: model file not found")

	// ErrEmptyImage is returned when the image decodes to nothing
	ErrEmptyImage = errors.New("detection: empty image")
)

// Point is a normalized (0-1) image coordinate
type Point struct {
	X, Y float64
}

// Landmarks are the five facial keypoints reported by the detector.
// Left and right are from the subject's point of view.
type Landmarks struct {
	RightEye, LeftEye, Nose, RightMouth, LeftMouth Point
}

// Face represents a detected face with its estimated attributes
type Face struct {
	X, Y       float64 // Top-left position (0-1 normalized)
	W, H       float64 // Width and height (0-1 normalized)
	Confidence float64 // Detection confidence (0-1)
	Landmarks  *Landmarks

	// Observation carries the attributes the expression engine consumes.
	// Fields the backend could not estimate are left nil.
	Observation expression.FaceObservation
}

// Center returns the center point of the face
func (f Face) Center() (x, y float64) {
	return f.X + f.W/2, f.Y + f.H/2
}

// Area returns the area of the bounding box
func (f Face) Area() float64 {
	return f.W * f.H
}

// Detector is the interface for face detection backends
type Detector interface {
	// Detect finds faces in the image and estimates their attributes
	Detect(jpeg []byte) ([]Face, error)

	// Close releases resources
	Close() error
}

// Config holds detector configuration
type Config struct {
	ModelPath        string  // Path to YuNet ONNX model
	SmileCascade     string  // Path to Haar smile cascade (optional)
	EyeCascade       string  // Path to Haar eye cascade (optional)
	ConfidenceThresh float64 // Minimum confidence (default 0.5)
	InputWidth       int     // Model input width
	InputHeight      int     // Model input height
}

// DefaultConfig returns production defaults for YuNet
func DefaultConfig() Config {
	return Config{
		ModelPath:        "models/face_detection_yunet.onnx",
		SmileCascade:     "models/haarcascade_smile.xml",
		EyeCascade:       "models/haarcascade_eye.xml",
		ConfidenceThresh: 0.5,
		InputWidth:       320,
		InputHeight:      320,
	}
}

// score ranks a face: confidence * 0.7 + relative area * 0.3
func score(f Face, maxArea float64) float64 {
	if maxArea <= 0 {
		return f.Confidence * 0.7
	}
	return f.Confidence*0.7 + (f.Area()/maxArea)*0.3
}

// Rank returns a copy of faces ordered best first. The first face is the
// one the expression engine treats as authoritative.
func Rank(faces []Face) []Face {
	out := make([]Face, len(faces))
	copy(out, faces)
	if len(out) < 2 {
		return out
	}

	maxArea := 0.0
	for _, f := range out {
		if f.Area() > maxArea {
			maxArea = f.Area()
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return score(out[i], maxArea) > score(out[j], maxArea)
	})
	return out
}

// SelectBest picks the best face from multiple detections
func SelectBest(faces []Face) *Face {
	if len(faces) == 0 {
		return nil
	}
	ranked := Rank(faces)
	return &ranked[0]
}

// Observations ranks faces and returns their observations, best first
func Observations(faces []Face) []expression.FaceObservation {
	ranked := Rank(faces)
	obs := make([]expression.FaceObservation, len(ranked))
	for i, f := range ranked {
		obs[i] = f.Observation
	}
	return obs
}
