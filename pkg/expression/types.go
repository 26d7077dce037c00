// Package expression turns raw face-detector attributes into a discrete
// emotional classification and a 1-10 mood score.
//
// Everything in this package is pure: no I/O, no clocks, no randomness.
// The same observations always produce the same classification.
package expression

// Expression is the discrete emotional label derived from a face.
type Expression string

const (
	VeryHappy   Expression = "very_happy"
	Happy       Expression = "happy"
	Content     Expression = "content"
	SlightSmile Expression = "slight_smile"
	Neutral     Expression = "neutral"
	Tired       Expression = "tired"
	VeryTired   Expression = "very_tired"
	Sad         Expression = "sad"
)

// Expressions lists every defined expression, happiest first.
var Expressions = []Expression{
	VeryHappy, Happy, Content, SlightSmile, Neutral, Tired, VeryTired, Sad,
}

// Valid reports whether e is one of the defined expressions.
func (e Expression) Valid() bool {
	_, ok := moodScores[e]
	return ok
}

// EnergyLevel is derived from eye openness.
type EnergyLevel string

const (
	EnergyHigh   EnergyLevel = "high"
	EnergyMedium EnergyLevel = "medium"
	EnergyLow    EnergyLevel = "low"
)

// SocialContext is derived from the number of faces in the frame.
type SocialContext string

const (
	Alone   SocialContext = "alone"
	WithOne SocialContext = "with_one"
	Group   SocialContext = "group"
)

// FaceObservation is one detected face as reported by a face detector.
// Probability fields are optional: a nil field means the detector did not
// report it. Angles are in degrees (X = up/down tilt, Y = left/right
// rotation, Z = side tilt).
type FaceObservation struct {
	SmilingProbability      *float64 `json:"smilingProbability,omitempty"`
	LeftEyeOpenProbability  *float64 `json:"leftEyeOpenProbability,omitempty"`
	RightEyeOpenProbability *float64 `json:"rightEyeOpenProbability,omitempty"`
	HeadEulerAngleX         *float64 `json:"headEulerAngleX,omitempty"`
	HeadEulerAngleY         *float64 `json:"headEulerAngleY,omitempty"`
	HeadEulerAngleZ         *float64 `json:"headEulerAngleZ,omitempty"`
}

// P returns a pointer to v. It keeps FaceObservation literals short.
func P(v float64) *float64 {
	return &v
}

// RawData holds the detector attributes after missing fields were filled
// with their defaults. It is forwarded verbatim to the backend.
type RawData struct {
	SmilingProbability      float64 `json:"smilingProbability"`
	LeftEyeOpenProbability  float64 `json:"leftEyeOpenProbability"`
	RightEyeOpenProbability float64 `json:"rightEyeOpenProbability"`
	HeadEulerAngleX         float64 `json:"headEulerAngleX"`
	HeadEulerAngleY         float64 `json:"headEulerAngleY"`
	HeadEulerAngleZ         float64 `json:"headEulerAngleZ"`
}

// Resolve fills missing attributes with the "alert, not smiling" defaults:
// smiling 0, eyes open 1, angles 0.
func (f FaceObservation) Resolve() RawData {
	return RawData{
		SmilingProbability:      valueOr(f.SmilingProbability, 0),
		LeftEyeOpenProbability:  valueOr(f.LeftEyeOpenProbability, 1),
		RightEyeOpenProbability: valueOr(f.RightEyeOpenProbability, 1),
		HeadEulerAngleX:         valueOr(f.HeadEulerAngleX, 0),
		HeadEulerAngleY:         valueOr(f.HeadEulerAngleY, 0),
		HeadEulerAngleZ:         valueOr(f.HeadEulerAngleZ, 0),
	}
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}

// Classification is the outcome of analysing the authoritative face.
type Classification struct {
	Expression           Expression    `json:"expression"`
	ExpressionConfidence float64       `json:"expressionConfidence"`
	EnergyLevel          EnergyLevel   `json:"energyLevel"`
	EyesOpenness         float64       `json:"eyesOpenness"`
	SocialContext        SocialContext `json:"socialContext"`
	TotalFaces           int           `json:"totalFaces"`
	RawData              RawData       `json:"rawData"`
}
