package expression

// Smile thresholds. Comparisons are strict except for the neutral band,
// which is inclusive on both ends.
const (
	veryHappySmile   = 0.70
	happySmile       = 0.45
	contentSmile     = 0.25
	slightSmile      = 0.15
	neutralBandLow   = 0.12
	sadMaxSmile      = 0.05
	veryTiredEyes    = 0.4
	tiredEyes        = 0.65
	headDownDegrees  = -8.0
	highEnergyEyes   = 0.7
	lowEnergyEyes    = 0.3
	neutralBandConf  = 0.6
	sadConf          = 0.8
	alertNeutralConf = 0.75
)

// Classify analyses detector output. It returns nil when faces is empty so
// callers can tell "no face detected" apart from a neutral face.
//
// faces[0] is authoritative; the remaining faces only count towards
// TotalFaces and SocialContext.
func Classify(faces []FaceObservation) *Classification {
	if len(faces) == 0 {
		return nil
	}

	raw := faces[0].Resolve()
	eyes := (raw.LeftEyeOpenProbability + raw.RightEyeOpenProbability) / 2
	expr, conf := classifyExpression(raw.SmilingProbability, eyes, raw.HeadEulerAngleX)

	return &Classification{
		Expression:           expr,
		ExpressionConfidence: conf,
		EnergyLevel:          energyFor(eyes),
		EyesOpenness:         eyes,
		SocialContext:        socialContextFor(len(faces)),
		TotalFaces:           len(faces),
		RawData:              raw,
	}
}

// classifyExpression walks the rule table top to bottom; the first match wins.
func classifyExpression(smile, eyes, headX float64) (Expression, float64) {
	switch {
	case smile > veryHappySmile:
		return VeryHappy, smile
	case smile > happySmile:
		return Happy, smile
	case smile > contentSmile:
		return Content, smile
	case smile > slightSmile:
		return SlightSmile, smile
	case smile >= neutralBandLow && smile <= slightSmile:
		return Neutral, neutralBandConf
	case smile < neutralBandLow:
		switch {
		case eyes < veryTiredEyes:
			return VeryTired, 1 - eyes
		case eyes < tiredEyes:
			return Tired, 1 - eyes
		case headX < headDownDegrees && smile < sadMaxSmile:
			return Sad, sadConf
		default:
			return Neutral, alertNeutralConf
		}
	}
	// Only reachable for NaN smile probabilities.
	return Neutral, neutralBandConf
}

func energyFor(eyes float64) EnergyLevel {
	switch {
	case eyes > highEnergyEyes:
		return EnergyHigh
	case eyes < lowEnergyEyes:
		return EnergyLow
	default:
		return EnergyMedium
	}
}

func socialContextFor(totalFaces int) SocialContext {
	switch {
	case totalFaces > 2:
		return Group
	case totalFaces == 2:
		return WithOne
	default:
		return Alone
	}
}
