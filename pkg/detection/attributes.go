package detection

import "math"

// Attribute estimation from landmarks and Haar cascades. The numbers are
// calibrated for front-camera selfies at arm's length.
const (
	// Nose-to-eyeline distance divided by mouth-to-eyeline distance for a
	// level head. Larger ratios mean the head is tilted down.
	neutralNoseRatio = 0.5

	// Degrees of pitch per unit of nose ratio deviation
	pitchGain = 90.0

	// Degrees of yaw per unit of nose offset (in eye distances)
	yawGain = 90.0

	maxYaw   = 60.0
	maxPitch = 45.0

	// Smile width relative to face width that maps to probability 0 and 1
	smileWidthMin = 0.25
	smileWidthMax = 0.60

	eyeOpen   = 0.9
	eyeClosed = 0.1
)

// HeadPose estimates Euler angles in degrees from five-point landmarks.
// X is up/down tilt (negative is down), Y is left/right rotation and Z is
// side tilt.
func HeadPose(l Landmarks) (x, y, z float64) {
	eyeDX := l.LeftEye.X - l.RightEye.X
	eyeDY := l.LeftEye.Y - l.RightEye.Y
	eyeDist := math.Hypot(eyeDX, eyeDY)

	z = math.Atan2(eyeDY, eyeDX) * 180 / math.Pi

	eyeMidX := (l.LeftEye.X + l.RightEye.X) / 2
	eyeMidY := (l.LeftEye.Y + l.RightEye.Y) / 2
	mouthMidY := (l.LeftMouth.Y + l.RightMouth.Y) / 2

	if eyeDist > 0 {
		y = clamp((l.Nose.X-eyeMidX)/eyeDist*yawGain, -maxYaw, maxYaw)
	}

	if span := mouthMidY - eyeMidY; span > 0 {
		ratio := (l.Nose.Y - eyeMidY) / span
		x = clamp((neutralNoseRatio-ratio)*pitchGain, -maxPitch, maxPitch)
	}

	return x, y, z
}

// SmileProbability maps the width of the widest smile found in the lower
// half of a face, relative to the face width, onto [0,1].
func SmileProbability(smileWidth, faceWidth float64) float64 {
	if faceWidth <= 0 || smileWidth <= 0 {
		return 0
	}
	r := smileWidth / faceWidth
	return clamp((r-smileWidthMin)/(smileWidthMax-smileWidthMin), 0, 1)
}

// EyeOpenProbability turns a cascade hit into an openness estimate.
// Haar eye cascades only fire on open eyes.
func EyeOpenProbability(found bool) float64 {
	if found {
		return eyeOpen
	}
	return eyeClosed
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
