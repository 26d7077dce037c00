package detection

import (
	"fmt"
	"image"
	"os"
	"sync"

	"gocv.io/x/gocv"

	"github.com/teslashibe/go-moodshell/pkg/debug"
	"github.com/teslashibe/go-moodshell/pkg/expression"
)

// YuNetDetector uses OpenCV's FaceDetectorYN for face detection and Haar
// cascades for smile and eye attributes
type YuNetDetector struct {
	detector gocv.FaceDetectorYN
	smile    *gocv.CascadeClassifier
	eyes     *gocv.CascadeClassifier
	config   Config
	mu       sync.Mutex // Protects inference
}

// NewYuNet creates a new YuNet face detector using GoCV's built-in FaceDetectorYN.
// Cascades are optional: when a cascade path is empty or fails to load, the
// matching attribute is left unset and the expression engine uses its default.
func NewYuNet(cfg Config) (*YuNetDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrModelNotFound, cfg.ModelPath)
	}

	detector := gocv.NewFaceDetectorYNWithParams(
		cfg.ModelPath,
		"",                                        // No config file needed for ONNX
		image.Pt(cfg.InputWidth, cfg.InputHeight), // Initial input size
		float32(cfg.ConfidenceThresh),             // Score threshold
		0.3,                                       // NMS threshold
		5000,                                      // Top K
		int(gocv.NetBackendDefault),               // Backend
		int(gocv.NetTargetCPU),                    // Target
	)

	return &YuNetDetector{
		detector: detector,
		smile:    loadCascade(cfg.SmileCascade),
		eyes:     loadCascade(cfg.EyeCascade),
		config:   cfg,
	}, nil
}

func loadCascade(path string) *gocv.CascadeClassifier {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); err != nil {
		debug.DetectLog("cascade not found: %s\n", path)
		return nil
	}
	c := gocv.NewCascadeClassifier()
	if !c.Load(path) {
		c.Close()
		debug.DetectLog("cascade failed to load: %s\n", path)
		return nil
	}
	return &c
}

// Detect finds faces in the JPEG image
func (d *YuNetDetector) Detect(jpeg []byte) ([]Face, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	img, err := gocv.IMDecode(jpeg, gocv.IMReadColor)
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	defer img.Close()

	if img.Empty() {
		return nil, ErrEmptyImage
	}

	imgW := float64(img.Cols())
	imgH := float64(img.Rows())

	d.detector.SetInputSize(image.Pt(img.Cols(), img.Rows()))

	faces := gocv.NewMat()
	defer faces.Close()

	d.detector.Detect(img, &faces)

	var gray gocv.Mat
	if d.smile != nil || d.eyes != nil {
		gray = gocv.NewMat()
		defer gray.Close()
		gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
		gocv.EqualizeHist(gray, &gray)
	}

	var detections []Face
	for r := 0; r < faces.Rows(); r++ {
		// YuNet output format (15 columns):
		// 0-3: x, y, w, h (bounding box in pixels)
		// 4-13: right eye, left eye, nose, right mouth, left mouth (x,y pairs)
		// 14: face score
		x := float64(faces.GetFloatAt(r, 0))
		y := float64(faces.GetFloatAt(r, 1))
		w := float64(faces.GetFloatAt(r, 2))
		h := float64(faces.GetFloatAt(r, 3))
		score := float64(faces.GetFloatAt(r, 14))

		pt := func(col int) Point {
			return Point{
				X: float64(faces.GetFloatAt(r, col)) / imgW,
				Y: float64(faces.GetFloatAt(r, col+1)) / imgH,
			}
		}
		lm := &Landmarks{
			RightEye:   pt(4),
			LeftEye:    pt(6),
			Nose:       pt(8),
			RightMouth: pt(10),
			LeftMouth:  pt(12),
		}

		face := Face{
			X:          x / imgW,
			Y:          y / imgH,
			W:          w / imgW,
			H:          h / imgH,
			Confidence: score,
			Landmarks:  lm,
		}

		hx, hy, hz := HeadPose(*lm)
		face.Observation = expression.FaceObservation{
			HeadEulerAngleX: expression.P(hx),
			HeadEulerAngleY: expression.P(hy),
			HeadEulerAngleZ: expression.P(hz),
		}

		rect := image.Rect(int(x), int(y), int(x+w), int(y+h)).Intersect(image.Rect(0, 0, img.Cols(), img.Rows()))
		if !rect.Empty() {
			d.estimateAttributes(gray, rect, &face.Observation)
		}

		detections = append(detections, face)
	}

	if len(detections) > 0 {
		debug.DetectLog("👁️  YuNet found %d face(s)\n", len(detections))
	}

	return detections, nil
}

// estimateAttributes fills smile and eye probabilities from cascades run
// on the face region of the grayscale image
func (d *YuNetDetector) estimateAttributes(gray gocv.Mat, rect image.Rectangle, obs *expression.FaceObservation) {
	faceW := float64(rect.Dx())
	faceH := rect.Dy()

	if d.smile != nil {
		lower := image.Rect(rect.Min.X, rect.Min.Y+faceH/2, rect.Max.X, rect.Max.Y)
		roi := gray.Region(lower)
		smiles := d.smile.DetectMultiScaleWithParams(roi, 1.7, 20, 0, image.Pt(rect.Dx()/5, faceH/10), image.Pt(0, 0))
		roi.Close()

		widest := 0
		for _, s := range smiles {
			if s.Dx() > widest {
				widest = s.Dx()
			}
		}
		obs.SmilingProbability = expression.P(SmileProbability(float64(widest), faceW))
	}

	if d.eyes != nil {
		upper := image.Rect(rect.Min.X, rect.Min.Y, rect.Max.X, rect.Min.Y+faceH/2)
		roi := gray.Region(upper)
		eyes := d.eyes.DetectMultiScaleWithParams(roi, 1.1, 5, 0, image.Pt(rect.Dx()/8, rect.Dx()/8), image.Pt(0, 0))
		roi.Close()

		// Image left is the subject's right eye.
		mid := rect.Dx() / 2
		var right, left bool
		for _, e := range eyes {
			cx := e.Min.X + e.Dx()/2
			if cx < mid {
				right = true
			} else {
				left = true
			}
		}
		obs.RightEyeOpenProbability = expression.P(EyeOpenProbability(right))
		obs.LeftEyeOpenProbability = expression.P(EyeOpenProbability(left))
	}
}

// Close releases the detector resources
func (d *YuNetDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.detector.Close()
	if d.smile != nil {
		d.smile.Close()
	}
	if d.eyes != nil {
		d.eyes.Close()
	}
	return nil
}
