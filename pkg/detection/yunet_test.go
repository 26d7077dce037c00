package detection

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"os"
	"path/filepath"
	"testing"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	modelPath := findModelPath()
	if modelPath == "" {
		t.Skip("YuNet model not found, skipping test")
	}
	cfg := DefaultConfig()
	cfg.ModelPath = modelPath
	cfg.SmileCascade = ""
	cfg.EyeCascade = ""
	return cfg
}

// TestYuNetNewInvalidPath tests error handling for missing model
func TestYuNetNewInvalidPath(t *testing.T) {
	cfg := DefaultConfig()
	cfg.ModelPath = "/nonexistent/path/model.onnx"

	_, err := NewYuNet(cfg)
	if !errors.Is(err, ErrModelNotFound) {
		t.Errorf("Expected ErrModelNotFound, got %v", err)
	}
}

// TestYuNetDetect_InvalidImage tests detection on empty/invalid image
func TestYuNetDetect_InvalidImage(t *testing.T) {
	detector, err := NewYuNet(testConfig(t))
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	if _, err := detector.Detect([]byte{}); err == nil {
		t.Error("Expected error for empty image")
	}
	if _, err := detector.Detect([]byte("not a jpeg")); err == nil {
		t.Error("Expected error for invalid JPEG")
	}
}

// TestYuNetDetect_SolidImage tests detection on solid color image (no faces)
func TestYuNetDetect_SolidImage(t *testing.T) {
	detector, err := NewYuNet(testConfig(t))
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	faces, err := detector.Detect(createSolidJPEG(320, 240, color.RGBA{0, 0, 255, 255}))
	if err != nil {
		t.Fatalf("Detect failed: %v", err)
	}
	if len(faces) > 0 {
		t.Errorf("Expected no faces in solid color image, got %d", len(faces))
	}
}

// TestYuNetMissingCascadesIgnored tests that bad cascade paths do not fail construction
func TestYuNetMissingCascadesIgnored(t *testing.T) {
	cfg := testConfig(t)
	cfg.SmileCascade = "/nonexistent/smile.xml"
	cfg.EyeCascade = "/nonexistent/eye.xml"

	detector, err := NewYuNet(cfg)
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	if detector.smile != nil || detector.eyes != nil {
		t.Error("Expected missing cascades to be skipped")
	}
}

// TestYuNetConcurrency tests thread safety
func TestYuNetConcurrency(t *testing.T) {
	detector, err := NewYuNet(testConfig(t))
	if err != nil {
		t.Fatalf("NewYuNet failed: %v", err)
	}
	defer detector.Close()

	img := createSolidJPEG(320, 240, color.RGBA{100, 100, 100, 255})

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func() {
			if _, err := detector.Detect(img); err != nil {
				t.Errorf("Concurrent detection failed: %v", err)
			}
			done <- true
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}
}

// Helper functions

func findModelPath() string {
	if cwd, err := os.Getwd(); err == nil {
		// Walk up to find models directory
		for dir := cwd; dir != "/"; dir = filepath.Dir(dir) {
			modelPath := filepath.Join(dir, "models", "face_detection_yunet.onnx")
			if _, err := os.Stat(modelPath); err == nil {
				return modelPath
			}
		}
	}
	return ""
}

func createSolidJPEG(width, height int, c color.Color) []byte {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	var buf bytes.Buffer
	jpeg.Encode(&buf, img, nil)
	return buf.Bytes()
}
