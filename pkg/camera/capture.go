package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// ErrNoFrame is returned when the device delivers an empty frame
var ErrNoFrame = errors.New("camera: no frame")

// Source produces JPEG frames
type Source interface {
	CaptureFrame(ctx context.Context) ([]byte, error)
	Close() error
}

// DeviceSource captures frames from a local video device using OpenCV
type DeviceSource struct {
	manager *Manager

	mu      sync.Mutex
	capture *gocv.VideoCapture
	opened  Config
}

// NewDeviceSource creates a source that follows the manager's config.
// The device is opened lazily on the first capture and reopened when
// device or resolution change.
func NewDeviceSource(m *Manager) *DeviceSource {
	return &DeviceSource{manager: m}
}

// CaptureFrame grabs one frame and encodes it as JPEG at the configured quality
func (s *DeviceSource) CaptureFrame(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cfg := s.manager.GetConfig()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.open(cfg); err != nil {
		return nil, err
	}

	frame := gocv.NewMat()
	defer frame.Close()

	if ok := s.capture.Read(&frame); !ok || frame.Empty() {
		return nil, ErrNoFrame
	}

	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, frame, []int{gocv.IMWriteJpegQuality, cfg.Quality})
	if err != nil {
		return nil, fmt.Errorf("encode frame: %w", err)
	}
	defer buf.Close()

	out := make([]byte, len(buf.GetBytes()))
	copy(out, buf.GetBytes())
	return out, nil
}

func (s *DeviceSource) open(cfg Config) error {
	if s.capture != nil && s.opened.Device == cfg.Device &&
		s.opened.Width == cfg.Width && s.opened.Height == cfg.Height {
		return nil
	}
	if s.capture != nil {
		s.capture.Close()
		s.capture = nil
	}

	vc, err := gocv.OpenVideoCapture(cfg.Device)
	if err != nil {
		return fmt.Errorf("open camera %d: %w", cfg.Device, err)
	}
	vc.Set(gocv.VideoCaptureFrameWidth, float64(cfg.Width))
	vc.Set(gocv.VideoCaptureFrameHeight, float64(cfg.Height))

	s.capture = vc
	s.opened = cfg
	return nil
}

// Resolution returns the size of the open device, or zero if closed
func (s *DeviceSource) Resolution() image.Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return image.Point{}
	}
	return image.Pt(int(s.capture.Get(gocv.VideoCaptureFrameWidth)), int(s.capture.Get(gocv.VideoCaptureFrameHeight)))
}

// Close releases the device
func (s *DeviceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.capture == nil {
		return nil
	}
	err := s.capture.Close()
	s.capture = nil
	return err
}
