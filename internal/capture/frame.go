package capture

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	"time"
)

// Frame is one sampled camera image: the decoded RGBA pixels for motion
// comparison plus the original JPEG bytes for the recognition call.
// A frame is immutable once decoded; the motion gate holds at most one
// previous frame and discards it when superseded.
type Frame struct {
	Width  int
	Height int
	Pix    []uint8 // RGBA, 4 bytes per pixel
	JPEG   []byte
	Time   time.Time
}

// DecodeFrame decodes a JPEG payload into a Frame captured at ts.
func DecodeFrame(jpegData []byte, ts time.Time) (*Frame, error) {
	img, err := jpeg.Decode(bytes.NewReader(jpegData))
	if err != nil {
		return nil, fmt.Errorf("decode jpeg: %w", err)
	}

	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}

	return &Frame{
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Pix:    rgba.Pix,
		JPEG:   jpegData,
		Time:   ts,
	}, nil
}
