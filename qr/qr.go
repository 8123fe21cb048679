// ABOUTME: QR rendering and scanning for share payloads
// ABOUTME: Renders with go-qrcode and scans with gozxing

package qr

import (
	"bytes"
	"errors"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"

	"github.com/makiuchi-d/gozxing"
	zxqr "github.com/makiuchi-d/gozxing/qrcode"
	qrgen "github.com/skip2/go-qrcode"

	"github.com/mycrew/mycrew/payload"
)

var (
	ErrEmptyContent = errors.New("nothing to encode")
	ErrInvalidSize  = errors.New("invalid QR code size")
	ErrRender       = errors.New("failed to render QR code")
	ErrScan         = errors.New("no QR code found")
)

const (
	DefaultSize = 256
	MaxSize     = 4096
)

// RenderOptions controls PNG output. Zero values mean DefaultSize and the
// medium recovery level.
type RenderOptions struct {
	Size  int
	Level payload.Level
}

// LevelFor maps an error-correction level letter to the renderer's level.
func LevelFor(level payload.Level) qrgen.RecoveryLevel {
	switch level {
	case payload.LevelLow:
		return qrgen.Low
	case payload.LevelQuartile:
		return qrgen.High
	case payload.LevelHigh:
		return qrgen.Highest
	default:
		return qrgen.Medium
	}
}

func build(text string, level payload.Level) (*qrgen.QRCode, error) {
	if text == "" {
		return nil, ErrEmptyContent
	}
	code, err := qrgen.New(text, LevelFor(level))
	if err != nil {
		return nil, errors.Join(ErrRender, err)
	}
	return code, nil
}

func size(opts RenderOptions) (int, error) {
	if opts.Size == 0 {
		return DefaultSize, nil
	}
	if opts.Size < 0 || opts.Size > MaxSize {
		return 0, ErrInvalidSize
	}
	return opts.Size, nil
}

// Render returns text as a PNG. Text too long for the chosen level fails
// with ErrRender.
func Render(text string, opts RenderOptions) ([]byte, error) {
	px, err := size(opts)
	if err != nil {
		return nil, err
	}
	code, err := build(text, opts.Level)
	if err != nil {
		return nil, err
	}

	data, err := code.PNG(px)
	if err != nil {
		return nil, errors.Join(ErrRender, err)
	}
	return data, nil
}

// RenderImage is Render without the PNG encoding step.
func RenderImage(text string, opts RenderOptions) (image.Image, error) {
	px, err := size(opts)
	if err != nil {
		return nil, err
	}
	code, err := build(text, opts.Level)
	if err != nil {
		return nil, err
	}
	return code.Image(px), nil
}

// RenderTerminal draws the code with half-block characters for a terminal.
func RenderTerminal(text string, level payload.Level) (string, error) {
	code, err := build(text, level)
	if err != nil {
		return "", err
	}
	return code.ToSmallString(false), nil
}

// Scan decodes the first QR code found in a PNG.
func Scan(pngData []byte) (string, error) {
	if len(pngData) == 0 {
		return "", ErrScan
	}
	img, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return "", errors.Join(ErrScan, err)
	}
	return ScanImage(img)
}

// ScanReader decodes any image format registered with the image package.
func ScanReader(r io.Reader) (string, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return "", errors.Join(ErrScan, err)
	}
	return ScanImage(img)
}

// ScanImage decodes a QR code from an image. Text is read as UTF-8.
func ScanImage(img image.Image) (string, error) {
	if img == nil {
		return "", ErrScan
	}

	bmp, err := gozxing.NewBinaryBitmapFromImage(img)
	if err != nil {
		return "", errors.Join(ErrScan, err)
	}

	hints := map[gozxing.DecodeHintType]interface{}{
		gozxing.DecodeHintType_CHARACTER_SET: "UTF-8",
		gozxing.DecodeHintType_TRY_HARDER:    true,
	}
	result, err := zxqr.NewQRCodeReader().Decode(bmp, hints)
	if err != nil {
		return "", errors.Join(ErrScan, err)
	}
	return result.GetText(), nil
}
