// Package resources renders the application icon.
package resources

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"runtime"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrIconNotFound is returned when the icon could not be produced.
var ErrIconNotFound = errors.New("icon not available")

// IconSize is the edge length of the rendered icon in pixels.
const IconSize = 32

var (
	background = color.RGBA{R: 0x1e, G: 0x5a, B: 0xc8, A: 0xff}
	foreground = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
)

var (
	renderOnce sync.Once
	pngData    []byte
	icoData    []byte
	renderErr  error
)

// Render draws label centred on a square of the given size.
func Render(label string, size int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: background}, image.Point{}, draw.Src)

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(foreground), Face: face}
	width := d.MeasureString(label).Ceil()
	metrics := face.Metrics()
	height := (metrics.Ascent + metrics.Descent).Ceil()
	x := (size - width) / 2
	y := (size-height)/2 + metrics.Ascent.Ceil()
	d.Dot = fixed.P(x, y)
	d.DrawString(label)
	return img
}

// EncodeICO wraps PNG data in a single-image ICO container.
func EncodeICO(pngBytes []byte, size int) ([]byte, error) {
	if size <= 0 || size > 256 {
		return nil, fmt.Errorf("icon size %d out of range", size)
	}
	dim := byte(size)
	if size == 256 {
		dim = 0
	}
	var buf bytes.Buffer
	header := struct {
		Reserved uint16
		Type     uint16
		Count    uint16
	}{Type: 1, Count: 1}
	entry := struct {
		Width, Height byte
		Colors        byte
		Reserved      byte
		Planes        uint16
		BitCount      uint16
		Size          uint32
		Offset        uint32
	}{
		Width:    dim,
		Height:   dim,
		Planes:   1,
		BitCount: 32,
		Size:     uint32(len(pngBytes)),
		Offset:   6 + 16,
	}
	if err := binary.Write(&buf, binary.LittleEndian, header); err != nil {
		return nil, err
	}
	if err := binary.Write(&buf, binary.LittleEndian, entry); err != nil {
		return nil, err
	}
	buf.Write(pngBytes)
	return buf.Bytes(), nil
}

func render() {
	var buf bytes.Buffer
	if err := png.Encode(&buf, Render("PK", IconSize)); err != nil {
		renderErr = fmt.Errorf("%w: %v", ErrIconNotFound, err)
		return
	}
	pngData = buf.Bytes()
	icoData, renderErr = EncodeICO(pngData, IconSize)
	if renderErr != nil {
		renderErr = fmt.Errorf("%w: %v", ErrIconNotFound, renderErr)
	}
}

// GetPNG returns the icon as PNG.
func GetPNG() ([]byte, error) {
	renderOnce.Do(render)
	if len(pngData) == 0 {
		return nil, ErrIconNotFound
	}
	return pngData, nil
}

// GetICO returns the icon as an ICO file.
func GetICO() ([]byte, error) {
	renderOnce.Do(render)
	if renderErr != nil {
		return nil, renderErr
	}
	return icoData, nil
}

// GetIcon returns the icon in the format the tray expects on this platform.
func GetIcon() ([]byte, error) {
	if runtime.GOOS == "windows" {
		return GetICO()
	}
	return GetPNG()
}
