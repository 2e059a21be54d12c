package resources

import (
	"bytes"
	"encoding/binary"
	"image/png"
	"testing"
)

func TestRenderDrawsLabel(t *testing.T) {
	img := Render("PK", IconSize)
	if b := img.Bounds(); b.Dx() != IconSize || b.Dy() != IconSize {
		t.Fatalf("bounds = %v, want %dx%d", b, IconSize, IconSize)
	}
	if got := img.RGBAAt(0, 0); got != background {
		t.Errorf("corner = %v, want background %v", got, background)
	}
	lit := 0
	for y := 0; y < IconSize; y++ {
		for x := 0; x < IconSize; x++ {
			if img.RGBAAt(x, y) != background {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("no label pixels drawn")
	}
}

func TestGetPNGDecodes(t *testing.T) {
	data, err := GetPNG()
	if err != nil {
		t.Fatal(err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if img.Bounds().Dx() != IconSize {
		t.Errorf("width = %d, want %d", img.Bounds().Dx(), IconSize)
	}
}

func TestGetICOHeader(t *testing.T) {
	ico, err := GetICO()
	if err != nil {
		t.Fatal(err)
	}
	pngBytes, _ := GetPNG()
	if len(ico) != 22+len(pngBytes) {
		t.Fatalf("len(ico) = %d, want %d", len(ico), 22+len(pngBytes))
	}
	if typ := binary.LittleEndian.Uint16(ico[2:]); typ != 1 {
		t.Errorf("type = %d, want 1", typ)
	}
	if count := binary.LittleEndian.Uint16(ico[4:]); count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
	if ico[6] != IconSize || ico[7] != IconSize {
		t.Errorf("dimensions = %dx%d, want %d", ico[6], ico[7], IconSize)
	}
	if off := binary.LittleEndian.Uint32(ico[18:]); off != 22 {
		t.Errorf("offset = %d, want 22", off)
	}
	if !bytes.Equal(ico[22:], pngBytes) {
		t.Error("ICO payload differs from PNG")
	}
}

func TestEncodeICORejectsBadSize(t *testing.T) {
	if _, err := EncodeICO([]byte{1}, 0); err == nil {
		t.Error("EncodeICO(size 0) error = nil")
	}
	if _, err := EncodeICO([]byte{1}, 300); err == nil {
		t.Error("EncodeICO(size 300) error = nil")
	}
}
