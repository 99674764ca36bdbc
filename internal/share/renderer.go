package share

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"

	qrcode "github.com/skip2/go-qrcode"
)

// Renderer turns link content into a PNG image.
type Renderer interface {
	Render(content string, size int) ([]byte, error)
}

// NewRenderer picks a strategy by name: "qr" (default) or "placeholder".
func NewRenderer(kind string) (Renderer, error) {
	switch kind {
	case "", "qr":
		return QRRenderer{Level: qrcode.Medium}, nil
	case "placeholder":
		return PlaceholderRenderer{}, nil
	default:
		return nil, fmt.Errorf("unknown share renderer %q", kind)
	}
}

// QRRenderer produces a scannable QR code.
type QRRenderer struct {
	Level qrcode.RecoveryLevel
}

func (r QRRenderer) Render(content string, size int) ([]byte, error) {
	data, err := qrcode.Encode(content, r.Level, size)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}
	return data, nil
}

const placeholderCells = 20

// PlaceholderRenderer draws a cosmetic grid derived from the content hash
// with three corner markers. It is not scannable.
type PlaceholderRenderer struct{}

func (PlaceholderRenderer) Render(content string, size int) ([]byte, error) {
	if size < placeholderCells {
		return nil, fmt.Errorf("placeholder size %d below %d pixels", size, placeholderCells)
	}
	img := image.NewGray(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	// Cell edges are scaled so the grid always spans the whole image.
	edge := func(i int) int { return i * size / placeholderCells }
	fill := func(i0, j0, i1, j1 int, c color.Color) {
		draw.Draw(img, image.Rect(edge(i0), edge(j0), edge(i1), edge(j1)), image.NewUniform(c), image.Point{}, draw.Src)
	}

	h := absHash(content)
	for i := 0; i < placeholderCells; i++ {
		for j := 0; j < placeholderCells; j++ {
			if (int64(i)+int64(j)+h)%3 == 0 {
				fill(i, j, i+1, j+1, color.Black)
			}
		}
	}

	const marker = 3
	far := placeholderCells - marker
	for _, origin := range []image.Point{{0, 0}, {far, 0}, {0, far}} {
		fill(origin.X, origin.Y, origin.X+marker, origin.Y+marker, color.Black)
		fill(origin.X+1, origin.Y+1, origin.X+2, origin.Y+2, color.White)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode placeholder: %w", err)
	}
	return buf.Bytes(), nil
}

// absHash is the 31-multiplier string hash truncated to 32 bits, made non-negative.
func absHash(s string) int64 {
	var h int32
	for _, r := range s {
		h = (h << 5) - h + int32(r)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return v
}
