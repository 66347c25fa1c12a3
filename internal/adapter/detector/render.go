package detector

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	_ "image/png" // register PNG decoder for uploads
	"math"

	"github.com/couchcryptid/sunspot-archive-service/internal/domain"
)

const (
	lineWidth   = 3
	jpegQuality = 90
)

var boxColor = color.RGBA{R: 255, G: 56, B: 56, A: 255}

func decodeImage(data []byte) (image.Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: unreadable image: %v", domain.ErrValidation, err)
	}
	return img, nil
}

func render(src image.Image, boxes []domain.Box) ([]byte, error) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, drawBoxes(src, boxes), &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("encode rendered image: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBoxes copies src and outlines each box, clipped to the image bounds.
func drawBoxes(src image.Image, boxes []domain.Box) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(b)
	draw.Draw(dst, b, src, b.Min, draw.Src)

	fill := image.NewUniform(boxColor)
	for _, box := range boxes {
		r := image.Rect(
			b.Min.X+int(math.Round(box.XMin)),
			b.Min.Y+int(math.Round(box.YMin)),
			b.Min.X+int(math.Round(box.XMax)),
			b.Min.Y+int(math.Round(box.YMax)),
		).Intersect(b)
		if r.Empty() {
			continue
		}
		w := min(lineWidth, r.Dx(), r.Dy())
		edges := []image.Rectangle{
			image.Rect(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y+w),
			image.Rect(r.Min.X, r.Max.Y-w, r.Max.X, r.Max.Y),
			image.Rect(r.Min.X, r.Min.Y, r.Min.X+w, r.Max.Y),
			image.Rect(r.Max.X-w, r.Min.Y, r.Max.X, r.Max.Y),
		}
		for _, e := range edges {
			draw.Draw(dst, e, fill, image.Point{}, draw.Src)
		}
	}
	return dst
}
