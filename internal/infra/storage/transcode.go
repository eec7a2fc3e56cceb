package storage

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/BruksfildServices01/field-service/internal/httperr"
)

var ErrInvalidImage = httperr.ErrBusiness("invalid_image")

// Transcoder normalises uploaded evidence: any supported image is scaled to
// fit MaxDimension and re-encoded as lossy webp.
type Transcoder struct {
	MaxDimension int
	Quality      float32
}

func NewTranscoder(maxDimension int) *Transcoder {
	return &Transcoder{MaxDimension: maxDimension, Quality: 80}
}

func (t *Transcoder) ToWebP(raw []byte) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, ErrInvalidImage
	}

	img := t.fit(src)

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: t.Quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (t *Transcoder) fit(src image.Image) image.Image {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	longest := max(w, h)
	if t.MaxDimension <= 0 || longest <= t.MaxDimension {
		return src
	}

	scale := float64(t.MaxDimension) / float64(longest)
	nw := max(1, int(float64(w)*scale))
	nh := max(1, int(float64(h)*scale))

	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
