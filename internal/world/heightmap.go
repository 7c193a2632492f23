package world

import (
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"math"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
)

// ImageHeightSource samples a grayscale heightmap. The image tiles across the
// world, one pixel per cellSize world units, and is filtered bilinearly.
type ImageHeightSource struct {
	width, height int
	samples       []float32 // row-major, normalised to [0,1]
	cellSize      float64
	maxHeight     float64
}

// LoadImageHeightSource decodes a PNG, TIFF or BMP heightmap from path.
func LoadImageHeightSource(path string, cellSize, maxHeight float64) (*ImageHeightSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open heightmap: %w", err)
	}
	defer f.Close()
	return DecodeImageHeightSource(f, cellSize, maxHeight)
}

// DecodeImageHeightSource reads a heightmap from r.
func DecodeImageHeightSource(r io.Reader, cellSize, maxHeight float64) (*ImageHeightSource, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("could not decode heightmap: %w", err)
	}
	src := NewImageHeightSource(img, cellSize, maxHeight)
	if src.width == 0 || src.height == 0 {
		return nil, fmt.Errorf("empty %s heightmap", format)
	}
	return src, nil
}

// NewImageHeightSource converts img to 16-bit luminance samples.
func NewImageHeightSource(img image.Image, cellSize, maxHeight float64) *ImageHeightSource {
	b := img.Bounds()
	s := &ImageHeightSource{
		width:     b.Dx(),
		height:    b.Dy(),
		samples:   make([]float32, b.Dx()*b.Dy()),
		cellSize:  cellSize,
		maxHeight: maxHeight,
	}
	if s.cellSize <= 0 {
		s.cellSize = 1
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
			s.samples[(y-b.Min.Y)*s.width+(x-b.Min.X)] = float32(g.Y) / math.MaxUint16
		}
	}
	return s
}

func (s *ImageHeightSource) sample(px, pz int) float64 {
	px = ((px % s.width) + s.width) % s.width
	pz = ((pz % s.height) + s.height) % s.height
	return float64(s.samples[pz*s.width+px])
}

// HeightAt returns the bilinearly filtered height at world X,Z.
func (s *ImageHeightSource) HeightAt(x, z float64) float64 {
	fx := x / s.cellSize
	fz := z / s.cellSize
	x0 := math.Floor(fx)
	z0 := math.Floor(fz)
	tx := fx - x0
	tz := fz - z0
	ix, iz := int(x0), int(z0)

	h00 := s.sample(ix, iz)
	h10 := s.sample(ix+1, iz)
	h01 := s.sample(ix, iz+1)
	h11 := s.sample(ix+1, iz+1)
	return lerp(lerp(h00, h10, tx), lerp(h01, h11, tx), tz) * s.maxHeight
}
