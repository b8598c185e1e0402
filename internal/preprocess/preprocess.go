package preprocess

import (
	"image"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minDenoiseDim is the dimension above which the median denoise pass runs.
// Tiny rasters carry too little neighborhood context for a 3x3 median to do
// anything but smear the few pixels present.
const minDenoiseDim = 10

// Normalizer converts an arbitrary color raster into the two-level black and
// white raster the recognition engine expects. A single Normalizer is safe
// for concurrent use; every call works on its own freshly allocated buffer.
type Normalizer struct {
	workers int
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithWorkers sets how many row bands the pixel passes are split into.
// Values below 1 fall back to a single band.
func WithWorkers(n int) Option {
	return func(nr *Normalizer) {
		nr.workers = n
	}
}

// NewNormalizer creates a Normalizer. By default the pixel passes are split
// across one row band per CPU.
func NewNormalizer(opts ...Option) *Normalizer {
	n := &Normalizer{workers: runtime.NumCPU()}
	for _, opt := range opts {
		opt(n)
	}
	if n.workers < 1 {
		n.workers = 1
	}
	return n
}

// Normalize runs the full pipeline: grayscale conversion, global Otsu
// thresholding, then a median denoise pass on images larger than
// minDenoiseDim in both dimensions. The returned raster has every channel of
// every pixel at either 0 or 255 and the same dimensions as the source.
func (n *Normalizer) Normalize(src image.Image) *image.RGBA {
	img := n.Grayscale(src)
	level := GrayHistogram(img).OtsuThreshold()
	n.Binarize(img, level)
	if b := img.Bounds(); b.Dx() > minDenoiseDim && b.Dy() > minDenoiseDim {
		n.Denoise(img)
	}
	return img
}

// Grayscale converts src to a grayscale RGBA raster anchored at the origin.
// Luminance is the integer ITU-R BT.601 weighting (299R + 587G + 114B)/1000,
// written to all three color channels; alpha is carried over unchanged.
func (n *Normalizer) Grayscale(src image.Image) *image.RGBA {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	n.eachRowBand(h, func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			i := dst.PixOffset(0, y)
			for x := 0; x < w; x++ {
				r, g, bl, a := src.At(b.Min.X+x, b.Min.Y+y).RGBA()
				luma := uint8((299*(r>>8) + 587*(g>>8) + 114*(bl>>8)) / 1000)
				dst.Pix[i] = luma
				dst.Pix[i+1] = luma
				dst.Pix[i+2] = luma
				dst.Pix[i+3] = uint8(a >> 8)
				i += 4
			}
		}
	})
	return dst
}

// Binarize maps every pixel with gray value strictly above level to white
// and every other pixel to black, on all three channels. The image is
// expected to be grayscale already; the red channel is read as the gray
// value.
func (n *Normalizer) Binarize(img *image.RGBA, level uint8) {
	b := img.Bounds()
	w := b.Dx()
	n.eachRowBand(b.Dy(), func(y0, y1 int) {
		for y := y0; y < y1; y++ {
			i := img.PixOffset(b.Min.X, b.Min.Y+y)
			for x := 0; x < w; x++ {
				v := uint8(0)
				if img.Pix[i] > level {
					v = 255
				}
				img.Pix[i] = v
				img.Pix[i+1] = v
				img.Pix[i+2] = v
				i += 4
			}
		}
	})
}

// eachRowBand splits rows [0, rows) into contiguous bands and runs fn once
// per band, bands in parallel.
func (n *Normalizer) eachRowBand(rows int, fn func(y0, y1 int)) {
	if rows <= 0 {
		return
	}
	workers := n.workers
	if workers > rows {
		workers = rows
	}
	if workers <= 1 {
		fn(0, rows)
		return
	}
	band := (rows + workers - 1) / workers
	var g errgroup.Group
	for y0 := 0; y0 < rows; y0 += band {
		y0, y1 := y0, min(y0+band, rows)
		g.Go(func() error {
			fn(y0, y1)
			return nil
		})
	}
	_ = g.Wait()
}
