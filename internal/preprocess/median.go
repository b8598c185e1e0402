package preprocess

import (
	"image"
	"slices"
)

// Denoise applies a 3x3 median filter to the interior pixels of img,
// excluding the one-pixel border. Every sample is read from a snapshot taken
// before the pass, so no window ever observes a value written during the
// same pass. Pixels already at a threshold extreme (0 or 255) are left
// untouched; after Binarize that covers every pixel, but the guard keeps the
// pass safe for rasters that were never thresholded. Images too small to have
// interior pixels are left as they are.
func (n *Normalizer) Denoise(img *image.RGBA) {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w < 3 || h < 3 {
		return
	}

	snap := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		i := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x := 0; x < w; x++ {
			snap[y*w+x] = img.Pix[i]
			i += 4
		}
	}

	// Interior rows are 1..h-2; bands index into that range.
	n.eachRowBand(h-2, func(y0, y1 int) {
		var window [9]uint8
		for y := y0 + 1; y <= y1; y++ {
			for x := 1; x < w-1; x++ {
				v := snap[y*w+x]
				if v == 0 || v == 255 {
					continue
				}
				k := 0
				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						window[k] = snap[(y+dy)*w+(x+dx)]
						k++
					}
				}
				slices.Sort(window[:])
				m := window[4]
				i := img.PixOffset(b.Min.X+x, b.Min.Y+y)
				img.Pix[i] = m
				img.Pix[i+1] = m
				img.Pix[i+2] = m
			}
		}
	})
}
