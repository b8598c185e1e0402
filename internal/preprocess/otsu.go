package preprocess

import "image"

// Histogram counts how many pixels sit at each 8-bit gray level.
type Histogram [256]int

// GrayHistogram builds the gray-level histogram of img. The red channel is
// read as the gray value, which matches the layout Grayscale produces.
func GrayHistogram(img *image.RGBA) Histogram {
	var h Histogram
	b := img.Bounds()
	w := b.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := 0; x < w; x++ {
			h[img.Pix[i]]++
			i += 4
		}
	}
	return h
}

// OtsuThreshold selects the gray level that best separates ink from paper:
// the t in [0,255] maximizing the between-class variance wB*wF*(mB-mF)^2 of
// the classes [0,t] and [t+1,255]. The forward scan updates only on strict
// improvement, so when several levels tie the lowest one is kept. Histograms
// with a single occupied bin, or none, produce 0; classes with zero weight
// never divide.
func (h Histogram) OtsuThreshold() uint8 {
	total := 0
	sum := 0.0
	for i, count := range h {
		total += count
		sum += float64(i) * float64(count)
	}
	if total == 0 {
		return 0
	}

	var (
		best      float64
		threshold uint8
		wB        float64
		sumB      float64
	)
	for t := 0; t < 256; t++ {
		wB += float64(h[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t) * float64(h[t])
		mB := sumB / wB
		mF := (sum - sumB) / wF
		v := wB * wF * (mB - mF) * (mB - mF)
		if v > best {
			best = v
			threshold = uint8(t)
		}
	}
	return threshold
}
