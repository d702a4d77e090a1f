package imgproc

import (
	"image"

	"go.viam.com/utils"
)

// integralImage returns the summed-area table of g, sized (W+1)x(H+1) so
// that sum(x0,y0,x1,y1) (half-open rectangle) is a handful of array lookups.
func integralImage(g *Gray) []int64 {
	stride := g.W + 1
	sum := make([]int64, stride*(g.H+1))
	for y := 0; y < g.H; y++ {
		var rowSum int64
		for x := 0; x < g.W; x++ {
			rowSum += int64(g.At(x, y))
			sum[(y+1)*stride+(x+1)] = sum[y*stride+(x+1)] + rowSum
		}
	}
	return sum
}

func boxSum(sum []int64, stride, x0, y0, x1, y1 int) int64 {
	return sum[y1*stride+x1] - sum[y0*stride+x1] - sum[y1*stride+x0] + sum[y0*stride+x0]
}

// AdaptiveThresholdMeanInv implements adaptive mean thresholding with
// inverted binary output: a pixel is foreground (255) when it is darker
// than its blockSize x blockSize neighborhood mean minus C, background (0)
// otherwise. This matches spec.md §4.1 step 2 (binary-inverted, block size
// 7, constant 7).
func AdaptiveThresholdMeanInv(src *Gray, blockSize int, c float64) *Gray {
	if blockSize%2 == 0 {
		blockSize++
	}
	radius := blockSize / 2
	sum := integralImage(src)
	stride := src.W + 1
	out := NewGray(src.W, src.H)

	utils.ParallelForEachPixel(image.Point{X: src.W, Y: src.H}, func(x, y int) {
		x0 := max(0, x-radius)
		y0 := max(0, y-radius)
		x1 := min(src.W, x+radius+1)
		y1 := min(src.H, y+radius+1)
		area := int64(x1-x0) * int64(y1-y0)
		mean := float64(boxSum(sum, stride, x0, y0, x1, y1)) / float64(area)
		if float64(src.At(x, y)) < mean-c {
			out.Set(x, y, 255)
		}
	})
	return out
}

// OtsuThreshold binarizes src by Otsu's method: the threshold that
// maximizes inter-class variance between foreground and background pixel
// populations. Output values are in {0, 255} (spec.md §4.2 invariant).
func OtsuThreshold(src *Gray) *Gray {
	var hist [256]int
	for _, v := range src.Pix {
		hist[v]++
	}
	total := len(src.Pix)

	var sumAll float64
	for i, count := range hist {
		sumAll += float64(i * count)
	}

	var sumB, wB float64
	var bestThresh int
	var bestVar float64

	for t := 0; t < 256; t++ {
		wB += float64(hist[t])
		if wB == 0 {
			continue
		}
		wF := float64(total) - wB
		if wF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		mB := sumB / wB
		mF := (sumAll - sumB) / wF
		between := wB * wF * (mB - mF) * (mB - mF)
		if between > bestVar {
			bestVar = between
			bestThresh = t
		}
	}

	out := NewGray(src.W, src.H)
	for i, v := range src.Pix {
		if int(v) > bestThresh {
			out.Pix[i] = 255
		}
	}
	return out
}
