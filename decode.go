package arcore

import "arcore/internal/imgproc"

const (
	gridSize   = 7
	cellSize   = rectifiedSize / gridSize
	cellPixels = cellSize * cellSize
)

// codewordFamily is the fixed 4x5 binary matrix every marker row must match
// under some rotation (spec.md §3, §9 point 4: compile-time constant, no
// alternative dictionaries).
var codewordFamily = [4][5]int{
	{1, 0, 0, 0, 0},
	{1, 0, 1, 1, 1},
	{0, 1, 0, 0, 1},
	{0, 1, 1, 1, 0},
}

// sampleCells partitions a rectified, Otsu-binarized 350x350 image into the
// 7x7 grid of 50x50 cells spec.md §4.3 describes, checks the one-cell black
// border, and extracts the interior 5x5 bit matrix. ok is false if any
// border cell fails the black-majority test.
func sampleCells(bin *imgproc.Gray) (bits [5][5]int, ok bool) {
	whiteCount := func(gy, gx int) int {
		count := 0
		y0, x0 := gy*cellSize, gx*cellSize
		for y := y0; y < y0+cellSize; y++ {
			for x := x0; x < x0+cellSize; x++ {
				if bin.At(x, y) != 0 {
					count++
				}
			}
		}
		return count
	}

	for x := 0; x < gridSize; x++ {
		for _, y := range [2]int{0, gridSize - 1} {
			if whiteCount(y, x) > cellPixels/2 {
				return bits, false
			}
		}
	}
	for y := 1; y < gridSize-1; y++ {
		for _, x := range [2]int{0, gridSize - 1} {
			if whiteCount(y, x) > cellPixels/2 {
				return bits, false
			}
		}
	}

	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			if whiteCount(y+1, x+1) > cellPixels/2 {
				bits[y][x] = 1
			}
		}
	}
	return bits, true
}

// rotateBitsCCW rotates a 5x5 bit matrix 90 degrees counter-clockwise
// within the matrix: out[i][j] = in[rows-j-1][i] (spec.md §4.4).
func rotateBitsCCW(b [5][5]int) [5][5]int {
	var out [5][5]int
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			out[i][j] = b[5-j-1][i]
		}
	}
	return out
}

// rowHammingDistance returns the minimum Hamming distance between row and
// any codeword in the family.
func rowHammingDistance(row [5]int) int {
	best := -1
	for _, word := range codewordFamily {
		d := 0
		for i := 0; i < 5; i++ {
			if row[i] != word[i] {
				d++
			}
		}
		if best < 0 || d < best {
			best = d
		}
	}
	return best
}

func totalHammingDistance(b [5][5]int) int {
	total := 0
	for _, row := range b {
		total += rowHammingDistance(row)
	}
	return total
}

// decodeBits implements spec.md §4.4: searches the four CCW rotations of
// the bit matrix in order, stopping at the first with total Hamming
// distance 0, then reads the code from columns 1 and 3 MSB-first. Returns
// ok=false if no rotation matches.
func decodeBits(b [5][5]int) (code int, ok bool) {
	current := b
	for rot := 0; rot < 4; rot++ {
		if totalHammingDistance(current) == 0 {
			return readCode(current), true
		}
		current = rotateBitsCCW(current)
	}
	return -1, false
}

func readCode(b [5][5]int) int {
	code := 0
	for y := 0; y < 5; y++ {
		code = code<<1 | b[y][1]
		code = code<<1 | b[y][3]
	}
	return code
}
