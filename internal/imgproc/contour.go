package imgproc

// Point is an integer 2D point on a traced contour.
type Point struct{ X, Y int }

// Contour is an ordered sequence of boundary points (spec.md §3).
type Contour []Point

// FindContours traces the boundary of every connected foreground (255)
// component in a binary image, retrieving all of them with no hierarchy
// and no approximation (every boundary pixel is kept) — spec.md §4.1 step
// 3. It uses Moore-neighbor boundary tracing with a visited mask so each
// outer boundary is traced exactly once.
func FindContours(bin *Gray) []Contour {
	visited := make([]bool, bin.W*bin.H)
	var contours []Contour

	for y := 0; y < bin.H; y++ {
		for x := 0; x < bin.W; x++ {
			idx := y*bin.W + x
			if visited[idx] || bin.At(x, y) == 0 {
				continue
			}
			// Only start tracing at a boundary pixel: foreground with a
			// background (or out-of-bounds) pixel immediately to its west.
			if x > 0 && bin.At(x-1, y) != 0 {
				continue
			}
			c := traceBoundary(bin, x, y, visited)
			if len(c) > 0 {
				contours = append(contours, c)
			}
		}
	}
	return contours
}

// clockwise neighbor offsets starting west, used by Moore-neighbor tracing.
var neighborOffsets = [8][2]int{
	{-1, 0}, {-1, -1}, {0, -1}, {1, -1},
	{1, 0}, {1, 1}, {0, 1}, {-1, 1},
}

// traceBoundary walks the outer boundary of the foreground component
// starting at (startX, startY) using the Moore-neighbor tracing algorithm,
// marking every foreground pixel touched as visited so interior pixels of
// the same component are skipped by the outer scan in FindContours.
func traceBoundary(bin *Gray, startX, startY int, visited []bool) Contour {
	isFg := func(x, y int) bool { return bin.InBounds(x, y) && bin.At(x, y) != 0 }

	contour := Contour{{X: startX, Y: startY}}
	visited[startY*bin.W+startX] = true

	cx, cy := startX, startY
	// Entered from the west, so the backtrack direction is index 0 (west).
	backtrack := 0

	for steps := 0; steps < 4*bin.W*bin.H; steps++ {
		found := false
		for k := 0; k < 8; k++ {
			dir := (backtrack + 1 + k) % 8
			nx, ny := cx+neighborOffsets[dir][0], cy+neighborOffsets[dir][1]
			if isFg(nx, ny) {
				cx, cy = nx, ny
				backtrack = (dir + 4) % 8
				found = true
				break
			}
		}
		if !found {
			break
		}
		if !visited[cy*bin.W+cx] {
			visited[cy*bin.W+cx] = true
		}
		if cx == startX && cy == startY {
			break
		}
		contour = append(contour, Point{X: cx, Y: cy})
	}
	return contour
}
