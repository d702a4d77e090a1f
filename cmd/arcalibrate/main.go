// Command arcalibrate runs chessboard camera calibration against a
// directory of PNG chessboard frames and writes the recovered intrinsics
// as JSON, a thin host-glue demo around arcore.Calibrator.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sort"

	"arcore"
)

// calibrationOutput is the JSON shape written to -out: the solved
// intrinsics plus the mean squared pixel reprojection error spec.md §6/§8
// require compute_intrinsics to report alongside K and D.
type calibrationOutput struct {
	arcore.Intrinsics
	ReprojErrMSE float64 `json:"reprojErrMSE"`
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func realMain() error {
	dir := flag.String("frames", "", "directory of chessboard PNG frames")
	out := flag.String("out", "intrinsics.json", "output JSON intrinsics file")
	flag.Parse()

	if *dir == "" {
		return fmt.Errorf("need -frames")
	}

	paths, err := filepath.Glob(filepath.Join(*dir, "*.png"))
	if err != nil {
		return err
	}
	sort.Strings(paths)

	var session arcore.CalibrationSession
	var imageSize image.Point
	for _, p := range paths {
		frame, err := loadFrame(p)
		if err != nil {
			return err
		}
		if imageSize == (image.Point{}) {
			imageSize = image.Point{X: frame.W, Y: frame.H}
		}
		corners, found := arcore.FindCalibrationPattern(frame)
		if !found {
			fmt.Fprintf(os.Stderr, "skipping %s: pattern not found\n", p)
			continue
		}
		session.Samples = append(session.Samples, corners)
	}

	calibrator := arcore.NewCalibrator()
	k, reprojErr, err := calibrator.ComputeIntrinsics(session, imageSize)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "reprojection error (MSE): %v\n", reprojErr)

	data, err := json.MarshalIndent(calibrationOutput{Intrinsics: k, ReprojErrMSE: reprojErr}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(*out, data, 0o644)
}

func loadFrame(path string) (*arcore.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, err
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	frame := arcore.NewFrame(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			frame.Set(x, y, byte(b>>8), byte(g>>8), byte(r>>8))
		}
	}
	return frame, nil
}
