// Command ardetect loads a PNG frame, runs marker detection against a
// JSON-encoded camera intrinsics file, writes an annotated PNG, and logs
// one line per decoded marker (code, corners, pose validity) — a thin host-glue demo around
// the arcore library, mirroring the teacher's cmd/cli entrypoint shape.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"go.viam.com/rdk/logging"

	"arcore"
)

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func realMain() error {
	in := flag.String("in", "", "input PNG frame")
	intrinsicsPath := flag.String("intrinsics", "", "JSON-encoded arcore.Intrinsics")
	out := flag.String("out", "out.png", "annotated output PNG")
	debug := flag.Bool("debug", false, "")
	flag.Parse()

	if *in == "" || *intrinsicsPath == "" {
		return fmt.Errorf("need -in and -intrinsics")
	}

	logger := logging.NewLogger("ardetect")
	if *debug {
		logger.SetLevel(logging.DEBUG)
	}

	frame, err := loadFrame(*in)
	if err != nil {
		return err
	}

	k, err := loadIntrinsics(*intrinsicsPath)
	if err != nil {
		return err
	}

	detector := arcore.NewDetector(arcore.DetectorOptions{}, logger)
	markers, annotated, err := detector.DetectMarkers(frame, k)
	if err != nil {
		return err
	}

	for _, m := range markers {
		logger.Infof("marker %d at %v (poseValid=%v)", m.Code, m.Corners, m.PoseValid)
	}

	return saveFrame(*out, annotated)
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

func saveFrame(path string, frame *arcore.Frame) error {
	img := image.NewRGBA(image.Rect(0, 0, frame.W, frame.H))
	for y := 0; y < frame.H; y++ {
		for x := 0; x < frame.W; x++ {
			b, g, r := frame.At(x, y)
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return png.Encode(f, img)
}

func loadIntrinsics(path string) (arcore.Intrinsics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return arcore.Intrinsics{}, err
	}
	var k arcore.Intrinsics
	if err := json.Unmarshal(data, &k); err != nil {
		return arcore.Intrinsics{}, err
	}
	return k, nil
}
