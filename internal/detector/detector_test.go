package detector

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"go.uber.org/zap"

	"github.com/fitsync/session-service/internal/errs"
	"github.com/fitsync/session-service/internal/zone"
)

func flatPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func newDetector() *Detector {
	return New(zap.NewNop())
}

func TestDetectFlatColors(t *testing.T) {
	cases := []struct {
		name string
		c    color.RGBA
		want zone.Code
	}{
		{"white", color.RGBA{255, 255, 255, 255}, zone.White},
		{"grey", color.RGBA{158, 158, 158, 255}, zone.Grey},
		{"blue", color.RGBA{33, 150, 243, 255}, zone.Blue},
		{"green", color.RGBA{76, 175, 80, 255}, zone.Green},
		{"yellow", color.RGBA{255, 235, 59, 255}, zone.Yellow},
		{"red", color.RGBA{244, 67, 54, 255}, zone.Red},
	}
	d := newDetector()
	for _, tc := range cases {
		res, err := d.Detect(flatPNG(t, 64, 64, tc.c), nil)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if res.Code != tc.want {
			t.Errorf("%s: detected %s", tc.name, res.Code)
		}
		if res.Confidence < 0.999 {
			t.Errorf("%s: confidence %f, want ~1.0", tc.name, res.Confidence)
		}
		if res.DominantColor != (zone.RGB{R: tc.c.R, G: tc.c.G, B: tc.c.B}) {
			t.Errorf("%s: dominant color %+v", tc.name, res.DominantColor)
		}
	}
}

func TestDetectConfidenceDecreasesWithDistance(t *testing.T) {
	d := newDetector()
	exact, err := d.Detect(flatPNG(t, 32, 32, color.RGBA{33, 150, 243, 255}), nil)
	if err != nil {
		t.Fatal(err)
	}
	near, err := d.Detect(flatPNG(t, 32, 32, color.RGBA{50, 150, 220, 255}), nil)
	if err != nil {
		t.Fatal(err)
	}
	if near.Code != zone.Blue {
		t.Fatalf("near-blue detected as %s", near.Code)
	}
	if near.Confidence >= exact.Confidence {
		t.Errorf("confidence did not decrease: exact %f, near %f", exact.Confidence, near.Confidence)
	}
	if near.Confidence < 0 || near.Confidence > 1 {
		t.Errorf("confidence out of range: %f", near.Confidence)
	}
}

func TestDetectConfidenceFormula(t *testing.T) {
	// A mid-grey between white and the grey centroid: distance to the grey
	// reference is √(3·(188−158)²).
	d := newDetector()
	res, err := d.Detect(flatPNG(t, 32, 32, color.RGBA{188, 188, 188, 255}), nil)
	if err != nil {
		t.Fatal(err)
	}
	dist := math.Sqrt(3 * 30 * 30)
	want := 1 - dist/math.Sqrt(3*255*255)
	if math.Abs(res.Confidence-want) > 1e-6 {
		t.Errorf("confidence = %f, want %f", res.Confidence, want)
	}
}

func TestDetectROI(t *testing.T) {
	// Left half blue, right half red; ROI selects the right half.
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			if x < 100 {
				img.SetRGBA(x, y, color.RGBA{33, 150, 243, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{244, 67, 54, 255})
			}
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}

	d := newDetector()
	res, err := d.Detect(buf.Bytes(), &ROI{X: 100, Y: 0, Width: 100, Height: 100})
	if err != nil {
		t.Fatal(err)
	}
	if res.Code != zone.Red {
		t.Errorf("roi detection = %s, want red", res.Code)
	}

	// Default Y/Height (0 and 100) cover the blue band when X stays left.
	res, err = d.Detect(buf.Bytes(), &ROI{X: 0, Width: 100})
	if err != nil {
		t.Fatal(err)
	}
	if res.Code != zone.Blue {
		t.Errorf("default roi detection = %s, want blue", res.Code)
	}
}

func TestDetectROIOutsideBounds(t *testing.T) {
	d := newDetector()
	_, err := d.Detect(flatPNG(t, 32, 32, color.RGBA{255, 255, 255, 255}), &ROI{X: 500, Width: 10, Height: 10})
	if !errors.Is(err, errs.ErrImageDecode) {
		t.Errorf("expected decode error, got %v", err)
	}
}

func TestDetectBadInput(t *testing.T) {
	d := newDetector()
	if _, err := d.Detect(nil, nil); !errors.Is(err, errs.ErrEmptyImage) {
		t.Errorf("empty buffer: got %v", err)
	}
	if _, err := d.Detect([]byte("not an image"), nil); !errors.Is(err, errs.ErrImageDecode) {
		t.Errorf("garbage buffer: got %v", err)
	}
}
