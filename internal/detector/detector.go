// Package detector classifies a captured video frame into a heart-rate zone
// by comparing its mean color against the zone table's reference colors. It is
// a deliberately simple nearest-centroid classifier: the ROI is expected to be
// dominated by a single flat indicator color.
package detector

import (
	"bytes"
	"fmt"
	"image"
	"math"

	// Frame decoders for the formats clients capture in.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"go.uber.org/zap"
	"golang.org/x/image/draw"

	"github.com/fitsync/session-service/internal/errs"
	"github.com/fitsync/session-service/internal/zone"
)

// sampleSize bounds classification cost regardless of input resolution.
const sampleSize = 224

// maxDistance is the largest possible Euclidean distance in RGB space,
// √(3·255²).
var maxDistance = math.Sqrt(3 * 255 * 255)

// ROI restricts classification to a rectangular sub-area of the frame.
// Y and Height are optional; they default to 0 and 100.
type ROI struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Result is the classifier output.
type Result struct {
	Code          zone.Code `json:"code"`
	Name          string    `json:"name"`
	Confidence    float64   `json:"confidence"`
	DominantColor zone.RGB  `json:"dominantColor"`
}

// Detector classifies frames against the canonical zone colors.
type Detector struct {
	log *zap.Logger
}

func New(log *zap.Logger) *Detector {
	return &Detector{log: log}
}

// Detect decodes the frame, optionally crops it to roi, resamples it to a
// fixed 224×224 grid (cover fit: scaled and center-cropped so the grid is
// fully covered), and maps the mean color to the nearest zone. It always
// returns its best match; acting on low confidence is the caller's call.
func (d *Detector) Detect(imageBytes []byte, roi *ROI) (*Result, error) {
	if len(imageBytes) == 0 {
		return nil, errs.ErrEmptyImage
	}
	img, _, err := image.Decode(bytes.NewReader(imageBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errs.ErrImageDecode, err)
	}
	if roi != nil {
		if img, err = crop(img, roi); err != nil {
			return nil, err
		}
	}
	mean := meanColor(resample(img))
	res := classify(mean)
	d.log.Info("zone detected",
		zap.String("code", string(res.Code)),
		zap.Float64("confidence", res.Confidence),
		zap.Uint8("r", mean.R), zap.Uint8("g", mean.G), zap.Uint8("b", mean.B))
	return res, nil
}

func crop(img image.Image, roi *ROI) (image.Image, error) {
	h := roi.Height
	if h == 0 {
		h = 100
	}
	r := image.Rect(roi.X, roi.Y, roi.X+roi.Width, roi.Y+h).
		Add(img.Bounds().Min).
		Intersect(img.Bounds())
	if r.Empty() {
		return nil, fmt.Errorf("%w: roi outside image bounds", errs.ErrImageDecode)
	}
	dst := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
	draw.Draw(dst, dst.Bounds(), img, r.Min, draw.Src)
	return dst, nil
}

// resample scales the image onto the fixed sample grid. The source rectangle
// is the largest centered square, which together with the square destination
// gives cover-fit semantics.
func resample(img image.Image) *image.RGBA {
	b := img.Bounds()
	side := b.Dx()
	if b.Dy() < side {
		side = b.Dy()
	}
	src := image.Rect(0, 0, side, side).
		Add(b.Min).
		Add(image.Pt((b.Dx()-side)/2, (b.Dy()-side)/2))
	dst := image.NewRGBA(image.Rect(0, 0, sampleSize, sampleSize))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)
	return dst
}

// meanColor averages R, G, B over the sample grid; alpha is ignored.
func meanColor(img *image.RGBA) zone.RGB {
	var r, g, b uint64
	n := uint64(sampleSize * sampleSize)
	for y := 0; y < sampleSize; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+sampleSize*4]
		for x := 0; x < sampleSize*4; x += 4 {
			r += uint64(row[x])
			g += uint64(row[x+1])
			b += uint64(row[x+2])
		}
	}
	return zone.RGB{
		R: uint8(math.Round(float64(r) / float64(n))),
		G: uint8(math.Round(float64(g) / float64(n))),
		B: uint8(math.Round(float64(b) / float64(n))),
	}
}

// classify picks the zone whose reference color is nearest in RGB space;
// ties go to the earlier zone in canonical order.
func classify(c zone.RGB) *Result {
	best := zone.All()[0]
	bestDist := math.Inf(1)
	for _, z := range zone.All() {
		dr := float64(c.R) - float64(z.Color.R)
		dg := float64(c.G) - float64(z.Color.G)
		db := float64(c.B) - float64(z.Color.B)
		dist := math.Sqrt(dr*dr + dg*dg + db*db)
		if dist < bestDist {
			bestDist = dist
			best = z
		}
	}
	return &Result{
		Code:          best.Code,
		Name:          best.Name,
		Confidence:    math.Max(0, 1-bestDist/maxDistance),
		DominantColor: c,
	}
}
