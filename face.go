package seamcarve

import (
	"fmt"
	"image"

	pigo "github.com/esimov/pigo/core"
)

// DefaultFacePenalty is the energy added to every pixel inside a detected face.
const DefaultFacePenalty = 1e7

// FaceGuard detects faces with a pigo cascade classifier and raises the
// energy of the detected areas so that seams go around them.
type FaceGuard struct {
	// MinSize is the smallest face size, in pixels, the classifier looks for.
	MinSize int
	// Angle is the rotation angle of the detection window, in the 0..1 range.
	Angle float64
	// Penalty is the energy added inside every detection.
	Penalty float64

	classifier *pigo.Pigo
}

// NewFaceGuard unpacks the binary pigo cascade file.
func NewFaceGuard(cascade []byte) (fg *FaceGuard, err error) {
	// Unpack indexes the packet without bounds checks.
	defer func() {
		if r := recover(); r != nil {
			fg, err = nil, fmt.Errorf("malformed cascade file: %v", r)
		}
	}()

	// Unpacking returns the number of cascade trees, the tree depth,
	// the threshold and the prediction from the tree leaf nodes.
	classifier, err := pigo.NewPigo().Unpack(cascade)
	if err != nil {
		return nil, fmt.Errorf("error unpacking the cascade file: %w", err)
	}
	return &FaceGuard{
		MinSize:    20,
		Penalty:    DefaultFacePenalty,
		classifier: classifier,
	}, nil
}

// Detect returns the bounding squares of the faces found in r.
func (fg *FaceGuard) Detect(r *Raster) []image.Rectangle {
	cParams := pigo.CascadeParams{
		MinSize:     fg.MinSize,
		MaxSize:     max(r.Width, r.Height),
		ShiftFactor: 0.1,
		ScaleFactor: 1.1,

		ImageParams: pigo.ImageParams{
			Pixels: r.Luma(),
			Rows:   r.Height,
			Cols:   r.Width,
			Dim:    r.Width,
		},
	}

	// The result contains quadruplets of row, column, scale and detection score.
	faces := fg.classifier.RunCascade(cParams, fg.Angle)
	// Merge the overlapping detections using the intersection over union (IoU) of the clusters.
	faces = fg.classifier.ClusterDetections(faces, 0.2)

	var rects []image.Rectangle
	for _, face := range faces {
		if face.Q > 5.0 {
			rects = append(rects, image.Rect(
				face.Col-face.Scale/2,
				face.Row-face.Scale/2,
				face.Col+face.Scale/2,
				face.Row+face.Scale/2,
			))
		}
	}
	return rects
}

// Protect detects the faces of the upright raster and raises their energy in em.
// When transposed is set, em was computed from the transpose of upright.
// It returns the number of protected faces.
func (fg *FaceGuard) Protect(upright *Raster, em *EnergyMap, transposed bool) int {
	rects := fg.Detect(upright)
	protectRects(em, rects, transposed, fg.Penalty)
	return len(rects)
}

// protectRects adds penalty to the energy of every pixel covered by rects.
// Rectangles are given in image coordinates and clipped to the map.
func protectRects(em *EnergyMap, rects []image.Rectangle, transposed bool, penalty float64) {
	rows, cols := em.Dims()
	bounds := image.Rect(0, 0, cols, rows)
	for _, rect := range rects {
		if transposed {
			rect = image.Rect(rect.Min.Y, rect.Min.X, rect.Max.Y, rect.Max.X)
		}
		rect = rect.Intersect(bounds)
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			row := em.Row(y)
			for x := rect.Min.X; x < rect.Max.X; x++ {
				row[x] += penalty
			}
		}
	}
}
