// Package encode converts ground truth bounding box annotations into the
// fixed size per-grid-cell label tensors used as network training targets,
// and converts label tensors back into pixel space ground truth boxes.
package encode

import (
	"fmt"

	"github.com/chewxy/math32"

	yologrid "github.com/cropvision/go-yologrid"
	"github.com/cropvision/go-yologrid/box"
)

// GroundTruth is a labeled ground truth bounding box in full image pixel
// coordinates, corner form
type GroundTruth struct {
	// Box is the object location
	Box box.Box
	// Class is the object class index into the configured labels
	Class int
}

// Encoder converts the ground truth boxes of an image into a flat label
// tensor of GridCells x [objectness, one-hot classes..., x, y, w, h]. The
// x and y values are fractional offsets from the owning cell's top left
// corner, w and h are the box size in grid units.
type Encoder struct {
	cfg *yologrid.Config
}

// NewEncoder returns an Encoder for the given configuration
func NewEncoder(cfg *yologrid.Config) *Encoder {
	return &Encoder{
		cfg: cfg,
	}
}

// Encode builds the label tensor for one image. Each box is assigned to
// the grid cell containing its center. A cell owns at most one box: when a
// later box maps to an occupied cell it is skipped, the first box to claim
// a cell wins. Cells with no box keep objectness 0 and all other fields
// zero.
func (e *Encoder) Encode(truths []GroundTruth) ([]float32, error) {

	cfg := e.cfg
	labels := make([]float32, cfg.LabelTensorSize())

	scaleW := float32(cfg.GridW()) / float32(cfg.ImageW())
	scaleH := float32(cfg.GridH()) / float32(cfg.ImageH())

	vecSize := cfg.LabelVecSize()
	cells := cfg.GridCells()

	for i, gt := range truths {

		if gt.Class < 0 || gt.Class >= cfg.NumClasses() {
			return nil, fmt.Errorf("ground truth %d has class %d, outside "+
				"the %d configured classes", i, gt.Class, cfg.NumClasses())
		}

		// box center and size in grid units
		c := gt.Box.Center()
		xGrid := c.CX * scaleW
		yGrid := c.CY * scaleH
		wGrid := c.W * scaleW
		hGrid := c.H * scaleH

		col := math32.Floor(xGrid)
		row := math32.Floor(yGrid)

		xOffset := xGrid - col
		yOffset := yGrid - row

		// a center sitting exactly on the right or bottom image edge lands
		// on grid coordinate gridW or gridH, the modulo wraps it into the
		// last valid cell instead of indexing out of bounds
		idx := (int(row)*cfg.GridW() + int(col)) % cells
		if idx < 0 {
			idx += cells
		}

		off := idx * vecSize

		// first box to claim a cell wins, later boxes are dropped
		if labels[off] == 1 {
			continue
		}

		labels[off] = 1
		labels[off+1+gt.Class] = 1
		labels[off+1+cfg.NumClasses()] = xOffset
		labels[off+1+cfg.NumClasses()+1] = yOffset
		labels[off+1+cfg.NumClasses()+2] = wGrid
		labels[off+1+cfg.NumClasses()+3] = hGrid
	}

	return labels, nil
}

// DecodeLabels inverts Encode, recovering the pixel space ground truth
// boxes from a label tensor. Only cells with objectness 1 produce a box.
// It is used to turn the label tensors fed through a training queue back
// into ground truth lists for mAP evaluation.
func (e *Encoder) DecodeLabels(labels []float32) ([]GroundTruth, error) {

	cfg := e.cfg

	if len(labels) != cfg.LabelTensorSize() {
		return nil, fmt.Errorf("label tensor has %d elements, expected %d",
			len(labels), cfg.LabelTensorSize())
	}

	scaleW := float32(cfg.ImageW()) / float32(cfg.GridW())
	scaleH := float32(cfg.ImageH()) / float32(cfg.GridH())

	vecSize := cfg.LabelVecSize()

	var truths []GroundTruth

	for idx := 0; idx < cfg.GridCells(); idx++ {

		off := idx * vecSize

		if labels[off] != 1 {
			continue
		}

		// class is the hot index of the one-hot block
		class := 0
		best := labels[off+1]

		for k := 1; k < cfg.NumClasses(); k++ {
			if labels[off+1+k] > best {
				best = labels[off+1+k]
				class = k
			}
		}

		col, row := cfg.CellCoords(idx)

		coords := off + 1 + cfg.NumClasses()

		cb := box.CenterBox{
			CX: (labels[coords] + float32(col)) * scaleW,
			CY: (labels[coords+1] + float32(row)) * scaleH,
			W:  labels[coords+2] * scaleW,
			H:  labels[coords+3] * scaleH,
		}

		truths = append(truths, GroundTruth{
			Box:   cb.Corners(),
			Class: class,
		})
	}

	return truths, nil
}
