package yologrid

import (
	"fmt"
)

// Anchor is a prior box width and height pair. Params carries anchors in
// full image pixels; Config scales them to grid units internally.
type Anchor struct {
	W float32
	H float32
}

// Params defines the struct containing the detection grid parameters to use
// for the encode, decode, filter and evaluation operations
type Params struct {
	// GridW and GridH are the number of grid cells the image is divided
	// into horizontally and vertically
	GridW int
	GridH int
	// ImageW and ImageH are the pixel dimensions of the network input image
	ImageW int
	ImageH int
	// Labels are the object class names the Model has been trained with.
	// The number of classes is taken from its length
	Labels []string
	// Anchors are the prior box sizes in image pixels used in bounding box
	// prediction. The number of boxes predicted per grid cell is taken
	// from its length
	Anchors []Anchor
	// ThreshSig is the minimum confidence score required for a decoded
	// bounding box to be considered significant during output filtering
	ThreshSig float32
	// ThreshOverlap is the Non-Maximum Suppression threshold used for
	// defining the maximum allowed Intersection Over Union (IoU) between
	// two bounding boxes for both to be kept
	ThreshOverlap float32
	// ThreshCorrect is the minimum IoU between a detection and a ground
	// truth box for the detection to count as a true positive during mAP
	// calculation
	ThreshCorrect float32
}

// PlantParams returns an instance of Params configured with default values
// for a single class plant detection Model featuring:
//   - Grid: 7x7
//   - Image input size: 448x448
//   - Anchor Boxes: (159x157), (103x133), (91x89), (64x65), (142x101)
//   - Significance Threshold: 0.6
//   - NMS Overlap Threshold: 0.3
//   - mAP Correctness Threshold: 0.5
func PlantParams() Params {
	return Params{
		GridW:  7,
		GridH:  7,
		ImageW: 448,
		ImageH: 448,
		Labels: []string{"plant"},
		Anchors: []Anchor{
			{W: 159, H: 157},
			{W: 103, H: 133},
			{W: 91, H: 89},
			{W: 64, H: 65},
			{W: 142, H: 101},
		},
		ThreshSig:     0.6,
		ThreshOverlap: 0.3,
		ThreshCorrect: 0.5,
	}
}

// Config is an immutable set of detection grid parameters with derived
// values precomputed. Once constructed it is never mutated, so a single
// Config is safe to share across goroutines and pipeline stages. Changing
// parameters mid-pipeline invalidates encoded label tensors, which is why
// there are no setters, create a new Config instead.
type Config struct {
	params        Params
	scaledAnchors []Anchor
	labelVecSize  int
	predVecSize   int
}

// NewConfig validates the given Params and returns a Config with the
// anchors scaled to grid units
func NewConfig(p Params) (*Config, error) {

	if p.GridW <= 0 || p.GridH <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d",
			p.GridW, p.GridH)
	}

	if p.ImageW <= 0 || p.ImageH <= 0 {
		return nil, fmt.Errorf("image dimensions must be positive, got %dx%d",
			p.ImageW, p.ImageH)
	}

	if len(p.Anchors) == 0 {
		return nil, fmt.Errorf("anchor list must not be empty")
	}

	if len(p.Labels) == 0 {
		return nil, fmt.Errorf("labels list must not be empty")
	}

	for _, t := range []struct {
		name string
		val  float32
	}{
		{"ThreshSig", p.ThreshSig},
		{"ThreshOverlap", p.ThreshOverlap},
		{"ThreshCorrect", p.ThreshCorrect},
	} {
		if t.val < 0 || t.val > 1 {
			return nil, fmt.Errorf("%s must be in range [0,1], got %f",
				t.name, t.val)
		}
	}

	c := &Config{
		// copy the slices so later mutation of the Params value by the
		// caller cannot leak into the Config
		params:       p,
		labelVecSize: 1 + len(p.Labels) + 4,
		predVecSize:  len(p.Anchors)*5 + len(p.Labels),
	}

	c.params.Labels = append([]string(nil), p.Labels...)
	c.params.Anchors = append([]Anchor(nil), p.Anchors...)

	// scale anchors from image pixels to grid units
	scaleW := float32(p.GridW) / float32(p.ImageW)
	scaleH := float32(p.GridH) / float32(p.ImageH)

	c.scaledAnchors = make([]Anchor, len(p.Anchors))

	for i, a := range p.Anchors {
		c.scaledAnchors[i] = Anchor{
			W: a.W * scaleW,
			H: a.H * scaleH,
		}
	}

	return c, nil
}

// GridW returns the number of grid cells across the image
func (c *Config) GridW() int {
	return c.params.GridW
}

// GridH returns the number of grid cells down the image
func (c *Config) GridH() int {
	return c.params.GridH
}

// GridCells returns the total number of cells in the grid
func (c *Config) GridCells() int {
	return c.params.GridW * c.params.GridH
}

// ImageW returns the network input image pixel width
func (c *Config) ImageW() int {
	return c.params.ImageW
}

// ImageH returns the network input image pixel height
func (c *Config) ImageH() int {
	return c.params.ImageH
}

// Labels returns the object class names
func (c *Config) Labels() []string {
	return c.params.Labels
}

// NumClasses returns the number of object classes
func (c *Config) NumClasses() int {
	return len(c.params.Labels)
}

// NumBoxes returns the number of boxes predicted per grid cell, one per
// anchor
func (c *Config) NumBoxes() int {
	return len(c.params.Anchors)
}

// Anchors returns the prior box sizes in image pixels
func (c *Config) Anchors() []Anchor {
	return c.params.Anchors
}

// ScaledAnchors returns the prior box sizes scaled to grid units
func (c *Config) ScaledAnchors() []Anchor {
	return c.scaledAnchors
}

// ThreshSig returns the bounding box significance threshold
func (c *Config) ThreshSig() float32 {
	return c.params.ThreshSig
}

// ThreshOverlap returns the NMS overlap threshold
func (c *Config) ThreshOverlap() float32 {
	return c.params.ThreshOverlap
}

// ThreshCorrect returns the mAP correctness threshold
func (c *Config) ThreshCorrect() float32 {
	return c.params.ThreshCorrect
}

// LabelVecSize returns the length of the label vector for a single grid
// cell, being [objectness, one-hot classes..., x, y, w, h]
func (c *Config) LabelVecSize() int {
	return c.labelVecSize
}

// PredVecSize returns the length of the prediction vector for a single grid
// cell, being NumBoxes blocks of [tx, ty, tw, th, to] followed by the raw
// class scores shared by all boxes in the cell
func (c *Config) PredVecSize() int {
	return c.predVecSize
}

// LabelTensorSize returns the length of the flat label tensor for one image
func (c *Config) LabelTensorSize() int {
	return c.GridCells() * c.labelVecSize
}

// PredTensorSize returns the length of the flat prediction tensor for one
// image
func (c *Config) PredTensorSize() int {
	return c.GridCells() * c.predVecSize
}

// CellIndex returns the linear index of the grid cell at the given column
// and row. The grid is laid out left to right, top to bottom
func (c *Config) CellIndex(col, row int) int {
	return row*c.params.GridW + col
}

// CellCoords returns the column and row of the grid cell with the given
// linear index
func (c *Config) CellCoords(idx int) (col, row int) {
	return idx % c.params.GridW, idx / c.params.GridW
}
