// Package postprocess decodes raw per-grid-cell network outputs into pixel
// space bounding boxes and filters them into final detections with
// confidence thresholding and non-maximal suppression.
package postprocess

import (
	"fmt"

	"github.com/chewxy/math32"

	yologrid "github.com/cropvision/go-yologrid"
	"github.com/cropvision/go-yologrid/box"
)

// bufFloat16 names the scratch pool for fp16 converted prediction tensors
const bufFloat16 = "float16"

// Detector decodes a model's raw output tensor and runs the detection
// filter over it. A Detector reuses internal scratch buffers between calls
// and must not be shared across goroutines, use a Pool to run several
// images in parallel.
type Detector struct {
	cfg *yologrid.Config
	// idGen provides the next number for each detection result ID
	idGen *idGenerator
	// bufPool holds scratch buffers to stop allocation contention
	bufPool *bufferPool
	// cells is a scratch slice for the per cell responsible candidates
	cells []Detection
}

// NewDetector returns a Detector for the given configuration
func NewDetector(cfg *yologrid.Config) *Detector {

	d := &Detector{
		cfg:     cfg,
		idGen:   newIDGenerator(),
		bufPool: newBufferPool(),
		cells:   make([]Detection, 0, cfg.GridCells()),
	}

	_ = d.bufPool.Create(bufFloat16, cfg.PredTensorSize())

	return d
}

// DecodeCell decodes the raw prediction vector of a single grid cell into
// one candidate box per anchor, in full image pixel corner form, along with
// the cell's shared class probabilities. The vector holds NumBoxes blocks
// of [tx, ty, tw, th, to] logits followed by the raw class logits.
func (d *Detector) DecodeCell(pred []float32, col, row int) ([]Candidate, []float32, error) {

	cfg := d.cfg

	if len(pred) != cfg.PredVecSize() {
		return nil, nil, fmt.Errorf("prediction vector has %d elements, "+
			"expected %d", len(pred), cfg.PredVecSize())
	}

	if col < 0 || col >= cfg.GridW() || row < 0 || row >= cfg.GridH() {
		return nil, nil, fmt.Errorf("cell (%d, %d) outside the %dx%d grid",
			col, row, cfg.GridW(), cfg.GridH())
	}

	scaleX := float32(cfg.ImageW()) / float32(cfg.GridW())
	scaleY := float32(cfg.ImageH()) / float32(cfg.GridH())

	anchors := cfg.ScaledAnchors()
	candidates := make([]Candidate, len(anchors))

	for k, anchor := range anchors {

		off := k * 5

		// box center and size in grid units. The anchor parameterizes the
		// size as a multiplicative offset
		cb := box.CenterBox{
			CX: sigmoid(pred[off]) + float32(col),
			CY: sigmoid(pred[off+1]) + float32(row),
			W:  math32.Exp(pred[off+2]) * anchor.W,
			H:  math32.Exp(pred[off+3]) * anchor.H,
		}

		// scale grid units to image pixels
		cb.CX *= scaleX
		cb.CY *= scaleY
		cb.W *= scaleX
		cb.H *= scaleY

		candidates[k] = Candidate{
			Box:        cb.Corners(),
			Confidence: sigmoid(pred[off+4]),
		}
	}

	classProbs := softmax(pred[cfg.NumBoxes()*5:])

	return candidates, classProbs, nil
}

// DetectObjects takes the flat prediction tensor of one image and runs the
// detection filter: in every grid cell the highest confidence candidate is
// the one responsible for prediction, candidates at or below the
// significance threshold are dropped, and the survivors are de-duplicated
// with non-maximal suppression. The returned detections are not guaranteed
// to be sorted by confidence.
func (d *Detector) DetectObjects(preds []float32) ([]Detection, error) {

	cfg := d.cfg

	if len(preds) != cfg.PredTensorSize() {
		return nil, fmt.Errorf("prediction tensor has %d elements, expected %d",
			len(preds), cfg.PredTensorSize())
	}

	vecSize := cfg.PredVecSize()
	d.cells = d.cells[:0]

	for idx := 0; idx < cfg.GridCells(); idx++ {

		col, row := cfg.CellCoords(idx)
		pred := preds[idx*vecSize : (idx+1)*vecSize]

		candidates, classProbs, err := d.DecodeCell(pred, col, row)

		if err != nil {
			return nil, err
		}

		// the highest confidence box in the cell is responsible for
		// prediction, the others are discarded
		best := 0

		for k := 1; k < len(candidates); k++ {
			if candidates[k].Confidence > candidates[best].Confidence {
				best = k
			}
		}

		if candidates[best].Confidence <= cfg.ThreshSig() {
			continue
		}

		d.cells = append(d.cells, Detection{
			Box:        candidates[best].Box,
			Confidence: candidates[best].Confidence,
			Class:      argmax32(classProbs),
			ClassProbs: classProbs,
		})
	}

	if len(d.cells) == 0 {
		// no object detected
		return nil, nil
	}

	group := nms(d.cells, cfg.ThreshOverlap())

	for i := range group {
		group[i].ID = d.idGen.getNext()
	}

	return group, nil
}

// DetectObjectsFloat16 is DetectObjects for runtimes emitting fp16 output
// tensors. The raw float16 bit patterns are converted through a pooled
// scratch buffer before decoding.
func (d *Detector) DetectObjectsFloat16(preds []uint16) ([]Detection, error) {

	if len(preds) != d.cfg.PredTensorSize() {
		return nil, fmt.Errorf("prediction tensor has %d elements, expected %d",
			len(preds), d.cfg.PredTensorSize())
	}

	buf := d.bufPool.Get(bufFloat16, len(preds))
	defer d.bufPool.Put(bufFloat16, buf)

	for i, bits := range preds {
		buf[i] = yologrid.Float16ToFloat32(bits)
	}

	return d.DetectObjects(buf)
}
