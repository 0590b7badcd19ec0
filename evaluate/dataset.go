package evaluate

import (
	"fmt"
	"sync"

	yologrid "github.com/cropvision/go-yologrid"
	"github.com/cropvision/go-yologrid/encode"
	"github.com/cropvision/go-yologrid/postprocess"
)

// Dataset accumulates one prediction tensor and one ground truth list per
// image for a full evaluation pass. The per image filtering runs in
// parallel across a detector pool, the cross image aggregation waits for
// all of it to finish before computing the mAP.
type Dataset struct {
	cfg *yologrid.Config
	enc *encode.Encoder

	truths [][]encode.GroundTruth
	preds  [][]float32
}

// NewDataset returns an empty Dataset for the given configuration
func NewDataset(cfg *yologrid.Config) *Dataset {
	return &Dataset{
		cfg: cfg,
		enc: encode.NewEncoder(cfg),
	}
}

// Add appends one image's ground truth boxes and raw prediction tensor.
// Either may be empty, an image with no objects or an all background
// prediction is a valid input.
func (d *Dataset) Add(truths []encode.GroundTruth, preds []float32) error {

	if len(preds) != d.cfg.PredTensorSize() {
		return fmt.Errorf("prediction tensor has %d elements, expected %d",
			len(preds), d.cfg.PredTensorSize())
	}

	d.truths = append(d.truths, truths)
	d.preds = append(d.preds, preds)

	return nil
}

// AddEncoded is Add for images whose ground truth arrives as an encoded
// label tensor, as pulled back off a training queue. The label tensor is
// decoded into pixel space boxes first.
func (d *Dataset) AddEncoded(labels, preds []float32) error {

	truths, err := d.enc.DecodeLabels(labels)

	if err != nil {
		return err
	}

	return d.Add(truths, preds)
}

// Len returns the number of images added
func (d *Dataset) Len() int {
	return len(d.preds)
}

// Evaluate runs the detection filter over every image using a pool of the
// given number of detectors, then computes the dataset mAP. The detection
// lists are also returned, parallel to the added images, for external
// reporting.
func (d *Dataset) Evaluate(workers int) (float64, [][]postprocess.Detection, error) {

	if workers < 1 {
		workers = 1
	}

	pool := postprocess.NewPool(workers, d.cfg)
	defer pool.Close()

	detections := make([][]postprocess.Detection, len(d.preds))
	errs := make([]error, len(d.preds))

	var wg sync.WaitGroup

	for i := range d.preds {
		wg.Add(1)

		go func(i int) {
			defer wg.Done()

			det := pool.Get()
			defer pool.Return(det)

			detections[i], errs[i] = det.DetectObjects(d.preds[i])
		}(i)
	}

	wg.Wait()

	for i, err := range errs {
		if err != nil {
			return 0, nil, fmt.Errorf("image %d: %w", i, err)
		}
	}

	mAP, err := NewEvaluator(d.cfg).MeanAveragePrecision(d.truths, detections)

	if err != nil {
		return 0, nil, err
	}

	return mAP, detections, nil
}
