// Package evaluate scores filtered detections against ground truth boxes
// across a dataset and computes the mean average precision (mAP) accuracy
// metric.
package evaluate

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	yologrid "github.com/cropvision/go-yologrid"
	"github.com/cropvision/go-yologrid/box"
	"github.com/cropvision/go-yologrid/encode"
	"github.com/cropvision/go-yologrid/postprocess"
)

// Evaluator computes the mAP of detections against ground truth. It holds
// no state between calls, each invocation consumes one full dataset pass
// and returns one scalar.
type Evaluator struct {
	cfg *yologrid.Config
}

// NewEvaluator returns an Evaluator for the given configuration
func NewEvaluator(cfg *yologrid.Config) *Evaluator {
	return &Evaluator{
		cfg: cfg,
	}
}

// outcome records whether a single detection was a true or false positive
type outcome struct {
	confidence   float32
	truePositive bool
}

// MeanAveragePrecision matches the filtered detections of every image
// against that image's ground truth boxes and returns the mean average
// precision. The two slices are parallel, one entry per image; empty
// entries are valid (an image with no objects or no surviving detections).
// With a single configured class the result is the plain average
// precision, with several classes the per class APs are averaged.
func (e *Evaluator) MeanAveragePrecision(truths [][]encode.GroundTruth,
	detections [][]postprocess.Detection) (float64, error) {

	if len(truths) != len(detections) {
		return 0, fmt.Errorf("got %d ground truth lists and %d detection "+
			"lists, expected one of each per image", len(truths), len(detections))
	}

	// collect the classes present in either the ground truth or the
	// detections. Classes with no boxes at all contribute nothing.
	classSet := make(map[int]bool)

	for _, img := range truths {
		for _, gt := range img {
			classSet[gt.Class] = true
		}
	}

	for _, img := range detections {
		for _, det := range img {
			classSet[det.Class] = true
		}
	}

	if len(classSet) == 0 {
		return 0, nil
	}

	var sum float64

	for c := range classSet {
		sum += e.averagePrecision(c, truths, detections)
	}

	return sum / float64(len(classSet)), nil
}

// averagePrecision computes the area under the corrected precision/recall
// curve for one class
func (e *Evaluator) averagePrecision(class int, truths [][]encode.GroundTruth,
	detections [][]postprocess.Detection) float64 {

	var outcomes []outcome
	totalTruths := 0

	for i := range truths {

		var gt []encode.GroundTruth

		for _, g := range truths[i] {
			if g.Class == class {
				gt = append(gt, g)
			}
		}

		var dets []postprocess.Detection

		for _, d := range detections[i] {
			if d.Class == class {
				dets = append(dets, d)
			}
		}

		totalTruths += len(gt)

		// process detections in descending confidence order so the most
		// confident detection of a ground truth box is the one credited
		// with it
		order := make([]int, len(dets))

		for j := range order {
			order[j] = j
		}

		sort.SliceStable(order, func(a, b int) bool {
			return dets[order[a]].Confidence > dets[order[b]].Confidence
		})

		matched := make([]bool, len(gt))

		for _, di := range order {

			d := dets[di]

			// best IoU against the unmatched ground truth boxes of this
			// image. Each box can be matched by at most one detection.
			bestJ := -1
			var bestIoU float32

			for j := range gt {
				if matched[j] {
					continue
				}

				if iou := box.IoU(d.Box, gt[j].Box); bestJ == -1 || iou > bestIoU {
					bestIoU = iou
					bestJ = j
				}
			}

			tp := bestJ != -1 && bestIoU >= e.cfg.ThreshCorrect()

			if tp {
				matched[bestJ] = true
			}

			outcomes = append(outcomes, outcome{
				confidence:   d.Confidence,
				truePositive: tp,
			})
		}
	}

	// no detections at all, or nothing to recall, means zero precision
	if len(outcomes) == 0 || totalTruths == 0 {
		return 0
	}

	// precision/recall curve over all detections in descending global
	// confidence order
	sort.SliceStable(outcomes, func(a, b int) bool {
		return outcomes[a].confidence > outcomes[b].confidence
	})

	tps := make([]float64, len(outcomes))

	for i, o := range outcomes {
		if o.truePositive {
			tps[i] = 1
		}
	}

	cum := make([]float64, len(tps))
	floats.CumSum(cum, tps)

	precision := make([]float64, len(cum))
	recall := make([]float64, len(cum))

	for i := range cum {
		precision[i] = cum[i] / float64(i+1)
		recall[i] = cum[i] / float64(totalTruths)
	}

	// monotonic envelope: precision never increases with recall
	for i := len(precision) - 1; i > 0; i-- {
		if precision[i] > precision[i-1] {
			precision[i-1] = precision[i]
		}
	}

	// area under the corrected curve, the first step rises from recall 0
	ap := precision[0] * recall[0]

	for i := 1; i < len(precision); i++ {
		ap += precision[i] * (recall[i] - recall[i-1])
	}

	return ap
}
