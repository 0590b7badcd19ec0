package postprocess

import (
	"sort"

	"github.com/chewxy/math32"

	"github.com/cropvision/go-yologrid/box"
)

// sigmoid maps a raw logit to (0, 1)
func sigmoid(x float32) float32 {
	return 1.0 / (1.0 + math32.Exp(-x))
}

// softmax normalizes raw class logits into probabilities. The maximum logit
// is subtracted first to keep the exponentials from overflowing.
func softmax(logits []float32) []float32 {

	probs := make([]float32, len(logits))

	if len(logits) == 0 {
		return probs
	}

	max := logits[0]

	for _, v := range logits[1:] {
		if v > max {
			max = v
		}
	}

	var sum float32

	for i, v := range logits {
		probs[i] = math32.Exp(v - max)
		sum += probs[i]
	}

	for i := range probs {
		probs[i] /= sum
	}

	return probs
}

// argmax32 returns the index of the largest value, the first such index on
// exact ties
func argmax32(vals []float32) int {

	best := 0

	for i := 1; i < len(vals); i++ {
		if vals[i] > vals[best] {
			best = i
		}
	}

	return best
}

// nms implements Non-Maximum Suppression over the significant detections of
// one image. The detections are sorted ascending by confidence with a
// stable sort and the winner is always taken from the end, so on exact
// confidence ties the detection appearing later in original cell order
// wins. Every remaining detection whose IoU with the winner exceeds
// threshold is suppressed.
func nms(dets []Detection, threshold float32) []Detection {

	order := make([]int, len(dets))

	for i := range order {
		order[i] = i
	}

	sort.SliceStable(order, func(a, b int) bool {
		return dets[order[a]].Confidence < dets[order[b]].Confidence
	})

	var keep []Detection

	for len(order) > 0 {

		cur := order[len(order)-1]
		keep = append(keep, dets[cur])

		remaining := order[:0]

		for _, j := range order[:len(order)-1] {
			if box.IoU(dets[cur].Box, dets[j].Box) <= threshold {
				remaining = append(remaining, j)
			}
		}

		order = remaining
	}

	return keep
}
