package evaluate

import (
	"testing"

	yologrid "github.com/cropvision/go-yologrid"
	"github.com/cropvision/go-yologrid/box"
	"github.com/cropvision/go-yologrid/encode"
	"github.com/cropvision/go-yologrid/postprocess"
)

// testConfig returns the default 7x7 grid over a 448x448 image
func testConfig(t *testing.T) *yologrid.Config {

	cfg, err := yologrid.NewConfig(yologrid.PlantParams())

	if err != nil {
		t.Fatalf("failed to create config: %v", err)
	}

	return cfg
}

// closeTo64 compares two float64 values within epsilon
func closeTo64(a, b, epsilon float64) bool {
	diff := a - b
	return diff < epsilon && diff > -epsilon
}

func TestMAPZeroDetections(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	truths := [][]encode.GroundTruth{
		{{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}}},
		{{Box: box.Box{X1: 100, Y1: 100, X2: 150, Y2: 150}}},
	}

	detections := [][]postprocess.Detection{nil, nil}

	mAP, err := eval.MeanAveragePrecision(truths, detections)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if mAP != 0 {
		t.Errorf("expected mAP 0 with no detections, got %f", mAP)
	}
}

func TestMAPPerfectDetections(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	truths := [][]encode.GroundTruth{
		{
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}},
			{Box: box.Box{X1: 200, Y1: 200, X2: 280, Y2: 280}},
		},
		{
			{Box: box.Box{X1: 100, Y1: 100, X2: 150, Y2: 150}},
		},
	}

	detections := [][]postprocess.Detection{
		{
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.9},
			{Box: box.Box{X1: 200, Y1: 200, X2: 280, Y2: 280}, Confidence: 0.8},
		},
		{
			{Box: box.Box{X1: 100, Y1: 100, X2: 150, Y2: 150}, Confidence: 0.95},
		},
	}

	mAP, err := eval.MeanAveragePrecision(truths, detections)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if !closeTo64(mAP, 1.0, 1e-9) {
		t.Errorf("expected mAP 1.0 for perfect detections, got %f", mAP)
	}
}

func TestMAPFalsePositiveAfterTruePositive(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	truths := [][]encode.GroundTruth{
		{
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}},
			{Box: box.Box{X1: 200, Y1: 200, X2: 280, Y2: 280}},
		},
	}

	// one true positive at confidence 0.9, one false positive at 0.8.
	// precision steps are [1, 0.5], recall steps [0.5, 0.5], so the area
	// under the corrected curve is 0.5
	detections := [][]postprocess.Detection{
		{
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.9},
			{Box: box.Box{X1: 350, Y1: 350, X2: 400, Y2: 400}, Confidence: 0.8},
		},
	}

	mAP, err := eval.MeanAveragePrecision(truths, detections)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if !closeTo64(mAP, 0.5, 1e-9) {
		t.Errorf("expected mAP 0.5, got %f", mAP)
	}
}

func TestMAPEnvelopeLiftsEarlyFalsePositive(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	truths := [][]encode.GroundTruth{
		{{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}}},
	}

	// the false positive outranks the true positive. Raw precision is
	// [0, 0.5] with recall [0, 1], the backward envelope lifts the first
	// entry to 0.5, giving an area of 0.5
	detections := [][]postprocess.Detection{
		{
			{Box: box.Box{X1: 350, Y1: 350, X2: 400, Y2: 400}, Confidence: 0.9},
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.8},
		},
	}

	mAP, err := eval.MeanAveragePrecision(truths, detections)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if !closeTo64(mAP, 0.5, 1e-9) {
		t.Errorf("expected mAP 0.5, got %f", mAP)
	}
}

func TestMAPDuplicateDetectionIsFalsePositive(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	truths := [][]encode.GroundTruth{
		{{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}}},
	}

	// both detections overlap the single ground truth box, only the more
	// confident one is credited, the duplicate is a false positive
	detections := [][]postprocess.Detection{
		{
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.9},
			{Box: box.Box{X1: 1, Y1: 1, X2: 51, Y2: 51}, Confidence: 0.8},
		},
	}

	mAP, err := eval.MeanAveragePrecision(truths, detections)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	// precision [1, 0.5], recall [1, 1]: area 1*1 + 0.5*0 = 1
	if !closeTo64(mAP, 1.0, 1e-9) {
		t.Errorf("expected mAP 1.0, got %f", mAP)
	}
}

func TestMAPDetectionsOnEmptyImage(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	// first image has no ground truth, its detection is always a false
	// positive. The second image's box is found.
	truths := [][]encode.GroundTruth{
		nil,
		{{Box: box.Box{X1: 100, Y1: 100, X2: 150, Y2: 150}}},
	}

	detections := [][]postprocess.Detection{
		{{Box: box.Box{X1: 10, Y1: 10, X2: 60, Y2: 60}, Confidence: 0.7}},
		{{Box: box.Box{X1: 100, Y1: 100, X2: 150, Y2: 150}, Confidence: 0.9}},
	}

	mAP, err := eval.MeanAveragePrecision(truths, detections)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	// precision [1, 0.5], recall [1, 1]: area 1
	if !closeTo64(mAP, 1.0, 1e-9) {
		t.Errorf("expected mAP 1.0, got %f", mAP)
	}
}

func TestMAPEmptyDataset(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	mAP, err := eval.MeanAveragePrecision(nil, nil)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if mAP != 0 {
		t.Errorf("expected mAP 0 for an empty dataset, got %f", mAP)
	}
}

func TestMAPMismatchedLengths(t *testing.T) {

	eval := NewEvaluator(testConfig(t))

	_, err := eval.MeanAveragePrecision(
		make([][]encode.GroundTruth, 2),
		make([][]postprocess.Detection, 3),
	)

	if err == nil {
		t.Error("expected error for mismatched image counts")
	}
}

func TestMAPMultiClassAveraging(t *testing.T) {

	params := yologrid.PlantParams()
	params.Labels = []string{"plant", "weed"}

	cfg, err := yologrid.NewConfig(params)

	if err != nil {
		t.Fatalf("failed to create config: %v", err)
	}

	eval := NewEvaluator(cfg)

	truths := [][]encode.GroundTruth{
		{
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}, Class: 0},
			{Box: box.Box{X1: 200, Y1: 200, X2: 250, Y2: 250}, Class: 1},
		},
	}

	// class 0 is found perfectly, class 1 is missed entirely, so the mean
	// of the per class APs is 0.5
	detections := [][]postprocess.Detection{
		{
			{Box: box.Box{X1: 0, Y1: 0, X2: 50, Y2: 50}, Confidence: 0.9, Class: 0},
		},
	}

	mAP, err := eval.MeanAveragePrecision(truths, detections)

	if err != nil {
		t.Fatalf("evaluation failed: %v", err)
	}

	if !closeTo64(mAP, 0.5, 1e-9) {
		t.Errorf("expected mAP 0.5 across the two classes, got %f", mAP)
	}
}
