package postprocess

import (
	"github.com/cropvision/go-yologrid/box"
)

// Detection defines the attributes of a single object detected, in full
// image pixel coordinates. A Detection is created by the detection filter
// and never mutated afterwards.
type Detection struct {
	// Box is the bounding box of the object location, corner form
	Box box.Box
	// Confidence is the objectness score of the detection
	Confidence float32
	// Class is the most probable object class index into the configured
	// labels
	Class int
	// ClassProbs are the per class probabilities shared by all boxes of
	// the grid cell the detection came from
	ClassProbs []float32
	// ID is a unique ID assigned to the detection
	ID int64
}

// Candidate is one anchor's decoded bounding box for a grid cell, in full
// image pixel corner form, before filtering
type Candidate struct {
	// Box is the decoded bounding box
	Box box.Box
	// Confidence is the sigmoid of the raw objectness logit
	Confidence float32
}
