// Package render draws detection results and ground truth boxes onto
// images for visual inspection of evaluation output.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/cropvision/go-yologrid/encode"
	"github.com/cropvision/go-yologrid/postprocess"
)

// boxLabel records the rendering details of a box text label
type boxLabel struct {
	rect    image.Rectangle
	clr     color.RGBA
	text    string
	textPos image.Point
}

// DetectionBoxes renders the bounding boxes around the objects detected
func DetectionBoxes(img *gocv.Mat, detections []postprocess.Detection,
	classNames []string, font Font, lineThickness int) {

	// keep a record of all box labels for later rendering
	boxLabels := make([]boxLabel, 0)

	// draw detection boxes
	for i, det := range detections {

		// Get the color for this object
		colorIndex := i % len(classColors)
		useClr := classColors[colorIndex]

		rect := boxRect(det.Box.X1, det.Box.Y1, det.Box.X2, det.Box.Y2)
		gocv.Rectangle(img, rect, useClr, lineThickness)

		// create text for label
		text := fmt.Sprintf("%s %.2f", classNames[det.Class], det.Confidence)

		nextLabel := makeBoxLabel(rect, useClr, text, font, lineThickness)
		boxLabels = append(boxLabels, nextLabel)
	}

	drawBoxLabels(img, boxLabels, font)
}

// GroundTruthBoxes renders the ground truth bounding boxes in a single
// color so they can be told apart from detections drawn on the same image
func GroundTruthBoxes(img *gocv.Mat, truths []encode.GroundTruth,
	classNames []string, clr color.RGBA, font Font, lineThickness int) {

	boxLabels := make([]boxLabel, 0)

	for _, truth := range truths {

		rect := boxRect(truth.Box.X1, truth.Box.Y1, truth.Box.X2,
			truth.Box.Y2)
		gocv.Rectangle(img, rect, clr, lineThickness)

		nextLabel := makeBoxLabel(rect, clr, classNames[truth.Class],
			font, lineThickness)
		boxLabels = append(boxLabels, nextLabel)
	}

	drawBoxLabels(img, boxLabels, font)
}

// boxRect converts pixel box coordinates to an image rectangle
func boxRect(x1, y1, x2, y2 float32) image.Rectangle {
	return image.Rect(int(x1), int(y1), int(x2), int(y2))
}

// makeBoxLabel calculates the placement of a box text label above the
// given box rectangle
func makeBoxLabel(rect image.Rectangle, clr color.RGBA, text string,
	font Font, lineThickness int) boxLabel {

	textSize := gocv.GetTextSize(text, font.Face, font.Scale, font.Thickness)

	// Calculate the alignment of text label
	var centerX int

	switch font.Alignment {
	case Center:
		centerX = (rect.Min.X + rect.Max.X) / 2

	case Right:
		centerX = rect.Max.X - (textSize.X / 2) - font.RightPad + (lineThickness / 2)

	case Left:
		fallthrough
	default:
		centerX = rect.Min.X + (textSize.X / 2) + font.LeftPad - (lineThickness / 2)
	}

	// Adjust the label position so the text is centered horizontally
	labelPosition := image.Pt(centerX-textSize.X/2, rect.Min.Y-font.BottomPad)

	// create box for placing text on
	bRect := image.Rect(centerX-textSize.X/2-font.LeftPad,
		rect.Min.Y-textSize.Y-font.TopPad-font.BottomPad,
		centerX+textSize.X/2+font.RightPad, rect.Min.Y)

	return boxLabel{
		rect:    bRect,
		clr:     clr,
		text:    text,
		textPos: labelPosition,
	}
}

// drawBoxLabels draws all precalculated box labels so they are the top most
// layer on the image and don't get overlapped by box lines
func drawBoxLabels(img *gocv.Mat, boxLabels []boxLabel, font Font) {

	for _, box := range boxLabels {
		// draw box text gets written on
		gocv.Rectangle(img, box.rect, box.clr, -1)

		// Draw the label over box
		gocv.PutTextWithParams(img, box.text, box.textPos,
			font.Face, font.Scale, font.Color, font.Thickness,
			font.LineType, false)
	}
}
