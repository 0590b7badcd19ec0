// Package annotations loads ground truth bounding boxes from annotation
// files into the form the encoder and evaluator consume.
package annotations

import (
	"fmt"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"

	"github.com/cropvision/go-yologrid/box"
	"github.com/cropvision/go-yologrid/encode"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// ImageTruth is the set of ground truth boxes for one image
type ImageTruth struct {
	// ID is the image name or file the boxes belong to
	ID string
	// Truths are the ground truth boxes in pixel coordinates
	Truths []encode.GroundTruth
}

// jsonPlant holds one annotated box, with the X and Y point lists carrying
// the min and max coordinate on each axis
type jsonPlant struct {
	AllPointsX []float32 `json:"all_points_x"`
	AllPointsY []float32 `json:"all_points_y"`
}

// jsonImage holds the annotations of one image keyed by image name in the
// annotation file
type jsonImage struct {
	Width  float32     `json:"width"`
	Height float32     `json:"height"`
	Plants []jsonPlant `json:"plants"`
}

// LoadJSON reads bounding boxes for multiple images from a single JSON
// annotation file.  Images are returned sorted by name.  When imageW and
// imageH are positive the box coordinates are rescaled from each image's
// recorded dimensions to the given target dimensions, truncating to whole
// pixels.  All boxes are assigned class 0 as the format carries no class
// information.
func LoadJSON(file string, imageW, imageH int) ([]ImageTruth, error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return nil, fmt.Errorf("error reading annotation file: %w", err)
	}

	var images map[string]jsonImage

	if err := json.Unmarshal(data, &images); err != nil {
		return nil, fmt.Errorf("error parsing annotation file: %w", err)
	}

	names := make([]string, 0, len(images))

	for name := range images {
		names = append(names, name)
	}

	sort.Strings(names)

	results := make([]ImageTruth, 0, len(names))

	for _, name := range names {

		img := images[name]
		truths := make([]encode.GroundTruth, 0, len(img.Plants))

		for i, plant := range img.Plants {

			if len(plant.AllPointsX) < 2 || len(plant.AllPointsY) < 2 {
				return nil, fmt.Errorf("image %s: box %d has incomplete "+
					"coordinates", name, i)
			}

			b := box.FromMinMax(plant.AllPointsX[0], plant.AllPointsX[1],
				plant.AllPointsY[0], plant.AllPointsY[1])

			if imageW > 0 && imageH > 0 {
				b = scaleBox(b, img.Width, img.Height,
					float32(imageW), float32(imageH))
			}

			truths = append(truths, encode.GroundTruth{Box: b})
		}

		results = append(results, ImageTruth{ID: name, Truths: truths})
	}

	return results, nil
}

// scaleBox rescales pixel coordinates from one image size to another,
// truncating to whole pixels
func scaleBox(b box.Box, fromW, fromH, toW, toH float32) box.Box {
	return box.Box{
		X1: float32(int(b.X1 * toW / fromW)),
		Y1: float32(int(b.Y1 * toH / fromH)),
		X2: float32(int(b.X2 * toW / fromW)),
		Y2: float32(int(b.Y2 * toH / fromH)),
	}
}

// ScaleTruths rescales ground truth boxes from one image size to another,
// truncating to whole pixels
func ScaleTruths(truths []encode.GroundTruth, fromW, fromH,
	toW, toH int) []encode.GroundTruth {

	scaled := make([]encode.GroundTruth, len(truths))

	for i, t := range truths {
		scaled[i] = encode.GroundTruth{
			Box: scaleBox(t.Box, float32(fromW), float32(fromH),
				float32(toW), float32(toH)),
			Class: t.Class,
		}
	}

	return scaled
}
