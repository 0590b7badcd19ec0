package annotations

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/cropvision/go-yologrid/box"
	"github.com/cropvision/go-yologrid/encode"
)

// vocBndBox is the bounding box element of a Pascal VOC annotation
type vocBndBox struct {
	XMin float32 `xml:"xmin"`
	YMin float32 `xml:"ymin"`
	XMax float32 `xml:"xmax"`
	YMax float32 `xml:"ymax"`
}

// vocObject is one annotated object in a Pascal VOC annotation
type vocObject struct {
	Name   string    `xml:"name"`
	BndBox vocBndBox `xml:"bndbox"`
}

// vocSize records the dimensions of the annotated image
type vocSize struct {
	Width  float32 `xml:"width"`
	Height float32 `xml:"height"`
}

// vocAnnotation is a Pascal VOC annotation file
type vocAnnotation struct {
	XMLName  xml.Name    `xml:"annotation"`
	Filename string      `xml:"filename"`
	Size     vocSize     `xml:"size"`
	Objects  []vocObject `xml:"object"`
}

// LoadVOC reads a single Pascal VOC XML annotation file.  Object names are
// mapped to class numbers by their position in labels, or all assigned
// class 0 when labels is empty.  When imageW and imageH are positive the
// box coordinates are rescaled from the dimensions recorded in the file to
// the given target dimensions, truncating to whole pixels.
func LoadVOC(file string, labels []string, imageW, imageH int) (ImageTruth,
	error) {

	data, err := os.ReadFile(file)

	if err != nil {
		return ImageTruth{}, fmt.Errorf("error reading annotation file: %w",
			err)
	}

	var ann vocAnnotation

	if err := xml.Unmarshal(data, &ann); err != nil {
		return ImageTruth{}, fmt.Errorf("error parsing annotation file: %w",
			err)
	}

	id := ann.Filename

	if id == "" {
		id = strings.TrimSuffix(filepath.Base(file), ".xml")
	}

	truths := make([]encode.GroundTruth, 0, len(ann.Objects))

	for _, obj := range ann.Objects {

		class := 0

		if len(labels) > 0 {

			class = -1

			for i, name := range labels {
				if name == obj.Name {
					class = i
					break
				}
			}

			if class < 0 {
				return ImageTruth{}, fmt.Errorf("image %s: unknown class %q",
					id, obj.Name)
			}
		}

		b := box.Box{
			X1: obj.BndBox.XMin,
			Y1: obj.BndBox.YMin,
			X2: obj.BndBox.XMax,
			Y2: obj.BndBox.YMax,
		}

		if imageW > 0 && imageH > 0 && ann.Size.Width > 0 &&
			ann.Size.Height > 0 {
			b = scaleBox(b, ann.Size.Width, ann.Size.Height,
				float32(imageW), float32(imageH))
		}

		truths = append(truths, encode.GroundTruth{Box: b, Class: class})
	}

	return ImageTruth{ID: id, Truths: truths}, nil
}

// LoadVOCDir reads all Pascal VOC XML annotation files in a directory,
// returned sorted by file name
func LoadVOCDir(dir string, labels []string, imageW, imageH int) ([]ImageTruth,
	error) {

	entries, err := os.ReadDir(dir)

	if err != nil {
		return nil, fmt.Errorf("error reading annotation directory: %w", err)
	}

	files := make([]string, 0, len(entries))

	for _, entry := range entries {

		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".xml") {
			continue
		}

		files = append(files, entry.Name())
	}

	sort.Strings(files)

	results := make([]ImageTruth, 0, len(files))

	for _, name := range files {

		truth, err := LoadVOC(filepath.Join(dir, name), labels,
			imageW, imageH)

		if err != nil {
			return nil, err
		}

		results = append(results, truth)
	}

	return results, nil
}
