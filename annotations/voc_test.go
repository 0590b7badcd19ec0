package annotations

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cropvision/go-yologrid/box"
)

const vocFixture = `<annotation>
	<filename>ara2013_plant001_rgb.png</filename>
	<size>
		<width>3108</width>
		<height>2324</height>
		<depth>3</depth>
	</size>
	<object>
		<name>plant</name>
		<bndbox>
			<xmin>1008</xmin>
			<ymin>720</ymin>
			<xmax>1612</xmax>
			<ymax>1296</ymax>
		</bndbox>
	</object>
</annotation>`

func TestLoadVOC(t *testing.T) {

	file := writeFile(t, "plant001.xml", vocFixture)

	truth, err := LoadVOC(file, []string{"plant"}, 0, 0)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if truth.ID != "ara2013_plant001_rgb.png" {
		t.Errorf("unexpected image id %s", truth.ID)
	}

	if len(truth.Truths) != 1 {
		t.Fatalf("expected 1 box, got %d", len(truth.Truths))
	}

	want := box.Box{X1: 1008, Y1: 720, X2: 1612, Y2: 1296}

	if truth.Truths[0].Box != want {
		t.Errorf("expected box %v, got %v", want, truth.Truths[0].Box)
	}

	if truth.Truths[0].Class != 0 {
		t.Errorf("expected class 0, got %d", truth.Truths[0].Class)
	}
}

func TestLoadVOCRescalesToTargetSize(t *testing.T) {

	file := writeFile(t, "plant001.xml", vocFixture)

	truth, err := LoadVOC(file, nil, 777, 581)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	// target is a quarter of the recorded 3108x2324 image size
	want := box.Box{X1: 252, Y1: 180, X2: 403, Y2: 324}

	if truth.Truths[0].Box != want {
		t.Errorf("expected box %v, got %v", want, truth.Truths[0].Box)
	}
}

func TestLoadVOCRejectsUnknownClass(t *testing.T) {

	file := writeFile(t, "plant001.xml", vocFixture)

	if _, err := LoadVOC(file, []string{"weed"}, 0, 0); err == nil {
		t.Error("expected error for unknown class name")
	}
}

func TestLoadVOCDir(t *testing.T) {

	dir := t.TempDir()

	second := `<annotation>
	<filename>b.png</filename>
	<object>
		<name>plant</name>
		<bndbox>
			<xmin>10</xmin><ymin>10</ymin><xmax>20</xmax><ymax>20</ymax>
		</bndbox>
	</object>
</annotation>`

	if err := os.WriteFile(filepath.Join(dir, "b.xml"),
		[]byte(second), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "a.xml"),
		[]byte(vocFixture), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	// non-annotation files are skipped
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"),
		[]byte("ignore"), 0644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}

	images, err := LoadVOCDir(dir, []string{"plant"}, 0, 0)

	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if len(images) != 2 {
		t.Fatalf("expected 2 images, got %d", len(images))
	}

	// results follow file name order
	if images[0].ID != "ara2013_plant001_rgb.png" || images[1].ID != "b.png" {
		t.Errorf("unexpected image order: %s, %s",
			images[0].ID, images[1].ID)
	}
}
