package yologrid

import (
	"fmt"

	"gorgonia.org/tensor"
)

// LabelTensor wraps a flat label buffer for one image as a shaped dense
// tensor of (GridCells, LabelVecSize), for handoff to a dataflow-graph
// training collaborator. The tensor shares the buffer's backing memory.
func (c *Config) LabelTensor(buf []float32) (*tensor.Dense, error) {

	if len(buf) != c.LabelTensorSize() {
		return nil, fmt.Errorf("label buffer has %d elements, expected %d",
			len(buf), c.LabelTensorSize())
	}

	return tensor.New(
		tensor.WithShape(c.GridCells(), c.LabelVecSize()),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(buf),
	), nil
}

// PredictionTensor wraps a flat prediction buffer for one image as a shaped
// dense tensor of (GridCells, PredVecSize). The tensor shares the buffer's
// backing memory.
func (c *Config) PredictionTensor(buf []float32) (*tensor.Dense, error) {

	if len(buf) != c.PredTensorSize() {
		return nil, fmt.Errorf("prediction buffer has %d elements, expected %d",
			len(buf), c.PredTensorSize())
	}

	return tensor.New(
		tensor.WithShape(c.GridCells(), c.PredVecSize()),
		tensor.Of(tensor.Float32),
		tensor.WithBacking(buf),
	), nil
}

// PredictionBuffer extracts the flat float32 buffer from a prediction
// tensor produced by the network forward pass. The tensor must be Float32
// with PredTensorSize elements, its shape may be any arrangement of the
// per-image output volume.
func (c *Config) PredictionBuffer(t *tensor.Dense) ([]float32, error) {

	buf, ok := t.Data().([]float32)

	if !ok {
		return nil, fmt.Errorf("prediction tensor is %v, expected float32",
			t.Dtype())
	}

	if len(buf) != c.PredTensorSize() {
		return nil, fmt.Errorf("prediction tensor has %d elements, expected %d",
			len(buf), c.PredTensorSize())
	}

	return buf, nil
}
