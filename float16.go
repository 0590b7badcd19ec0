package yologrid

import "github.com/x448/float16"

var f16LookupTable [65536]float32

func init() {
	// precompute float16 lookup table for faster conversion to float32
	for i := range f16LookupTable {
		f16 := float16.Frombits(uint16(i))
		f16LookupTable[i] = f16.Float32()
	}
}

// Float16ToFloat32 converts a raw float16 bit pattern to a float32 value
func Float16ToFloat32(bits uint16) float32 {
	return f16LookupTable[bits]
}

// Float16BufferToFloat32 converts a buffer of raw float16 bit patterns, as
// produced by inference runtimes emitting fp16 output tensors, into a
// float32 slice suitable for decoding
func Float16BufferToFloat32(buf []uint16) []float32 {

	out := make([]float32, len(buf))

	for i, bits := range buf {
		out[i] = f16LookupTable[bits]
	}

	return out
}
