package postprocess

import (
	"sync"

	yologrid "github.com/cropvision/go-yologrid"
)

// Pool is a simple detector pool for running the detection filter over
// many images in parallel. Each Detector carries its own scratch buffers,
// so a goroutine takes one with Get, runs it, and hands it back with
// Return.
type Pool struct {
	// pool of detectors
	detectors chan *Detector
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new detector pool
func NewPool(size int, cfg *yologrid.Config) *Pool {

	p := &Pool{
		detectors: make(chan *Detector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		p.Return(NewDetector(cfg))
	}

	return p
}

// Get a detector from the pool, blocking until one is available
func (p *Pool) Get() *Detector {
	return <-p.detectors
}

// Return a detector to the pool
func (p *Pool) Return(d *Detector) {
	select {
	case p.detectors <- d:
	default:
		// pool is full or closed
	}
}

// Size returns the number of detectors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Close the pool and discard the detectors in it
func (p *Pool) Close() {
	p.close.Do(func() {
		close(p.detectors)

		for range p.detectors {
		}
	})
}
