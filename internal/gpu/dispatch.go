package gpu

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Kernel is invoked once per texel.
type Kernel func(x, y int)

// Dispatch runs kernel over a width x height grid. Rows are spread across
// goroutines, at most one per CPU, and Dispatch returns once every row is done.
// The errgroup only bounds concurrency: kernels cannot fail, so Wait always
// returns nil.
func Dispatch(width, height int, kernel Kernel) {
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for y := 0; y < height; y++ {
		g.Go(func() error {
			for x := 0; x < width; x++ {
				kernel(x, y)
			}
			return nil
		})
	}
	_ = g.Wait()
}
