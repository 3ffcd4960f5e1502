package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// GoroutineCountProbe returns a ProbeFunc that fails when the number of
// goroutines exceeds the threshold. Useful as a liveness probe to catch
// goroutine leaks.
func GoroutineCountProbe(threshold int) ProbeFunc {
	return func(_ context.Context) error {
		if count := runtime.NumGoroutine(); count > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", count, threshold)
		}
		return nil
	}
}
