// Package perf provides an opt-in timing hook for expensive fit/predict
// calls, enabled by setting the TSFORECAST_PERF_LOG environment variable.
// Kept on the standard library only, deliberately: the engine core is a
// library consumed by a host process and must not pull in a logging
// framework for its own sake, the way the teacher never uses one outside
// plain fmt.Print* for CLI reporting.
package perf

import (
	"log"
	"os"
	"sync"
	"time"
)

var (
	once    sync.Once
	enabled bool
)

func initEnabled() {
	enabled = os.Getenv("TSFORECAST_PERF_LOG") != ""
}

// Enabled reports whether perf logging is active for this process.
func Enabled() bool {
	once.Do(initEnabled)
	return enabled
}

// Track times the call to fn under the given component/operation label and
// logs it via the standard logger when perf logging is enabled. The result
// of fn is returned unconditionally; timing has no effect on control flow
// when logging is disabled.
func Track(component, operation string, fn func() error) error {
	once.Do(initEnabled)
	if !enabled {
		return fn()
	}
	start := time.Now()
	err := fn()
	elapsed := time.Since(start)
	if err != nil {
		log.Printf("perf: %s.%s failed after %s: %v", component, operation, elapsed, err)
	} else {
		log.Printf("perf: %s.%s completed in %s", component, operation, elapsed)
	}
	return err
}
