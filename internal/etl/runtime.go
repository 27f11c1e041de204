package etl

import (
	"os"
	"strconv"

	"vlingest/internal/config"
)

// runtimeConfig holds the resolved loader sizes for a run. Values come from
// the pipeline with environment fallbacks.
type runtimeConfig struct {
	batchSize  int
	bufferSize int
}

func newRuntimeConfig(spec config.Pipeline) runtimeConfig {
	return runtimeConfig{
		batchSize:  pickInt(spec.Runtime.BatchSize, getenvInt("VLINGEST_BATCH_SIZE", 5000)),
		bufferSize: pickInt(spec.Runtime.ChannelBuffer, getenvInt("VLINGEST_CH_BUFFER", 1024)),
	}
}

// getenvInt reads an int from environment, returning def when unset/invalid.
func getenvInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// pickInt chooses the first positive value 'a', otherwise returns 'b'.
func pickInt(a, b int) int {
	if a > 0 {
		return a
	}
	return b
}
