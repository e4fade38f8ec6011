package suggest

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

var ErrUnknownAggregator = errors.New("suggest: unknown aggregator")

// Aggregator reduces a set of signed completion deltas to one representative delta.
type Aggregator func(deltas []time.Duration) time.Duration

func Mean(deltas []time.Duration) time.Duration {
	if len(deltas) == 0 {
		return 0
	}
	var sum float64
	for _, d := range deltas {
		sum += float64(d)
	}
	return time.Duration(sum / float64(len(deltas)))
}

func Median(deltas []time.Duration) time.Duration {
	if len(deltas) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), deltas...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// AggregatorByName resolves "mean" or "median".
func AggregatorByName(name string) (Aggregator, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "mean":
		return Mean, nil
	case "median":
		return Median, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAggregator, name)
	}
}

// stdev is the population standard deviation of deltas.
func stdev(deltas []time.Duration) time.Duration {
	if len(deltas) < 2 {
		return 0
	}
	mean := float64(Mean(deltas))
	var sq float64
	for _, d := range deltas {
		diff := float64(d) - mean
		sq += diff * diff
	}
	return time.Duration(math.Sqrt(sq / float64(len(deltas))))
}
