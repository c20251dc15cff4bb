// Package indicator implements streaming and batch technical indicators over
// decimal OHLCV series. Every indicator is a Streamer: a caller-owned state
// value fed one bar at a time, silent until its warm-up window fills and
// emitting one result per bar thereafter. Batch calculation replays a fresh
// streamer over the input, so batch and streaming values agree by
// construction.
package indicator

import (
	"errors"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// Category groups indicators for the dispatch catalog.
type Category string

const (
	CategoryTrend      Category = "trend"
	CategoryMomentum   Category = "momentum"
	CategoryVolatility Category = "volatility"
	CategoryVolume     Category = "volume"
)

// Indicator is the metadata surface every module exposes.
type Indicator interface {
	// Name returns the instance name including parameters (e.g. "sma_20").
	Name() string

	// RequiredPeriods returns the minimum number of input points needed to
	// emit at least one value. Pure function of the options.
	RequiredPeriods() int

	// Parameters describes the recognized options and their defaults.
	Parameters() []Param

	// Outputs describes the shape of emitted results.
	Outputs() OutputSpec
}

// Batch is the full-series capability. Calculate is pure: it never touches
// streaming state and is all-or-nothing on error.
type Batch interface {
	Indicator
	Calculate(bars []series.Bar) ([]series.Result, error)
}

// Streamer is the incremental capability. Update returns (nil, nil) while the
// warm-up window is filling, then one result per call. A failed Update leaves
// the state exactly as it was; the caller may retry with corrected input.
type Streamer interface {
	Indicator
	Update(bar series.Bar) (*series.Result, error)
	Count() int
	IsReady() bool
	Reset()
}

// runBatch drives batch calculation through a fresh streamer. The caller
// passes a clone so the live streaming state is never disturbed.
func runBatch(s Streamer, bars []series.Bar) ([]series.Result, error) {
	required := s.RequiredPeriods()
	if len(bars) < required {
		return nil, &series.InsufficientDataError{Required: required, Provided: len(bars)}
	}

	results := make([]series.Result, 0, len(bars)-required+1)
	for i := range bars {
		res, err := s.Update(bars[i])
		if err != nil {
			var fmtErr *series.InvalidDataFormatError
			if errors.As(err, &fmtErr) && fmtErr.Index < 0 {
				return nil, &series.InvalidDataFormatError{
					Expected: fmtErr.Expected,
					Received: fmtErr.Received,
					Index:    i,
				}
			}
			return nil, err
		}
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, nil
}

// fullBarError is the shape error returned when an OHLC-only computation is
// fed a price-only point.
func fullBarError() error {
	return &series.InvalidDataFormatError{
		Expected: "OHLCV bar",
		Received: "price-only point",
		Index:    -1,
	}
}

// volumeBarError is the shape error for volume indicators fed price-only data.
func volumeBarError() error {
	return &series.InvalidDataFormatError{
		Expected: "bar with volume",
		Received: "price-only point",
		Index:    -1,
	}
}
