package indicator

import (
	"errors"
	"fmt"
	"testing"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// fixtureBars builds a deterministic 60-bar OHLCV series with both trending
// and mean-reverting stretches, enough to warm every default configuration.
func fixtureBars() []series.Bar {
	bars := make([]series.Bar, 0, 60)
	for i := 0; i < 60; i++ {
		base := 100 + (i*7)%23 - (i*3)%11
		open := fmt.Sprintf("%d", base)
		high := fmt.Sprintf("%d.5", base+2)
		low := fmt.Sprintf("%d.5", base-3)
		close := fmt.Sprintf("%d.25", base+1)
		volume := fmt.Sprintf("%d", 1000+(i*137)%500)
		bars = append(bars, ohlcvBar(i, open, high, low, close, volume))
	}
	return bars
}

func TestBatchMatchesStreaming_AllIndicators(t *testing.T) {
	bars := fixtureBars()
	for _, name := range Names() {
		name := name
		t.Run(name, func(t *testing.T) {
			streamer, err := Build(name, Options{})
			if err != nil {
				t.Fatalf("Build failed: %v", err)
			}
			streamed, err := feed(streamer, bars)
			if err != nil {
				t.Fatalf("feed failed: %v", err)
			}
			if len(streamed) == 0 {
				t.Fatal("fixture too short to warm this indicator")
			}

			batch, err := Calculate(name, bars, Options{})
			if err != nil {
				t.Fatalf("Calculate failed: %v", err)
			}
			if len(batch) != len(streamed) {
				t.Fatalf("batch emitted %d results, streaming %d", len(batch), len(streamed))
			}
			for i := range batch {
				assertResultsEqual(t, i, batch[i], streamed[i])
			}
		})
	}
}

func assertResultsEqual(t *testing.T, i int, a, b series.Result) {
	t.Helper()
	if !a.Timestamp.Equal(b.Timestamp) {
		t.Fatalf("index %d: timestamps differ: %s vs %s", i, a.Timestamp, b.Timestamp)
	}
	if !a.Value.Equal(b.Value) {
		t.Fatalf("index %d: values differ: %s vs %s", i, a.Value, b.Value)
	}
	if len(a.Values) != len(b.Values) {
		t.Fatalf("index %d: value maps differ in size: %d vs %d", i, len(a.Values), len(b.Values))
	}
	for k, av := range a.Values {
		bv, ok := b.Values[k]
		if !ok {
			t.Fatalf("index %d: field %q missing from streamed result", i, k)
		}
		if !av.Equal(bv) {
			t.Fatalf("index %d: field %q differs: %s vs %s", i, k, av, bv)
		}
	}
}

func TestStreamerReset_ReplaysIdentically(t *testing.T) {
	bars := fixtureBars()
	for _, name := range Names() {
		streamer, err := Build(name, Options{})
		if err != nil {
			t.Fatalf("%s: Build failed: %v", name, err)
		}
		first, err := feed(streamer, bars)
		if err != nil {
			t.Fatalf("%s: feed failed: %v", name, err)
		}
		streamer.Reset()
		if streamer.Count() != 0 || streamer.IsReady() {
			t.Fatalf("%s: reset must clear count and readiness", name)
		}
		second, err := feed(streamer, bars)
		if err != nil {
			t.Fatalf("%s: replay failed: %v", name, err)
		}
		if len(first) != len(second) {
			t.Fatalf("%s: replay emitted %d results, first run %d", name, len(second), len(first))
		}
		for i := range first {
			assertResultsEqual(t, i, first[i], second[i])
		}
	}
}

func TestCalculate_InsufficientData(t *testing.T) {
	bars := fixtureBars()[:5]
	_, err := Calculate("rsi", bars, Options{})
	var ierr *series.InsufficientDataError
	if !errors.As(err, &ierr) {
		t.Fatalf("expected InsufficientDataError, got %v", err)
	}
	if ierr.Required != 15 || ierr.Provided != 5 {
		t.Errorf("expected required 15 provided 5, got %+v", ierr)
	}
}
