package indicator

import (
	"testing"

	"github.com/mohamedkhairy/ta-engine/pkg/dec"
)

func TestCCI_ExactValue(t *testing.T) {
	cci, err := NewCCI(CCIOptions{Period: 3})
	if err != nil {
		t.Fatalf("NewCCI failed: %v", err)
	}
	// Flat bars make the typical price equal the close. Window 14/20/26 has
	// mean 20 and mean absolute deviation 4, so the last CCI is
	// (26-20)/(0.015*4) = 100.
	results, err := feed(cci, closeBars("14", "20", "26"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if !results[0].Value.Equal(dec.Hundred) {
		t.Errorf("expected CCI 100, got %s", results[0].Value)
	}
}

func TestCCI_ZeroDeviationIsZero(t *testing.T) {
	cci, _ := NewCCI(CCIOptions{Period: 3})
	results, err := feed(cci, closeBars("50", "50", "50", "50"))
	if err != nil {
		t.Fatalf("feed failed: %v", err)
	}
	for i, res := range results {
		if !res.Value.IsZero() {
			t.Errorf("index %d: expected 0 when deviation collapses, got %s", i, res.Value)
		}
	}
}

func TestCCI_DefaultConstant(t *testing.T) {
	cci, err := NewCCI(CCIOptions{Period: 20})
	if err != nil {
		t.Fatalf("NewCCI failed: %v", err)
	}
	if cci.Name() != "cci_20" {
		t.Errorf("unexpected name %q", cci.Name())
	}
}
