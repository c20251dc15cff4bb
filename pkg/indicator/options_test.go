package indicator

import (
	"errors"
	"math"
	"testing"

	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

func TestDecimalOption_RejectsNonFiniteFloats(t *testing.T) {
	for _, value := range []float64{math.NaN(), math.Inf(1), math.Inf(-1)} {
		_, err := Build("bollinger", Options{"multiplier": value})
		if err == nil {
			t.Fatalf("expected error for multiplier %v", value)
		}
		var paramsErr *series.InvalidParamsError
		if !errors.As(err, &paramsErr) {
			t.Fatalf("expected InvalidParamsError for %v, got %T: %v", value, err, err)
		}
		if paramsErr.Param != "multiplier" {
			t.Errorf("expected param multiplier, got %q", paramsErr.Param)
		}
	}
}

func TestDecimalOption_AcceptsFiniteFloat(t *testing.T) {
	s, err := Build("bollinger", Options{"multiplier": 2.5})
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if s.Name() != "bollinger_20" {
		t.Errorf("expected bollinger_20, got %s", s.Name())
	}
}
