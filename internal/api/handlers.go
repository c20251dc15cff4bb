package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/mohamedkhairy/ta-engine/pkg/indicator"
	"github.com/mohamedkhairy/ta-engine/pkg/logger"
	"github.com/mohamedkhairy/ta-engine/pkg/series"
)

// IndicatorHandler serves batch calculations and the indicator catalog.
type IndicatorHandler struct {
	maxBars int
}

// NewIndicatorHandler creates a handler. maxBars caps the number of bars a
// single calculation request may carry; zero means no cap.
func NewIndicatorHandler(maxBars int) *IndicatorHandler {
	return &IndicatorHandler{maxBars: maxBars}
}

// CalculateRequest is the body of POST /api/v1/indicators/{name}/calculate.
// Either bars or prices must be set; prices is a bare close sequence for
// single-price indicators.
type CalculateRequest struct {
	Bars    []series.Bar      `json:"bars,omitempty"`
	Prices  []json.Number     `json:"prices,omitempty"`
	Options indicator.Options `json:"options,omitempty"`
}

// CalculateResponse carries the emitted results plus echo of the request
// shape.
type CalculateResponse struct {
	Indicator string          `json:"indicator"`
	Count     int             `json:"count"`
	Results   []series.Result `json:"results"`
}

// ListIndicators handles GET /api/v1/indicators
func (h *IndicatorHandler) ListIndicators(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"indicators": indicator.Catalog(),
		"count":      len(indicator.Names()),
	})
}

// GetIndicator handles GET /api/v1/indicators/{name}
func (h *IndicatorHandler) GetIndicator(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	for _, desc := range indicator.Catalog() {
		if desc.Name == name {
			respondWithJSON(w, http.StatusOK, desc)
			return
		}
	}
	respondWithError(w, http.StatusNotFound, "Indicator not found")
}

// Calculate handles POST /api/v1/indicators/{name}/calculate
func (h *IndicatorHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	bars, err := h.requestBars(&req)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	results, err := indicator.Calculate(name, bars, req.Options)
	if err != nil {
		code, msg := mapIndicatorError(err)
		respondWithError(w, code, msg)
		return
	}

	logger.Debug("Batch calculation served",
		logger.String("indicator", name),
		logger.Int("bars", len(bars)),
		logger.Int("results", len(results)),
	)

	respondWithJSON(w, http.StatusOK, CalculateResponse{
		Indicator: name,
		Count:     len(results),
		Results:   results,
	})
}

// ValidateParams handles POST /api/v1/indicators/{name}/validate
func (h *IndicatorHandler) ValidateParams(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	var opts indicator.Options
	if err := json.NewDecoder(r.Body).Decode(&opts); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := indicator.ValidateParams(name, opts); err != nil {
		code, msg := mapIndicatorError(err)
		respondWithError(w, code, msg)
		return
	}

	required, err := indicator.RequiredPeriods(name, opts)
	if err != nil {
		code, msg := mapIndicatorError(err)
		respondWithError(w, code, msg)
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"valid":            true,
		"required_periods": required,
	})
}

// requestBars normalizes the request body into a bar slice.
func (h *IndicatorHandler) requestBars(req *CalculateRequest) ([]series.Bar, error) {
	if len(req.Bars) > 0 && len(req.Prices) > 0 {
		return nil, errors.New("bars and prices are mutually exclusive")
	}

	var bars []series.Bar
	switch {
	case len(req.Bars) > 0:
		bars = req.Bars
	case len(req.Prices) > 0:
		converted, err := pricesToBars(req.Prices)
		if err != nil {
			return nil, err
		}
		bars = converted
	default:
		return nil, errors.New("request carries no bars or prices")
	}

	if h.maxBars > 0 && len(bars) > h.maxBars {
		return nil, errors.New("request exceeds the bar limit")
	}

	for i := range bars {
		if err := bars[i].Validate(); err != nil {
			return nil, err
		}
	}
	return bars, nil
}

// pricesToBars converts a bare close sequence into price-only bars.
func pricesToBars(prices []json.Number) ([]series.Bar, error) {
	values := make([]decimal.Decimal, len(prices))
	for i, p := range prices {
		v, err := decimal.NewFromString(p.String())
		if err != nil {
			return nil, fmt.Errorf("price at index %d is not a number: %w", i, err)
		}
		values[i] = v
	}
	return series.PriceBars(values), nil
}

// mapIndicatorError translates the library's error taxonomy to HTTP codes.
func mapIndicatorError(err error) (int, string) {
	var paramsErr *series.InvalidParamsError
	var dataErr *series.InsufficientDataError
	var formatErr *series.InvalidDataFormatError
	var validationErr *series.ValidationError

	switch {
	case errors.As(err, &paramsErr),
		errors.As(err, &formatErr),
		errors.As(err, &validationErr):
		return http.StatusBadRequest, err.Error()
	case errors.As(err, &dataErr):
		return http.StatusUnprocessableEntity, err.Error()
	default:
		logger.Error("Calculation failed", logger.ErrorField(err))
		logger.ErrorsTotal.WithLabelValues("api", "calculation").Inc()
		return http.StatusInternalServerError, "Calculation failed"
	}
}
