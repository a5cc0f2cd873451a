package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"metalpriceservice/internal/rates"
	"metalpriceservice/internal/service"
)

// RefreshRequest represents the request body for a price refresh
type RefreshRequest struct {
	Base    string `json:"base,omitempty" validate:"omitempty,len=3,alpha,uppercase" example:"USD"`
	UseMock *bool  `json:"use_mock,omitempty" example:"false"`
}

// RefreshResponse represents the response for an accepted refresh
type RefreshResponse struct {
	RefreshID string `json:"refresh_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Status    string `json:"status" example:"PENDING"`
}

// RefreshStatusResponse represents a refresh and its outcome
type RefreshStatusResponse struct {
	RefreshID string             `json:"refresh_id" example:"123e4567-e89b-12d3-a456-426614174000"`
	Base      string             `json:"base" example:"USD"`
	Source    string             `json:"source" example:"live"`
	Status    string             `json:"status" example:"SUCCESS"`
	Timestamp *int64             `json:"timestamp,omitempty" example:"1700000000"`
	Rates     map[string]float64 `json:"rates,omitempty"`
	UpdatedAt *string            `json:"updated_at,omitempty" example:"2025-12-01T10:15:30Z"`
	Error     *string            `json:"error,omitempty" example:"You have not supplied a valid API Access Key."`
}

// MetalPriceResponse is the derived price of one metal
type MetalPriceResponse struct {
	Metal        string   `json:"metal" example:"XAU"`
	Name         string   `json:"name" example:"Gold"`
	Available    bool     `json:"available" example:"true"`
	OuncePrice   *float64 `json:"ounce_price,omitempty" example:"2222.2222"`
	GramPrice    *float64 `json:"gram_price,omitempty" example:"71.4466"`
	OunceDisplay string   `json:"ounce_display,omitempty" example:"2222.22"`
	GramDisplay  string   `json:"gram_display,omitempty" example:"71.45"`
}

// PricesResponse represents the current snapshot with derived metal prices
type PricesResponse struct {
	Base      string               `json:"base" example:"USD"`
	Timestamp int64                `json:"timestamp" example:"1700000000"`
	FetchedAt string               `json:"fetched_at" example:"2023-11-14T22:13:20Z"`
	Metals    []MetalPriceResponse `json:"metals"`
	Rates     map[string]float64   `json:"rates"`
}

// ConvertResponse represents a currency conversion result
type ConvertResponse struct {
	Amount    string  `json:"amount" example:"100"`
	From      string  `json:"from" example:"USD"`
	To        string  `json:"to" example:"INR"`
	Result    float64 `json:"result" example:"8410"`
	Display   string  `json:"display" example:"8410.00"`
	Base      string  `json:"base" example:"USD"`
	Timestamp int64   `json:"timestamp" example:"1700000000"`
}

var metalNames = map[rates.Code]string{
	rates.Gold:   "Gold",
	rates.Silver: "Silver",
}

// HandleRequestRefresh godoc
// @Summary Request a price refresh
// @Description Records a refresh and fetches rates in the background. Returns immediately with a refresh_id. A live refresh requires a stored API key.
// @Tags prices
// @Accept json
// @Produce json
// @Param request body RefreshRequest false "Optional base currency and mock flag"
// @Success 202 {object} RefreshResponse "Refresh accepted"
// @Failure 400 {object} ErrorResponse "Invalid or unsupported base currency"
// @Failure 412 {object} ErrorResponse "API key missing"
// @Failure 429 {object} ErrorResponse "Too many refresh requests"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /prices/refresh [post]
func HandleRequestRefresh(svc service.PriceServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RefreshRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		refreshID, status, err := svc.RequestRefresh(r.Context(), service.RefreshOptions{
			Base:    req.Base,
			UseMock: req.UseMock,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCurrencyFormat), errors.Is(err, service.ErrUnsupportedCurrency):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, service.ErrMissingCredential):
				writeError(w, http.StatusPreconditionFailed, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "Internal error")
			}
			return
		}

		writeJSON(w, http.StatusAccepted, RefreshResponse{RefreshID: refreshID, Status: status})
	}
}

// HandleGetRefresh godoc
// @Summary Get refresh status and result by ID
// @Description Retrieves the status of a refresh. Returns the fetched rates when status is SUCCESS and the provider message when FAILED.
// @Tags prices
// @Produce json
// @Param refresh_id path string true "Refresh ID (UUID)" format(uuid)
// @Success 200 {object} RefreshStatusResponse "Refresh found"
// @Failure 400 {object} ErrorResponse "Invalid refresh_id format"
// @Failure 404 {object} ErrorResponse "Unknown refresh_id"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /prices/refresh/{refresh_id} [get]
func HandleGetRefresh(svc service.PriceServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		refreshID := chi.URLParam(r, "refresh_id")
		if refreshID == "" {
			writeError(w, http.StatusBadRequest, "refresh_id is required")
			return
		}

		res, err := svc.GetRefreshResult(r.Context(), refreshID)
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidRefreshID):
				writeError(w, http.StatusBadRequest, err.Error())
			case errors.Is(err, service.ErrNotFound):
				writeError(w, http.StatusNotFound, "Unknown refresh_id")
			default:
				writeError(w, http.StatusInternalServerError, "Internal error")
			}
			return
		}

		resp := RefreshStatusResponse{
			RefreshID: res.ID,
			Base:      res.Base,
			Source:    res.Source,
			Status:    res.Status,
			UpdatedAt: res.UpdatedAt,
			Error:     res.ErrorMsg,
		}
		if res.Snapshot != nil {
			ts := res.Snapshot.Timestamp
			resp.Timestamp = &ts
			resp.Rates = ratesMap(res.Snapshot.Rates)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// HandleGetPrices godoc
// @Summary Current metal prices
// @Description Returns the current rate snapshot with per-ounce and per-gram prices for gold and silver in the base currency. Metals without a usable rate are marked unavailable. Does not trigger a fetch.
// @Tags prices
// @Produce json
// @Success 200 {object} PricesResponse "Current prices"
// @Failure 404 {object} ErrorResponse "No snapshot, or the last fetch failed"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /prices [get]
func HandleGetPrices(svc service.PriceServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := svc.CurrentPrices(r.Context())
		if err != nil {
			writeSnapshotError(w, err)
			return
		}

		metals := make([]MetalPriceResponse, 0, len(rates.TrackedMetals))
		for _, metal := range rates.TrackedMetals {
			m := MetalPriceResponse{Metal: string(metal), Name: metalNames[metal]}
			ounce, okOunce := view.Metals.Ounce(metal)
			gram, okGram := view.Metals.Gram(metal)
			if okOunce && okGram {
				m.Available = true
				m.OuncePrice = &ounce
				m.GramPrice = &gram
				m.OunceDisplay = formatMoney(ounce)
				m.GramDisplay = formatMoney(gram)
			}
			metals = append(metals, m)
		}

		writeJSON(w, http.StatusOK, PricesResponse{
			Base:      string(view.Snapshot.Base),
			Timestamp: view.Snapshot.Timestamp,
			FetchedAt: time.Unix(view.Snapshot.Timestamp, 0).UTC().Format(time.RFC3339),
			Metals:    metals,
			Rates:     ratesMap(view.Snapshot.Rates),
		})
	}
}

// HandleConvert godoc
// @Summary Convert an amount between currencies
// @Description Converts amount from one code to another through the base currency of the current snapshot. The leading decimal number of amount is used. The result is 0 when there is none or when a code is missing from the snapshot.
// @Tags prices
// @Produce json
// @Param amount query string false "Amount as entered" default(1)
// @Param from query string true "Source code"
// @Param to query string true "Target code"
// @Success 200 {object} ConvertResponse "Conversion result"
// @Failure 400 {object} ErrorResponse "Missing from/to"
// @Failure 404 {object} ErrorResponse "No snapshot, or the last fetch failed"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /convert [get]
func HandleConvert(svc service.PriceServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		from, to := q.Get("from"), q.Get("to")
		if from == "" || to == "" {
			writeError(w, http.StatusBadRequest, "from and to query params are required")
			return
		}

		res, err := svc.Convert(r.Context(), service.ConversionRequest{
			Amount: q.Get("amount"),
			From:   rates.Code(from),
			To:     rates.Code(to),
		})
		if err != nil {
			writeSnapshotError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, ConvertResponse{
			Amount:    res.Amount,
			From:      string(res.From),
			To:        string(res.To),
			Result:    res.Result,
			Display:   formatMoney(res.Result),
			Base:      string(res.Base),
			Timestamp: res.Timestamp,
		})
	}
}

// writeSnapshotError reports a missing snapshot with its message, which is
// the provider's message when the last fetch failed.
func writeSnapshotError(w http.ResponseWriter, err error) {
	if errors.Is(err, service.ErrNoSnapshot) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, "Internal error")
}

func ratesMap(in map[rates.Code]float64) map[string]float64 {
	out := make(map[string]float64, len(in))
	for code, r := range in {
		out[string(code)] = r
	}
	return out
}
