package api

import (
	"errors"
	"net/http"

	"metalpriceservice/internal/service"
)

// PreferencesRequest represents a preferences update. Omitted fields are kept.
type PreferencesRequest struct {
	APIKey       *string `json:"api_key,omitempty" validate:"omitempty,max=256" example:"your-metals-api-key"`
	BaseCurrency *string `json:"base_currency,omitempty" validate:"omitempty,len=3,alpha,uppercase" example:"INR"`
}

// PreferencesResponse represents the stored preferences
type PreferencesResponse struct {
	BaseCurrency string `json:"base_currency" example:"USD"`
	HasAPIKey    bool   `json:"has_api_key" example:"true"`
	APIKey       string `json:"api_key,omitempty" example:"************abcd"`
}

func preferencesResponse(v *service.PreferencesView) PreferencesResponse {
	return PreferencesResponse{
		BaseCurrency: v.BaseCurrency,
		HasAPIKey:    v.HasAPIKey,
		APIKey:       v.MaskedAPIKey,
	}
}

// HandleGetPreferences godoc
// @Summary Get preferences
// @Description Returns the preferred base currency and whether an API key is stored. The key itself is masked.
// @Tags preferences
// @Produce json
// @Success 200 {object} PreferencesResponse
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /preferences [get]
func HandleGetPreferences(svc service.PriceServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.GetPreferences(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "Internal error")
			return
		}
		writeJSON(w, http.StatusOK, preferencesResponse(v))
	}
}

// HandleUpdatePreferences godoc
// @Summary Update preferences
// @Description Stores the API key and/or preferred base currency. An empty api_key clears the stored key.
// @Tags preferences
// @Accept json
// @Produce json
// @Param request body PreferencesRequest true "Fields to change"
// @Success 200 {object} PreferencesResponse
// @Failure 400 {object} ErrorResponse "Invalid or unsupported base currency"
// @Failure 500 {object} ErrorResponse "Internal error"
// @Router /preferences [put]
func HandleUpdatePreferences(svc service.PriceServiceInterface) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PreferencesRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, http.StatusBadRequest, validationMessage(err))
			return
		}

		v, err := svc.UpdatePreferences(r.Context(), service.PreferencesUpdate{
			APIKey:       req.APIKey,
			BaseCurrency: req.BaseCurrency,
		})
		if err != nil {
			switch {
			case errors.Is(err, service.ErrInvalidCurrencyFormat), errors.Is(err, service.ErrUnsupportedCurrency):
				writeError(w, http.StatusBadRequest, err.Error())
			default:
				writeError(w, http.StatusInternalServerError, "Internal error")
			}
			return
		}
		writeJSON(w, http.StatusOK, preferencesResponse(v))
	}
}
