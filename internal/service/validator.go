package service

import (
	"errors"

	"metalpriceservice/internal/rates"
)

// ErrUnsupportedCurrency is returned when a currency is not in the supported list.
var ErrUnsupportedCurrency = errors.New("unsupported currency")

// Validator checks base currency choices.
type Validator interface {
	Validate(code string) error
	IsSupported(code string) bool
}

type validator struct {
	supported map[rates.Code]struct{}
}

// NewValidator creates a validator accepting the given codes, or
// rates.PopularCurrencies when none are given.
func NewValidator(codes ...rates.Code) Validator {
	if len(codes) == 0 {
		codes = rates.PopularCurrencies
	}
	supported := make(map[rates.Code]struct{}, len(codes))
	for _, c := range codes {
		supported[c] = struct{}{}
	}
	return &validator{supported: supported}
}

// Validate checks the code format and that it is supported. Codes are
// compared exactly.
func (v *validator) Validate(code string) error {
	if !IsValidCurrencyCode(code) {
		return ErrInvalidCurrencyFormat
	}
	if !v.IsSupported(code) {
		return ErrUnsupportedCurrency
	}
	return nil
}

// IsSupported returns true if the currency code is supported.
func (v *validator) IsSupported(code string) bool {
	_, ok := v.supported[rates.Code(code)]
	return ok
}
