package handlers

import (
	"errors"
	"strconv"

	"altyn/internal/money"

	"github.com/go-playground/validator/v10"
)

var errInvalidAmount = errors.New("invalid amount")

var validate = validator.New()

func validateInput(input any) error {
	return validate.Struct(input)
}

func parseAmountMinor(raw string) (int64, error) {
	amount, err := money.ParseMinor(raw)
	if err != nil || amount <= 0 {
		return 0, errInvalidAmount
	}
	return amount, nil
}

func parseInt(raw string, fallback int) int {
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}
