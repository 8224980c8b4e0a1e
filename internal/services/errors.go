package services

import "errors"

var (
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInsufficientFunds    = errors.New("insufficient funds")
	ErrSelfTransfer         = errors.New("cannot transfer to self")
	ErrTokenTransferBlocked = errors.New("token transfers between users are not allowed")
	ErrUnauthorized         = errors.New("admin privileges required")
	ErrNothingToDistribute  = errors.New("nothing to distribute")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidPaymentType   = errors.New("invalid payment type")
	ErrUnknownCurrency      = errors.New("unknown currency")
)
