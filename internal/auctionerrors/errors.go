package auctionerrors

import "errors"

// Repository-level errors
var (
	ErrProductNotFound = errors.New("product not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrNoBids          = errors.New("no bids found for product")
	ErrEmailTaken      = errors.New("email already registered")
)

// business logic errors
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrAuctionClosed     = errors.New("auction has ended")
	ErrBidTooLow         = errors.New("bid amount too low")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidDeposit    = errors.New("deposit amount must be positive")
)

// auth errors
var (
	ErrUnauthorized       = errors.New("authentication required")
	ErrForbidden          = errors.New("admin access required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)
