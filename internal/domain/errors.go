package domain

import "errors"

var (
	ErrNotFound               = errors.New("not found")
	ErrInvalidQuote           = errors.New("invalid quote")
	ErrInvalidAmount          = errors.New("amount must be greater than zero")
	ErrLiveTradingUnavailable = errors.New("live trading unavailable")
	ErrUnauthorized           = errors.New("unauthorized")
	ErrLockHeld               = errors.New("lock already held")
)

// LiveTradingHint accompanies ErrLiveTradingUnavailable in API responses.
// The live path performs no venue calls; refusing here is a safety stop, not
// a missing credential check to bypass.
const LiveTradingHint = "live trading is not supported; set simulationMode to true"
