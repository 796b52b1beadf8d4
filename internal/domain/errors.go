package domain

import "errors"

var (
	// ErrInvalidConfiguration is returned before any sampling when a
	// configuration violates policy_count >= 1, simulated_years >= 1 or std_dev >= 0
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrEmptySeries is returned when statistics are requested on a zero-length series
	ErrEmptySeries = errors.New("empty series")

	// ErrUnknownPortfolioKind is returned for kinds outside Life, Health and Combined
	ErrUnknownPortfolioKind = errors.New("unknown portfolio kind")
)
