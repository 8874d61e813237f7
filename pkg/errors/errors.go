package errors

import (
	"errors"
	"fmt"
)

// Common error types
var (
	// Inventory errors
	ErrConfigUnreadable = errors.New("cannot read config file")
	ErrConfigInvalid    = errors.New("invalid config JSON")
	ErrNoInbounds       = errors.New("no inbounds field in config")
	ErrNoSocksInbounds  = errors.New("no socks inbounds found")
	ErrNoMatchingNodes  = errors.New("no socks nodes match the given patterns")
	ErrPatternInvalid   = errors.New("invalid filter pattern")

	// Probe errors
	ErrSizeTooLarge = errors.New("size too large (>1GB not supported)")
)

// InventoryError represents a failure to load the endpoint inventory
type InventoryError struct {
	Path string
	Err  error
}

func (e *InventoryError) Error() string {
	return fmt.Sprintf("inventory '%s': %v", e.Path, e.Err)
}

func (e *InventoryError) Unwrap() error {
	return e.Err
}

