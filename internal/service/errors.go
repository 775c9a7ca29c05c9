package service

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrPartialUpdate     = errors.New("update partially applied")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// storeErr separates connection-level store failures from everything else
// so the transport layer can answer 503 for the former. Row-level errors,
// gorm.ErrRecordNotFound included, pass through unchanged.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	var netErr net.Error
	if errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	return err
}
