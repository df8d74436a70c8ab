// pkg/store/errors.go
package store

import (
	"context"
	"errors"
	"fmt"
	"net"

	mssql "github.com/microsoft/go-mssqldb"
)

// ErrSchemaMissing indicates a required schema object (ledger table,
// uniqueness constraint) does not exist. Surfaced distinctly so the caller
// can provision and retry; never auto-provisioned inside the merge path.
var ErrSchemaMissing = errors.New("ledger schema objects missing")

// TransientError wraps connectivity and timeout failures against the store.
// The batch failed as a whole; retrying is the caller's decision.
type TransientError struct {
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient store error: %v", e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a connectivity/timeout failure.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// SQL Server error numbers that mean a schema object is absent.
const (
	sqlErrInvalidObjectName = 208  // table or view not found
	sqlErrProcNotFound      = 2812 // stored procedure not found
)

// classify maps a driver error onto the store error taxonomy. Anything not
// recognized as schema-missing or transient passes through unchanged.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var sqlErr mssql.Error
	if errors.As(err, &sqlErr) {
		switch sqlErr.Number {
		case sqlErrInvalidObjectName, sqlErrProcNotFound:
			return fmt.Errorf("%w: %v", ErrSchemaMissing, err)
		}
		return err
	}

	var netErr net.Error
	if errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) {
		return &TransientError{Err: err}
	}

	return err
}
