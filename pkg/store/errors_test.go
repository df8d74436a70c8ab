package store

import (
	"context"
	"errors"
	"fmt"
	"testing"

	mssql "github.com/microsoft/go-mssqldb"
	"github.com/stretchr/testify/assert"
)

func TestClassify_SchemaMissing(t *testing.T) {
	for _, number := range []int32{208, 2812} {
		err := classify(fmt.Errorf("query failed: %w", mssql.Error{Number: number}))
		assert.ErrorIs(t, err, ErrSchemaMissing, "error number %d", number)
		assert.False(t, IsTransient(err))
	}
}

func TestClassify_OtherSQLErrorsPassThrough(t *testing.T) {
	orig := mssql.Error{Number: 2627} // unique constraint violation
	err := classify(fmt.Errorf("merge failed: %w", orig))

	assert.NotErrorIs(t, err, ErrSchemaMissing)
	assert.False(t, IsTransient(err))

	var sqlErr mssql.Error
	assert.True(t, errors.As(err, &sqlErr))
}

func TestClassify_DeadlineIsTransient(t *testing.T) {
	err := classify(fmt.Errorf("query: %w", context.DeadlineExceeded))
	assert.True(t, IsTransient(err))
}

func TestClassify_NilStaysNil(t *testing.T) {
	assert.NoError(t, classify(nil))
}

func TestTransientError_Unwraps(t *testing.T) {
	inner := errors.New("connection reset")
	err := &TransientError{Err: inner}

	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "connection reset")
}
