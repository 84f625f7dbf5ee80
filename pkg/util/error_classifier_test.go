package util

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

type labelled struct{}

func (labelled) Error() string     { return "labelled" }
func (labelled) ErrorType() string { return "adapter_error" }

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyError(t *testing.T) {
	var syntaxErr error
	var v map[string]any
	syntaxErr = json.Unmarshal([]byte("{nope"), &v)

	cases := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"typed", fmt.Errorf("wrap: %w", labelled{}), "adapter_error"},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), "timeout"},
		{"canceled", context.Canceled, "context_canceled"},
		{"no rows", pgx.ErrNoRows, "not_found"},
		{"unique", &pgconn.PgError{Code: "23505"}, "duplicate_key"},
		{"pg other", &pgconn.PgError{Code: "42P01"}, "storage_error"},
		{"json", syntaxErr, "json_decode_error"},
		{"net timeout", &net.OpError{Op: "dial", Err: timeoutErr{}}, "network_timeout"},
		{"plain", errors.New("boom"), "unknown_error"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ClassifyError(tc.err))
		})
	}
}
