package util

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// typedError is implemented by the domain errors that know their own label.
type typedError interface {
	ErrorType() string
}

// ClassifyError maps err to a stable error_type label used in batch outcomes,
// logs and metrics. nil maps to "".
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	// 领域错误自带类型
	var typed typedError
	if errors.As(err, &typed) {
		return typed.ErrorType()
	}

	// Context
	if errors.Is(err, context.DeadlineExceeded) {
		return "timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "context_canceled"
	}

	// Database
	if errors.Is(err, pgx.ErrNoRows) {
		return "not_found"
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return "duplicate_key"
		}
		return "storage_error"
	}

	// JSON decode errors（数据格式错误）
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return "json_decode_error"
	}

	// Network
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return "network_timeout"
		}
		return "network_error"
	}

	if strings.Contains(err.Error(), "connection refused") {
		return "network_error"
	}

	return "unknown_error"
}
