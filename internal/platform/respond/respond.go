// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Package respond provides HTTP response helpers used by all API handlers.
//
// # Envelope
//
//	success: {"success": true,  "message": "...", "data": ..., "meta": ...}
//	failure: {"success": false, "message": "...", "errors": {...}}
//
// Every handler writes through this package so clients can rely on a single
// shape regardless of the endpoint.
package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/getsentry/sentry-go"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/ctxutil"
	"github.com/taibuivan/lessons/pkg/pagination"
)

// DefaultMessage is used when a handler has nothing more specific to say.
const DefaultMessage = "OK"

// SuccessEnvelope is the JSON envelope for successful responses.
type SuccessEnvelope struct {
	Success bool             `json:"success"`
	Message string           `json:"message"`
	Data    interface{}      `json:"data,omitempty"`
	Meta    *pagination.Meta `json:"meta,omitempty"`
}

// ErrorDetail is the "errors" member of a failure envelope.
type ErrorDetail struct {
	Code    string              `json:"code"`
	Details []apperr.FieldError `json:"details,omitempty"`
	// Cause and Stack are only populated outside production.
	Cause string `json:"cause,omitempty"`
	Stack string `json:"stack,omitempty"`
}

// ErrorEnvelope is the JSON envelope for error responses.
type ErrorEnvelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Errors  ErrorDetail `json:"errors"`
}

// JSON writes a JSON response with the given status code.
func JSON(writer http.ResponseWriter, statusCode int, payload interface{}) {
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	_ = json.NewEncoder(writer).Encode(payload)
}

// OK writes a 200 response with data in the success envelope.
func OK(writer http.ResponseWriter, data interface{}) {
	Message(writer, http.StatusOK, DefaultMessage, data)
}

// Message writes a success envelope with an explicit status and message.
func Message(writer http.ResponseWriter, statusCode int, message string, data interface{}) {
	JSON(writer, statusCode, SuccessEnvelope{Success: true, Message: message, Data: data})
}

// Created writes a 201 response.
func Created(writer http.ResponseWriter, message string, data interface{}) {
	Message(writer, http.StatusCreated, message, data)
}

// Paginated writes a 200 response with a list and its metadata block.
func Paginated(writer http.ResponseWriter, data interface{}, metadata pagination.Meta) {
	JSON(writer, http.StatusOK, SuccessEnvelope{
		Success: true,
		Message: DefaultMessage,
		Data:    data,
		Meta:    &metadata,
	})
}

// NoContent writes a 204 No Content response.
func NoContent(writer http.ResponseWriter) {
	writer.WriteHeader(http.StatusNoContent)
}

// Error converts any Go error into a standardized JSON API error response.
func Error(writer http.ResponseWriter, request *http.Request, err error) {
	ErrorWithStack(writer, request, err, "")
}

// ErrorWithStack is [Error] with a captured stack trace, which is exposed
// only when the request is in debug mode.
func ErrorWithStack(writer http.ResponseWriter, request *http.Request, err error, stack string) {
	ctx := request.Context()
	logger := ctxutil.GetLogger(ctx)

	var appError *apperr.AppError
	if !errors.As(err, &appError) {
		logger.ErrorContext(ctx, "unhandled_error_swallowed",
			slog.String("error", err.Error()),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
		)
		appError = apperr.Internal(err)
	}

	// Always log 5xx errors as they indicate server-side issues.
	if appError.HTTPStatus >= 500 {
		logger.ErrorContext(ctx, "api_server_error",
			slog.String("code", appError.Code),
			slog.String("request_id", ctxutil.GetRequestID(ctx)),
			slog.Any("cause", appError.Cause),
		)
		if hub := sentry.GetHubFromContext(ctx); hub != nil && appError.Cause != nil {
			hub.CaptureException(appError.Cause)
		}
	}

	detail := ErrorDetail{Code: appError.Code, Details: appError.Details}
	if ctxutil.IsDebug(ctx) {
		if appError.Cause != nil {
			detail.Cause = appError.Cause.Error()
		}
		detail.Stack = stack
	}

	JSON(writer, appError.HTTPStatus, ErrorEnvelope{
		Success: false,
		Message: appError.Message,
		Errors:  detail,
	})
}
