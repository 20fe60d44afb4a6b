// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package idempotency

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/taibuivan/lessons/internal/platform/apperr"
	"github.com/taibuivan/lessons/internal/platform/constants"
	"github.com/taibuivan/lessons/internal/platform/ctxutil"
	"github.com/taibuivan/lessons/internal/platform/respond"
)

// captureWriter tees the response so it can be stored after the handler returns.
type captureWriter struct {
	http.ResponseWriter
	status int
	body   bytes.Buffer
}

func (writer *captureWriter) WriteHeader(code int) {
	writer.status = code
	writer.ResponseWriter.WriteHeader(code)
}

func (writer *captureWriter) Write(data []byte) (int, error) {
	writer.body.Write(data)
	return writer.ResponseWriter.Write(data)
}

// Middleware replays responses for requests that repeat an Idempotency-Key.
//
// Keys are scoped per principal, method and path, so two users (or two
// endpoints) never share a record. Requests without the header, or without
// an authenticated principal, pass straight through.
func Middleware(store Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			clientKey := strings.TrimSpace(request.Header.Get(constants.HeaderIdempotencyKey))
			principal := ctxutil.GetPrincipal(request.Context())

			if clientKey == "" || principal == nil {
				next.ServeHTTP(writer, request)
				return
			}

			if len(clientKey) > constants.IdempotencyKeyMaxLen {
				respond.Error(writer, request, apperr.ValidationError("Idempotency-Key is too long"))
				return
			}

			ctx := request.Context()
			logger := ctxutil.GetLogger(ctx)
			key := principal.UID + ":" + request.Method + ":" + request.URL.Path + ":" + clientKey

			// 1. Replay
			record, err := store.Load(ctx, key)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if record != nil {
				replay(writer, record)
				return
			}

			// 2. Lock
			acquired, err := store.Acquire(ctx, key)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if !acquired {
				respond.Error(writer, request, apperr.Conflict("A request with this Idempotency-Key is already in progress"))
				return
			}

			// Bookkeeping must survive a cancelled request context.
			background := context.WithoutCancel(ctx)
			defer func() {
				if err := store.Release(background, key); err != nil {
					logger.Warn("idempotency_release_failed", slog.Any("error", err))
				}
			}()

			// A duplicate may have finished between the miss above and the lock.
			record, err = store.Load(ctx, key)
			if err != nil {
				respond.Error(writer, request, apperr.Internal(err))
				return
			}
			if record != nil {
				replay(writer, record)
				return
			}

			// 3. Execute and store
			capture := &captureWriter{ResponseWriter: writer, status: http.StatusOK}
			next.ServeHTTP(capture, request)

			if capture.status >= http.StatusInternalServerError {
				return
			}

			if err := store.Save(background, key, &Record{
				Status:      capture.status,
				ContentType: capture.Header().Get("Content-Type"),
				Body:        capture.body.Bytes(),
			}); err != nil {
				logger.Warn("idempotency_save_failed", slog.Any("error", err))
			}
		})
	}
}

// replay writes a stored response back to the client.
func replay(writer http.ResponseWriter, record *Record) {
	if record.ContentType != "" {
		writer.Header().Set("Content-Type", record.ContentType)
	}
	writer.Header().Set(constants.HeaderIdempotentReplayed, "true")
	writer.WriteHeader(record.Status)
	_, _ = writer.Write(record.Body)
}
