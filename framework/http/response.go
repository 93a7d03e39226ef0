package http

import (
	"errors"
	"net/http"

	"github.com/km-arc/go-resolver/framework/decode"
	"github.com/km-arc/go-resolver/framework/repository"
	"github.com/km-arc/go-resolver/framework/resolver"
)

// ── Response ─────────────────────────────────────────────────────────────────

// Response wraps http.ResponseWriter with JSON helpers. Bodies are written
// as canonical JSON so equal values always produce equal bytes.
type Response struct {
	w http.ResponseWriter
}

// NewResponse wraps a ResponseWriter.
func NewResponse(w http.ResponseWriter) *Response {
	return &Response{w: w}
}

// Raw returns the underlying ResponseWriter.
func (res *Response) Raw() http.ResponseWriter { return res.w }

// JSON sends a JSON response.
//
//	res.JSON(http.StatusOK, map[string]any{"message": "ok"})
func (res *Response) JSON(status int, data any) {
	body, err := decode.Canonical(data)
	if err != nil {
		http.Error(res.w, "response encoding failed", http.StatusInternalServerError)
		return
	}
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_, _ = res.w.Write(body)
}

// RawJSON sends body as is, e.g. a generated schema.
func (res *Response) RawJSON(status int, body []byte) {
	res.w.Header().Set("Content-Type", "application/json")
	res.w.WriteHeader(status)
	_, _ = res.w.Write(body)
}

// Success sends 200 JSON: {"data": v}
func (res *Response) Success(v any) {
	res.JSON(http.StatusOK, envelope{"data": v})
}

// Created sends 201 JSON: {"data": v}
func (res *Response) Created(v any) {
	res.JSON(http.StatusCreated, envelope{"data": v})
}

// NoContent sends 204 with no body.
func (res *Response) NoContent() {
	res.w.WriteHeader(http.StatusNoContent)
}

// Error sends a JSON error response.
//
//	res.Error(http.StatusNotFound, "Resource not found")
func (res *Response) Error(status int, message string) {
	res.JSON(status, envelope{"message": message})
}

// NotFound sends 404.
func (res *Response) NotFound(message ...string) {
	res.Error(http.StatusNotFound, first(message, "Not found."))
}

// Fail sends err with the status StatusFor picks.
func (res *Response) Fail(err error) {
	res.Error(StatusFor(err), err.Error())
}

// StatusFor maps resolution and repository failures to HTTP statuses.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, resolver.ErrEntityNotFound),
		errors.Is(err, resolver.ErrTypeNotFound),
		errors.Is(err, resolver.ErrModuleNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, resolver.ErrDecodeFailed),
		errors.Is(err, repository.ErrWrongType),
		errors.Is(err, repository.ErrNoIdentity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, resolver.ErrInvalidShape):
		return http.StatusBadRequest
	case errors.Is(err, resolver.ErrNotRegistered):
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// ── Helpers ──────────────────────────────────────────────────────────────────

type envelope map[string]any

func first(ss []string, fallback string) string {
	if len(ss) > 0 && ss[0] != "" {
		return ss[0]
	}
	return fallback
}
