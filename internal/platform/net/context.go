// Package net provides utilities for working with request contexts
package net

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// ctxKey is an unexported key type for context values
type ctxKey string

const keyWallet ctxKey = "wallet"

// WithRequest annotates context with the request id
func WithRequest(ctx context.Context, reqID string) context.Context {
	if reqID != "" {
		// set chi RequestID so chimw.GetReqID can retrieve it
		ctx = context.WithValue(ctx, chimw.RequestIDKey, reqID)
	}
	return ctx
}

// WithWallet annotates context with the verified signer address
func WithWallet(ctx context.Context, wallet string) context.Context {
	if wallet != "" {
		ctx = context.WithValue(ctx, keyWallet, wallet)
	}
	return ctx
}

// RequestID returns the request id on the context if present
func RequestID(ctx context.Context) string {
	if v := chimw.GetReqID(ctx); v != "" {
		return v
	}
	return ""
}

// Wallet returns the verified signer address on the context if present
func Wallet(ctx context.Context) string {
	if v, ok := ctx.Value(keyWallet).(string); ok {
		return v
	}
	return ""
}
