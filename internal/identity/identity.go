// Package identity carries the trusted caller id taken from the
// X-Sharer-User-Id header.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

const Header = "X-Sharer-User-Id"

var ErrMissing = errors.New("header " + Header + " is required")

type AuthenticatedUser struct {
	ID int64
}

type ctxKey struct{}

// Parse reads the caller id from the request headers.
// ok is false when the header is absent.
func Parse(h http.Header) (user AuthenticatedUser, ok bool, err error) {
	raw := strings.TrimSpace(h.Get(Header))
	if raw == "" {
		return AuthenticatedUser{}, false, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return AuthenticatedUser{}, true, fmt.Errorf("header %s must be a number, got %q", Header, raw)
	}
	return AuthenticatedUser{ID: id}, true, nil
}

func WithUser(ctx context.Context, user AuthenticatedUser) context.Context {
	return context.WithValue(ctx, ctxKey{}, user)
}

func FromContext(ctx context.Context) (AuthenticatedUser, bool) {
	user, ok := ctx.Value(ctxKey{}).(AuthenticatedUser)
	return user, ok
}

// Require returns the caller or ErrMissing.
func Require(ctx context.Context) (AuthenticatedUser, error) {
	user, ok := FromContext(ctx)
	if !ok {
		return AuthenticatedUser{}, ErrMissing
	}
	return user, nil
}
