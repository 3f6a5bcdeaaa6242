package utils

import (
	"context"
)

type contextKey string

const (
	EmailKey    contextKey = "email"
	PasswordKey contextKey = "password"
)

// SetCredentialsContext stores the Basic credentials of the request.
func SetCredentialsContext(ctx context.Context, email, password string) context.Context {
	ctx = context.WithValue(ctx, EmailKey, email)
	ctx = context.WithValue(ctx, PasswordKey, password)
	return ctx
}

// GetCredentialsFromContext returns the credentials set by the BasicCredentials middleware
func GetCredentialsFromContext(ctx context.Context) (email, password string, ok bool) {
	email, ok = ctx.Value(EmailKey).(string)
	if !ok {
		return "", "", false
	}

	password, ok = ctx.Value(PasswordKey).(string)
	if !ok {
		return "", "", false
	}

	return email, password, true
}
