package app

import (
	"context"
	"errors"
)

// ErrNoApp is returned when a command runs without the shared App.
var ErrNoApp = errors.New("app not initialized")

type appKey struct{}

// WithApp returns a copy of ctx carrying a.
func WithApp(ctx context.Context, a *App) context.Context {
	return context.WithValue(ctx, appKey{}, a)
}

// FromContext returns the App stored by WithApp.
func FromContext(ctx context.Context) (*App, error) {
	a, ok := ctx.Value(appKey{}).(*App)
	if !ok || a == nil {
		return nil, ErrNoApp
	}
	return a, nil
}
