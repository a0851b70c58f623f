package utils

import (
	"context"
	"net/http"
)

// ContextTransport binds every request it sends to Ctx, so cancelling Ctx
// aborts requests made by clients that do not take a context themselves.
type ContextTransport struct {
	Ctx context.Context
	// Base defaults to http.DefaultTransport.
	Base http.RoundTripper
}

func (t *ContextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(req.WithContext(t.Ctx))
}
