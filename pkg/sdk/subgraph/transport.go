package subgraph

import (
	"context"
	"net/http"
)

type aliasKey struct{}

func withAlias(ctx context.Context, alias string) context.Context {
	return context.WithValue(ctx, aliasKey{}, alias)
}

// aliasTransport copies the query alias from the context into the "alias" header,
// so the metrics watcher can label graphql requests which all share one url.
type aliasTransport struct {
	next http.RoundTripper
}

func (t *aliasTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	next := t.next
	if next == nil {
		next = http.DefaultTransport
	}

	alias, ok := r.Context().Value(aliasKey{}).(string)
	if !ok {
		return next.RoundTrip(r)
	}

	req := r.Clone(r.Context())
	req.Header.Set("alias", alias)

	return next.RoundTrip(req)
}
