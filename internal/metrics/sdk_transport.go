package metrics

import (
	"fmt"
	"net/http"
	"time"
)

// RequestWatcher measures outgoing sdk requests. The request "alias" header names the method.
type RequestWatcher struct {
	name string
	next http.RoundTripper
}

func NewRequestWatcher(name string, next http.RoundTripper) *RequestWatcher {
	if next == nil {
		next = http.DefaultTransport
	}

	return &RequestWatcher{
		name: name,
		next: next,
	}
}

func (m *RequestWatcher) RoundTrip(r *http.Request) (*http.Response, error) {
	var err error
	defer func(start time.Time) {
		CollectRequestsMetric(m.name, methodLabelValue(r), err, start)
	}(time.Now())

	resp, err := m.next.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		err = fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	return resp, nil
}

func methodLabelValue(r *http.Request) string {
	if alias := r.Header.Get("alias"); alias != "" {
		return alias
	}

	return r.Method
}
