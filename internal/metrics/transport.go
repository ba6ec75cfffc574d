package metrics

import (
	"net/http"
	"time"
)

// RequestWatcher instruments outbound client calls, such as the AI provider.
type RequestWatcher struct {
	name string
}

func NewRequestWatcher(name string) *RequestWatcher {
	return &RequestWatcher{
		name: name,
	}
}

func (m *RequestWatcher) RoundTrip(r *http.Request) (*http.Response, error) {
	var err error
	defer func(start time.Time) {
		CollectRequestsMetric(m.name, r.URL.Path, err, start)
	}(time.Now())

	resp, err := http.DefaultTransport.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	return resp, nil
}
