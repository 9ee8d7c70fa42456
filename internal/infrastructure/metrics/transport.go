package metrics

import (
	"net/http"
	"strconv"
	"time"
)

// Transport envuelve next para medir cada llamada saliente. next nil usa http.DefaultTransport.
func (m *Metrics) Transport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &instrumentedTransport{next: next, m: m}
}

type instrumentedTransport struct {
	next http.RoundTripper
	m    *Metrics
}

func (t *instrumentedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	route := routeTemplate(req.URL.Path)
	start := time.Now()
	resp, err := t.next.RoundTrip(req)
	t.m.upstreamDuration.WithLabelValues(req.Method, route).Observe(time.Since(start).Seconds())

	code := "error"
	if err == nil {
		code = strconv.Itoa(resp.StatusCode)
	}
	t.m.upstreamRequests.WithLabelValues(req.Method, route, code).Inc()
	return resp, err
}
