package upstream

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"cartshare/internal/domain"
)

func TestGeocoderDistance(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("origins"); got != "Rothschild 10, Tel Aviv" {
			t.Errorf("origins = %q", got)
		}
		w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"OK","distance":{"value":3500}}]}]}`))
	}))
	defer srv.Close()

	client := NewGeocoderClient(srv.URL, "test-key", time.Second)
	km, err := client.Distance(context.Background(), "Rothschild 10, Tel Aviv", "Dizengoff 1, Tel Aviv")
	if err != nil {
		t.Fatalf("Distance() error = %v", err)
	}
	if km != 3.5 {
		t.Errorf("Distance() = %v km, want 3.5", km)
	}
}

func TestGeocoderFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "http error status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusTooManyRequests)
			},
		},
		{
			name: "provider-level failure",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"OVER_QUERY_LIMIT","rows":[]}`))
			},
		},
		{
			name: "unresolvable address",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"status":"OK","rows":[{"elements":[{"status":"NOT_FOUND"}]}]}`))
			},
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`not json at all`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			client := NewGeocoderClient(srv.URL, "", time.Second)
			_, err := client.Distance(context.Background(), "a", "b")
			if !domain.IsUpstreamError(err) {
				t.Errorf("Distance() error = %v, want UpstreamError", err)
			}
		})
	}
}

func TestGeocoderUnreachable(t *testing.T) {
	client := NewGeocoderClient("http://127.0.0.1:1", "", 200*time.Millisecond)
	_, err := client.Distance(context.Background(), "a", "b")
	if !domain.IsUpstreamError(err) {
		t.Errorf("Distance() error = %v, want UpstreamError", err)
	}
}
