package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func authedHandler(apiKey string) http.Handler {
	return Auth(apiKey)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func TestAuth(t *testing.T) {
	tests := []struct {
		name       string
		apiKey     string
		path       string
		header     string
		value      string
		wantStatus int
	}{
		{
			name:       "disabled when no key configured",
			apiKey:     "",
			path:       "/api/markets",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token rejected",
			apiKey:     "secret",
			path:       "/api/markets",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "bearer token accepted",
			apiKey:     "secret",
			path:       "/api/markets",
			header:     "Authorization",
			value:      "Bearer secret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "api key header accepted",
			apiKey:     "secret",
			path:       "/api/markets",
			header:     "X-API-Key",
			value:      "secret",
			wantStatus: http.StatusOK,
		},
		{
			name:       "wrong token rejected",
			apiKey:     "secret",
			path:       "/api/markets",
			header:     "Authorization",
			value:      "Bearer nope",
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "health probe bypasses auth",
			apiKey:     "secret",
			path:       "/api/health",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(tt.header, tt.value)
			}
			rec := httptest.NewRecorder()

			authedHandler(tt.apiKey).ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
