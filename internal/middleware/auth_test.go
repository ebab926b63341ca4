package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAPIKeyAuth(t *testing.T) {
	keys := map[string]string{"alice": "key-a", "bob": "key-b"}

	var seen string
	h := APIKeyAuth(keys)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetOwnerFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		wantStatus int
		wantOwner  string
		wantErr    string
	}{
		{"no header is anonymous", "", http.StatusNoContent, "", ""},
		{"bearer key", "Bearer key-a", http.StatusNoContent, "alice", ""},
		{"bare key", "key-b", http.StatusNoContent, "bob", ""},
		{"unknown key", "Bearer nope", http.StatusUnauthorized, "", "invalid API key"},
		{"blank key", "Bearer  ", http.StatusUnauthorized, "", "invalid Authorization header format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = "unset"
			req := httptest.NewRequest(http.MethodGet, "/v1/analyses", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusNoContent {
				assert.Equal(t, tt.wantOwner, seen)
			} else {
				assert.Equal(t, "unset", seen)
				assert.JSONEq(t, `{"error":"`+tt.wantErr+`","kind":"unauthorized"}`, rec.Body.String())
			}
		})
	}
}
