package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openlove-social/openlove/internal/auth"
)

func TestAuthenticate_ValidToken(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret-key")
	token, err := jwtService.GenerateAccessToken("user-123", "gold")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	var capturedUserID string
	handler := Authenticate(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedUserID = GetUserID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Errorf("got status %d, want %d", rr.Code, http.StatusOK)
	}
	if capturedUserID != "user-123" {
		t.Errorf("got user id %q, want %q", capturedUserID, "user-123")
	}
}

func TestAuthenticate_Rejects(t *testing.T) {
	jwtService := auth.NewJWTService("test-secret-key")
	otherService := auth.NewJWTService("different-secret")
	foreignToken, err := otherService.GenerateAccessToken("user-123", "free")
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "no bearer prefix", header: "Token abc123"},
		{name: "empty token", header: "Bearer "},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong secret", header: "Bearer " + foreignToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handlerCalled := false
			handler := Authenticate(jwtService)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
			}))

			req := httptest.NewRequest(http.MethodGet, "/suggestions", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if handlerCalled {
				t.Error("handler should not be called for rejected request")
			}
			if rr.Code != http.StatusUnauthorized {
				t.Errorf("got status %d, want %d", rr.Code, http.StatusUnauthorized)
			}

			var body struct {
				Error struct {
					Code    string `json:"code"`
					Message string `json:"message"`
				} `json:"error"`
			}
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("failed to parse error envelope %q: %v", rr.Body.String(), err)
			}
			if body.Error.Code != "unauthorized" {
				t.Errorf("got error code %q, want %q", body.Error.Code, "unauthorized")
			}
		})
	}
}
