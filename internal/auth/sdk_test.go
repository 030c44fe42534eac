package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"golang.org/x/oauth2"
)

func TestGoogleSDKReady(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   bool
	}{
		{name: "discovery reachable", status: http.StatusOK, want: true},
		{name: "provider down", status: http.StatusServiceUnavailable, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			sdk := NewGoogleSDK("http://localhost:8080",
				WithDiscoveryURL(srv.URL+"/.well-known/openid-configuration"),
				WithSDKHTTPClient(srv.Client()))

			if got := sdk.Ready(context.Background()); got != tt.want {
				t.Errorf("Ready() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestGoogleSDKRejectsEmptyClientID(t *testing.T) {
	if _, err := NewGoogleSDK("http://localhost:8080").NewTokenClient("  "); err == nil {
		t.Error("NewTokenClient() error = nil, want failure")
	}
}

func TestConsentURL(t *testing.T) {
	sdk := NewGoogleSDK("http://localhost:8080/", WithEndpoint(oauth2.Endpoint{
		AuthURL:  "https://accounts.test/o/oauth2/auth",
		TokenURL: "https://accounts.test/token",
	}))
	client, err := sdk.NewTokenClient(testClientID)
	if err != nil {
		t.Fatal(err)
	}

	raw := client.ConsentURL("state-1", oauth2.GenerateVerifier())
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatalf("invalid consent url %q: %v", raw, err)
	}
	q := u.Query()

	want := map[string]string{
		"client_id":             testClientID,
		"state":                 "state-1",
		"redirect_uri":          "http://localhost:8080/auth/callback",
		"response_type":         "code",
		"prompt":                "consent",
		"code_challenge_method": "S256",
		"scope":                 Scopes[0] + " " + Scopes[1],
	}
	for k, v := range want {
		if got := q.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
	if q.Get("code_challenge") == "" {
		t.Error("code_challenge missing")
	}
}

func TestExchangeSendsVerifier(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("ParseForm() error = %v", err)
		}
		if got := r.PostForm.Get("code"); got != "auth-code" {
			t.Errorf("code = %q", got)
		}
		if got := r.PostForm.Get("code_verifier"); got != "verifier-1" {
			t.Errorf("code_verifier = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"ya29.token","token_type":"Bearer","expires_in":3600}`))
	}))
	defer srv.Close()

	sdk := NewGoogleSDK("http://localhost:8080",
		WithEndpoint(oauth2.Endpoint{AuthURL: srv.URL + "/auth", TokenURL: srv.URL + "/token"}),
		WithSDKHTTPClient(srv.Client()))
	client, err := sdk.NewTokenClient(testClientID)
	if err != nil {
		t.Fatal(err)
	}

	tok, err := client.Exchange(context.Background(), "auth-code", "verifier-1")
	if err != nil {
		t.Fatalf("Exchange() error = %v", err)
	}
	if tok.AccessToken != "ya29.token" {
		t.Errorf("AccessToken = %q", tok.AccessToken)
	}
	if tok.Expiry.IsZero() {
		t.Error("Expiry not set from expires_in")
	}
}
