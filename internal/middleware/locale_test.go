package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDetectLocale(t *testing.T) {
	idLookup := func(ip string) (string, error) { return "ID", nil }
	usLookup := func(ip string) (string, error) { return "US", nil }
	failLookup := func(ip string) (string, error) { return "", errors.New("unavailable") }

	tests := []struct {
		name    string
		headers map[string]string
		lookup  CountryLookup
		want    string
	}{
		{"x-locale wins", map[string]string{"X-Locale": "id", "Accept-Language": "en-US"}, nil, "id"},
		{"x-locale with region", map[string]string{"X-Locale": "id-ID"}, nil, "id"},
		{"accept-language indonesian", map[string]string{"Accept-Language": "id-ID,id;q=0.9,en;q=0.5"}, nil, "id"},
		{"accept-language english", map[string]string{"Accept-Language": "en-GB,en;q=0.8"}, nil, "en"},
		{"unknown language maps to english", map[string]string{"Accept-Language": "fr-FR"}, nil, "en"},
		{"geoip indonesia", nil, idLookup, "id"},
		{"geoip elsewhere falls back", nil, usLookup, "en"},
		{"geoip failure falls back", nil, failLookup, "en"},
		{"nothing resolves to default", nil, nil, "en"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = "198.51.100.10:1234"
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			if got := detectLocale(req, "en", tc.lookup); got != tc.want {
				t.Fatalf("detectLocale() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestLocaleMiddlewareStoresContextValue(t *testing.T) {
	var got string
	handler := Locale("en", nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = LocaleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Locale", "id")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	if got != "id" {
		t.Fatalf("locale in context = %q, want id", got)
	}
}
