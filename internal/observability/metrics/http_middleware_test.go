package metrics

import "testing"

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/api/services/create":        "/api/services/create",
		"/api/services/abc-123":       "/api/services/:id",
		"/api/services/abc-123/updates": "/api/services/:id/updates",
		"/api/customers/create":       "/api/customers/create",
		"/api/customers/abc-123":      "/api/customers/:id",
		"/api/dashboard":              "/api/dashboard",
		"/healthz":                    "/healthz",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
