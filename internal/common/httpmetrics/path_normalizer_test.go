package httpmetrics

import "testing"

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":                                "/",
		"/":                               "/",
		"/tasks":                          "/tasks",
		"/tasks/65a1f0c2e4b0a1b2c3d4e5f6": "/tasks/{id}",
		"/tasks/6f1c2b8e-6a7d-4c1e-9a0b-2d3e4f5a6b7c": "/tasks/{id}",
		"/tasks/not-an-id":                            "/tasks/{id}",
		"/register":                                   "/register",
		"/items/42":                                   "/items/{id}",
	}

	for in, want := range tests {
		if got := NormalizePath(in); got != want {
			t.Errorf("NormalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
