package api

import "testing"

func TestEndpoint(t *testing.T) {
	c, err := NewClient("http://127.0.0.1:4000/", ClientOptions{})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	got := c.endpoint(ResultsPath)
	want := "http://127.0.0.1:4000/api/results"
	if got != want {
		t.Errorf("endpoint() = %q, want %q", got, want)
	}
	if c.Describe() != "http://127.0.0.1:4000" {
		t.Errorf("Describe() = %q", c.Describe())
	}
}
