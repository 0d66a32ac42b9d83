package utils

import "testing"

func TestOpenBrowserRejectsNonHTTP(t *testing.T) {
	if err := OpenBrowser("file:///etc/passwd"); err == nil {
		t.Fatal("expected error for non-http url")
	}
	if err := OpenBrowser("javascript:alert(1)"); err == nil {
		t.Fatal("expected error for non-http url")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"short", 10, "short"},
		{"exactly-ten", 11, "exactly-ten"},
		{"a much longer piece of text", 10, "a much ..."},
		{"tiny", 3, "tiny"},
	}
	for _, tt := range tests {
		if got := Truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}
