package sanitize

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "  great video  ", "great video"},
		{"script", "<script>alert(1)</script>nice", "nice"},
		{"markup", "<b>bold</b> and <a href=\"x\">link</a>", "bold and link"},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
		{"ampersand", "tom & jerry", "tom & jerry"},
	}
	clean := New()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clean.Clean(tt.in); got != tt.want {
				t.Fatalf("Clean(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
