package urlnorm

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "example.com", want: "https://example.com"},
		{in: "http://x.com", want: "http://x.com"},
		{in: "https://x.com/path?q=1", want: "https://x.com/path?q=1"},
		{in: "", want: "https://"},
		{in: "ftp://files.example.com", want: "https://ftp://files.example.com"},
		{in: "HTTP://upper.example.com", want: "https://HTTP://upper.example.com"},
	}

	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Fatalf("Normalize(%q) = %q; want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeIsIdempotent(t *testing.T) {
	once := Normalize("news.example.org")
	if twice := Normalize(once); twice != once {
		t.Fatalf("Normalize(Normalize(x)) = %q; want %q", twice, once)
	}
}
