package protocol

import (
	"testing"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{200, "200 OK"},
		{408, "408 Request Timeout"},
		{505, "505 HTTP Version Not Supported"},
		{299, "299 Unknown"},
		{99, "500 Internal Server Error"},
		{600, "500 Internal Server Error"},
	}
	for _, tt := range tests {
		if got := StatusText(tt.code); got != tt.want {
			t.Errorf("StatusText(%d) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

func TestAppendUint(t *testing.T) {
	tests := []struct {
		n    uint
		want string
	}{
		{0, "0"},
		{7, "7"},
		{10, "10"},
		{4096, "4096"},
		{18446744073709551615, "18446744073709551615"},
	}
	for _, tt := range tests {
		if got := string(AppendUint([]byte("x"), tt.n)); got != "x"+tt.want {
			t.Errorf("AppendUint(%d) = %q", tt.n, got)
		}
	}
}

func TestAppendHead(t *testing.T) {
	hs := NewHeaders()
	hs.Add("Content-Length", "2")
	hs.Add("Vary", "Accept")
	hs.Add("Vary", "Origin")

	got := string(AppendHead(nil, 404, hs))
	want := "HTTP/1.1 404 Not Found\r\nContent-Length: 2\r\nVary: Accept, Origin\r\n\r\n"
	if got != want {
		t.Errorf("head = %q, want %q", got, want)
	}
}

func BenchmarkAppendHead(b *testing.B) {
	hs := NewHeaders()
	hs.Add("Content-Type", "text/plain")
	hs.Add("Content-Length", "5")
	hs.Add("Server", "sockhttp")
	buf := make([]byte, 0, 512)

	b.ReportAllocs()
	for b.Loop() {
		buf = AppendHead(buf[:0], 200, hs)
	}
}
