package protocol

import (
	"errors"
	"testing"
)

func TestHeadersAdd(t *testing.T) {
	hs := NewHeaders()

	hs.Add("Accept", "text/html")
	hs.Add("accept", "application/json")
	hs.Add("Host", "a")
	hs.Add("HOST", "b")

	if got, _ := hs.Get("ACCEPT"); got != "text/html, application/json" {
		t.Errorf("Accept = %q", got)
	}
	h := hs.Header("accept")
	if h.Name() != "Accept" || h.Value != "text/html" || len(h.Values) != 1 {
		t.Errorf("header = %+v", h)
	}

	// singleton: last one wins
	if got, _ := hs.Get("host"); got != "b" {
		t.Errorf("Host = %q", got)
	}
	if hs.Len() != 2 {
		t.Errorf("len = %d", hs.Len())
	}

	if err := hs.Add("", "x"); !errors.Is(err, ErrEmptyHeaderName) {
		t.Errorf("empty name err = %v", err)
	}
}

func TestHeadersSetDel(t *testing.T) {
	hs := NewHeaders()
	hs.Add("A", "1")
	hs.Add("B", "2")
	hs.Add("B", "3")
	hs.Add("C", "4")

	hs.Set("b", "9")
	all := hs.All()
	if all[1].Name() != "B" || all[1].String() != "9" {
		t.Errorf("Set changed position or kept values: %+v", all[1])
	}

	hs.Del("A")
	if hs.Has("a") || hs.Len() != 2 {
		t.Fatal("A not deleted")
	}
	// index follows the shifted list
	if got, _ := hs.Get("c"); got != "4" {
		t.Errorf("C after delete = %q", got)
	}
	hs.Del("missing")

	if _, ok := hs.Get("A"); ok {
		t.Error("Get found deleted header")
	}

	hs.Reset()
	if hs.Len() != 0 || hs.Has("B") {
		t.Error("Reset left headers")
	}
}

func TestHeadersHasToken(t *testing.T) {
	hs := NewHeaders()
	hs.Add("Connection", "keep-alive, Upgrade")
	hs.Add("Connection", "close")

	tests := []struct {
		token string
		want  bool
	}{
		{"keep-alive", true},
		{"upgrade", true},
		{"CLOSE", true},
		{"keep", false},
		{"", false},
	}
	for _, tt := range tests {
		if got := hs.HasToken("connection", tt.token); got != tt.want {
			t.Errorf("HasToken(%q) = %v, want %v", tt.token, got, tt.want)
		}
	}
	if hs.HasToken("Upgrade", "x") {
		t.Error("HasToken on missing header")
	}
}
