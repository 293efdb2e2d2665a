package utils

import "testing"

func TestNewLogger(t *testing.T) {
	for _, debug := range []bool{true, false} {
		l, err := NewLogger(debug)
		if err != nil {
			t.Fatalf("debug=%v: %v", debug, err)
		}
		if l == nil {
			t.Fatalf("debug=%v: nil logger", debug)
		}
		_ = l.Sync()
	}
}
