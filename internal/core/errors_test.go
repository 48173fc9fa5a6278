package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorKindMatching(t *testing.T) {
	err := Errorf(KindProtectedEntity, "category 1 is reserved")

	if KindOf(err) != KindProtectedEntity {
		t.Errorf("KindOf() = %q, want %q", KindOf(err), KindProtectedEntity)
	}
	if !errors.Is(err, &Error{Kind: KindProtectedEntity}) {
		t.Error("errors.Is failed to match by kind")
	}
	if errors.Is(err, &Error{Kind: KindNetwork}) {
		t.Error("errors.Is matched a different kind")
	}
}

func TestErrorWrapping(t *testing.T) {
	cause := errors.New("connection refused")
	err := WrapErr(KindNetwork, cause, "POST /login.php")

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}

	// Kind survives another layer of fmt wrapping.
	outer := fmt.Errorf("create subscription: %w", err)
	if KindOf(outer) != KindNetwork {
		t.Errorf("KindOf(wrapped) = %q, want %q", KindOf(outer), KindNetwork)
	}
}

func TestKindOfForeignError(t *testing.T) {
	if KindOf(errors.New("plain")) != "" {
		t.Error("KindOf() returned a kind for a foreign error")
	}
}

func TestNameEquals(t *testing.T) {
	tests := []struct {
		a, b string
		want bool
	}{
		{"Netflix", "netflix", true},
		{" Spotify ", "spotify", true},
		{"Disney+", "Disney+", true},
		{"HBO", "HBO Max", false},
	}
	for _, tt := range tests {
		if got := NameEquals(tt.a, tt.b); got != tt.want {
			t.Errorf("NameEquals(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
