package common

import (
	"errors"
	"fmt"
	"testing"
)

func TestCode_WrappedErrors(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{ErrTokenExpired, CodeTokenExpired},
		{fmt.Errorf("%w: signature mismatch", ErrTokenExpired), CodeTokenExpired},
		{fmt.Errorf("remote: %w", ErrProviderUnavailable), CodeProviderUnavailable},
		{fmt.Errorf("write: %w", ErrStorageFailure), CodeStorageFailure},
		{ErrHardwareBanned, CodeHardwareBanned},
		{errors.New("boom"), CodeInternal},
	}

	for _, tt := range tests {
		if got := Code(tt.err); got != tt.want {
			t.Fatalf("Code(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}

func TestFromCode_RoundTrip(t *testing.T) {
	for _, c := range codes {
		if got := FromCode(c.code); !errors.Is(got, c.err) {
			t.Fatalf("FromCode(%q) = %v, want %v", c.code, got, c.err)
		}
	}
	if got := FromCode("NOPE"); !errors.Is(got, ErrorInternal) {
		t.Fatalf("unknown code should map to ErrorInternal, got %v", got)
	}
}
