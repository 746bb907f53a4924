package datasource

import (
	"context"
	"errors"
	"testing"
)

func TestUnavailableWrapping(t *testing.T) {
	if Unavailable("x", nil) != nil {
		t.Fatalf("nil error must stay nil")
	}

	err := Unavailable("maio.xlsx", context.DeadlineExceeded)
	var su *SourceUnavailable
	if !errors.As(err, &su) || su.Source != "maio.xlsx" {
		t.Fatalf("errors.As failed: %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Unwrap lost the cause")
	}
	if again := Unavailable("other", err); again != error(su) {
		t.Fatalf("rewrapped: %v", again)
	}
	if got := err.Error(); got != `source "maio.xlsx" unavailable: context deadline exceeded` {
		t.Fatalf("Error() = %q", got)
	}
}
