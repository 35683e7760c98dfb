package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	disk := errors.New("disk full")
	for _, tc := range []struct {
		err  *Error
		want string
	}{
		{New(ErrCodeInvalidFilter, "unknown category: %s", "boats"), "INVALID_FILTER: unknown category: boats"},
		{Wrap(ErrCodeInternal, disk, "write %s", "svg"), "INTERNAL_ERROR: write svg: disk full"},
	} {
		if got := tc.err.Error(); got != tc.want {
			t.Errorf("Error() = %q, want %q", got, tc.want)
		}
	}
}

func TestWrapUnwraps(t *testing.T) {
	cause := errors.New("disk full")
	err := Wrap(ErrCodeInternal, cause, "write artifact")
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if New(ErrCodeTimeout, "x").Unwrap() != nil {
		t.Error("New should have no cause")
	}
}

func TestCodeLookup(t *testing.T) {
	inner := New(ErrCodeInvalidSort, "inner")
	outer := Wrap(ErrCodeInternal, inner, "outer")
	stdWrapped := fmt.Errorf("context: %w", inner)

	if !Is(outer, ErrCodeInternal) || Is(outer, ErrCodeInvalidSort) {
		t.Error("Is should match the outermost coded error only")
	}
	if !Is(stdWrapped, ErrCodeInvalidSort) {
		t.Error("Is should see through fmt.Errorf wrapping")
	}
	if Is(nil, ErrCodeInvalidInput) || Is(errors.New("plain"), "") {
		t.Error("uncoded errors must not match")
	}
	if got := GetCode(errors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q", got)
	}
	if got := UserMessage(stdWrapped); got != "inner" {
		t.Errorf("UserMessage() = %q, want inner", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	for err, want := range map[error]int{
		New(ErrCodeInvalidFilter, "x"):             http.StatusBadRequest,
		New(ErrCodeInvalidSubmission, "x"):         http.StatusUnprocessableEntity,
		New(ErrCodeVehicleNotFound, "x"):           http.StatusNotFound,
		New(ErrCodeRateLimited, "x"):               http.StatusTooManyRequests,
		Wrap(ErrCodeTimeout, errors.New("s"), "x"): http.StatusGatewayTimeout,
		New(ErrCodeInternal, "x"):                  http.StatusInternalServerError,
		errors.New("plain"):                        http.StatusInternalServerError,
	} {
		if got := HTTPStatus(err); got != want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", err, got, want)
		}
	}
}

func TestRateLimitedError(t *testing.T) {
	if got := (&RateLimitedError{RetryAfter: 60}).Error(); got != "rate limited: retry after 60 seconds" {
		t.Errorf("Error() = %q", got)
	}
	if got := (&RateLimitedError{}).Error(); got != "rate limited" {
		t.Errorf("Error() = %q", got)
	}
	var rl *RateLimitedError
	err := Wrap(ErrCodeRateLimited, &RateLimitedError{RetryAfter: 5}, "slow down")
	if !errors.As(err, &rl) || rl.RetryAfter != 5 || rl.Code() != ErrCodeRateLimited {
		t.Errorf("errors.As RateLimitedError = %+v", rl)
	}
}
