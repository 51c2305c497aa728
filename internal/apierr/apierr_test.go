package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestStatusFollowsWrappedKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{InputValidation("upload", errors.New("file field is required")), http.StatusBadRequest},
		{fmt.Errorf("outer: %w", Lookup("check", errors.New("bad index"))), http.StatusBadRequest},
		{Extraction("pdf", errors.New("corrupt")), http.StatusBadRequest},
		{Configuration("generate", errors.New("no key")), http.StatusInternalServerError},
		{Generation("generate", errors.New("timeout")), http.StatusInternalServerError},
		{New(KindPayloadTooLarge, "upload", nil), http.StatusRequestEntityTooLarge},
		{New(KindRateLimited, "upload", nil), http.StatusTooManyRequests},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := Status(tc.err); got != tc.want {
			t.Fatalf("Status(%v): got=%d want=%d", tc.err, got, tc.want)
		}
	}
}

func TestErrorMessagePrefersWrapped(t *testing.T) {
	err := Generation("generate", errors.New("model returned no questions"))
	if err.Error() != "model returned no questions" {
		t.Fatalf("unexpected message %q", err.Error())
	}
	if got := New(KindRateLimited, "upload", nil).Error(); got != "upload: rate_limited error" {
		t.Fatalf("unexpected message %q", got)
	}
}
