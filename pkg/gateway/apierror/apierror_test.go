package apierror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/prepworks/interviewd/internal/store"
	"github.com/prepworks/interviewd/pkg/core"
)

func TestFromError_Nil(t *testing.T) {
	apiErr, status := FromError(nil, "ivd_1")
	if apiErr != nil || status != http.StatusOK {
		t.Fatalf("apiErr=%v status=%d", apiErr, status)
	}
}

func TestFromError_StatusByType(t *testing.T) {
	cases := []struct {
		err    error
		status int
		typ    core.ErrorType
	}{
		{core.NewInvalidRequestError("bad"), http.StatusBadRequest, core.ErrInvalidRequest},
		{core.NewAuthenticationError("nope"), http.StatusUnauthorized, core.ErrAuthentication},
		{core.NewNotFoundError("gone"), http.StatusNotFound, core.ErrNotFound},
		{core.NewAPIError("upstream"), http.StatusBadGateway, core.ErrAPI},
	}
	for _, tc := range cases {
		apiErr, status := FromError(tc.err, "ivd_1")
		if status != tc.status {
			t.Fatalf("%v: status=%d, want %d", tc.err, status, tc.status)
		}
		if apiErr.Type != tc.typ || apiErr.RequestID != "ivd_1" {
			t.Fatalf("apiErr=%+v", apiErr)
		}
	}
}

func TestFromError_DoesNotMutateOriginal(t *testing.T) {
	orig := core.NewNotFoundError("gone")
	FromError(orig, "ivd_9")
	if orig.RequestID != "" {
		t.Fatalf("original mutated: %+v", orig)
	}
}

func TestFromError_WrappedCoreError(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", core.NewInvalidRequestErrorWithParam("bad field", "field"))
	apiErr, status := FromError(wrapped, "ivd_1")
	if status != http.StatusBadRequest || apiErr.Param != "field" {
		t.Fatalf("apiErr=%+v status=%d", apiErr, status)
	}
}

func TestFromError_StoreNotFound(t *testing.T) {
	apiErr, status := FromError(fmt.Errorf("lookup: %w", store.ErrNotFound), "ivd_1")
	if status != http.StatusNotFound || apiErr.Type != core.ErrNotFound {
		t.Fatalf("apiErr=%+v status=%d", apiErr, status)
	}
}

func TestFromError_ContextDeadline(t *testing.T) {
	apiErr, status := FromError(context.DeadlineExceeded, "ivd_1")
	if status != http.StatusGatewayTimeout || apiErr.Message != "request timeout" {
		t.Fatalf("apiErr=%+v status=%d", apiErr, status)
	}
}

func TestFromError_UnknownErrorHidesDetails(t *testing.T) {
	apiErr, status := FromError(errors.New("pq: relation sessions does not exist"), "ivd_1")
	if status != http.StatusInternalServerError {
		t.Fatalf("status=%d", status)
	}
	if apiErr.Message != "internal error" {
		t.Fatalf("message=%q, internals leaked", apiErr.Message)
	}
}
