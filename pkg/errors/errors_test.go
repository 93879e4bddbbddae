package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageIncludesInternal(t *testing.T) {
	base := New("TEST", "something broke", http.StatusBadGateway)
	wrapped := base.WithInternal(errors.New("socket closed"))

	require.Equal(t, "something broke: socket closed", wrapped.Error())
	require.Equal(t, "something broke", base.Error())
}

func TestFromErrorPassesThroughAppErrors(t *testing.T) {
	err := FromError(ErrNotFound)
	require.Same(t, ErrNotFound, err)
}

func TestFromErrorWrapsGenericErrors(t *testing.T) {
	cause := errors.New("disk full")
	appErr := FromError(cause)

	require.Equal(t, ErrInternalServer.Code, appErr.Code)
	require.ErrorIs(t, appErr, cause)
}

func TestFromErrorNil(t *testing.T) {
	require.Nil(t, FromError(nil))
}

func TestUnwrapSupportsErrorsIs(t *testing.T) {
	cause := errors.New("root")
	wrapped := Wrap(cause, "request store failed")
	require.ErrorIs(t, wrapped, cause)
}
