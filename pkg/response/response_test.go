package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	appErrors "github.com/gurizes/gatewarden/pkg/errors"
)

func TestSuccessEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	Success(c, http.StatusCreated, gin.H{"id": "abc"})

	require.Equal(t, http.StatusCreated, recorder.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.True(t, payload.Success)
	require.Nil(t, payload.Error)
}

func TestErrorEnvelopeUsesAppErrorStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	Error(c, appErrors.ErrNotFound)

	require.Equal(t, http.StatusNotFound, recorder.Code)

	var payload Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	require.False(t, payload.Success)
	require.Equal(t, "NOT_FOUND", payload.Error.Code)
}

func TestErrorEnvelopeDefaultsToInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	recorder := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(recorder)

	Error(c, nil)

	require.Equal(t, http.StatusInternalServerError, recorder.Code)
}
