package validator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type decisionPayload struct {
	Status     string `json:"status" validate:"required,oneof=approved rejected"`
	ApprovedBy string `json:"approved_by" validate:"required"`
}

func TestValidateStructPasses(t *testing.T) {
	err := ValidateStruct(decisionPayload{Status: "approved", ApprovedBy: "admin-123"})
	require.NoError(t, err)
}

func TestValidateStructReportsJSONFieldNames(t *testing.T) {
	err := ValidateStruct(decisionPayload{Status: "maybe"})
	require.Error(t, err)

	failures, ok := err.(ValidationErrors)
	require.True(t, ok)
	require.Len(t, failures, 2)

	fields := []string{failures[0].Field, failures[1].Field}
	require.Contains(t, fields, "status")
	require.Contains(t, fields, "approved_by")
}

func TestValidationErrorsMessage(t *testing.T) {
	errs := ValidationErrors{{Field: "status", Tag: "oneof", Param: "approved rejected"}}
	require.Contains(t, errs.Error(), "status failed on oneof")
}
