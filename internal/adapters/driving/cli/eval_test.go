package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
)

func TestEvalCmd_Cases(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "", "eval", "-c", "f21ca", "--cases", "cases.yaml", "--overwrite")

	require.NoError(t, err)
	assert.Equal(t, domain.EvalRequest{
		CourseID:  "F21CA",
		Source:    "cases.yaml",
		Overwrite: true,
	}, ts.eval.req)
	assert.Contains(t, out, "Evaluated F21CA: 3 cases, 2 answered, 1 skipped, 0 failed")
}

func TestEvalCmd_Sheet(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "", "eval", "-c", "F21CA", "--sheet", "1AbC", "--worksheet", "Week 3")

	require.NoError(t, err)
	assert.Equal(t, "1AbC", ts.eval.req.Source)
	assert.Equal(t, "Week 3", ts.eval.req.Worksheet)
	assert.False(t, ts.eval.req.Overwrite)
}

func TestEvalCmd_SourceValidation(t *testing.T) {
	setupTestServices(t)

	t.Run("none", func(t *testing.T) {
		_, err := execute(t, "", "eval", "-c", "F21CA")
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Contains(t, err.Error(), "one of --cases or --sheet is required")
	})

	t.Run("both", func(t *testing.T) {
		_, err := execute(t, "", "eval", "-c", "F21CA", "--cases", "a.yaml", "--sheet", "id")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not both")
	})
}

func TestEvalCmd_FailedCases(t *testing.T) {
	ts := setupTestServices(t)
	ts.eval.report = &domain.EvalReport{CourseID: "F21CA", Total: 2, Answered: 1, Failed: 1}

	out, err := execute(t, "", "eval", "-c", "F21CA", "--cases", "cases.yaml")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 case(s) failed")
	assert.Contains(t, out, "1 failed")
}

func TestEvalCmd_ServiceError(t *testing.T) {
	ts := setupTestServices(t)
	ts.eval.err = domain.ErrNotFound

	_, err := execute(t, "", "eval", "-c", "F21CA", "--cases", "missing.yaml")

	assert.ErrorIs(t, err, domain.ErrNotFound)
}
