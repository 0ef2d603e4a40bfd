package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/pricing"
	"github.com/contactkeval/option-pricer/internal/report"
)

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := run(args, &out)
	return out.String(), err
}

func TestRunDefaults(t *testing.T) {
	out, err := runCLI(t)
	require.NoError(t, err)
	assert.Equal(t, "10.4506\n", out)

	out, err = runCLI(t, "-kind", "put")
	require.NoError(t, err)
	assert.Equal(t, "5.5735\n", out)
}

func TestRunFlags(t *testing.T) {
	out, err := runCLI(t, "-spot", "120", "-strike", "100", "-maturity", "0")
	require.NoError(t, err)
	assert.Equal(t, "20\n", out)
}

func TestRunInvalidInput(t *testing.T) {
	out, err := runCLI(t, "-strike", "-1")
	require.Error(t, err)
	assert.True(t, errors.Is(err, pricing.ErrInvalidInput))
	assert.Empty(t, out)
}

func TestRunImpliedVol(t *testing.T) {
	out, err := runCLI(t, "-premium", "10.450583572185565")
	require.NoError(t, err)
	assert.Equal(t, "0.2\n", out)
}

func TestRunSweepWithReport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")

	out, err := runCLI(t, "-sweep", "spot:90:110:10", "-report", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "spot=100\t10.4506", lines[1])

	for _, name := range []string{report.JSONFile, report.CSVFile} {
		_, err := os.Stat(filepath.Join(dir, name))
		assert.NoError(t, err, name)
	}
}

func TestRunPremiumWithSweepIsRejected(t *testing.T) {
	out, err := runCLI(t, "-premium", "10", "-sweep", "spot:90:110:10")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot be combined")
	assert.Empty(t, out)
}

func TestRunBadFlag(t *testing.T) {
	_, err := runCLI(t, "-nope")
	assert.Error(t, err)
}
