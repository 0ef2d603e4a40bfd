package report

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contactkeval/option-pricer/internal/calculator"
	"github.com/contactkeval/option-pricer/internal/config"
	"github.com/contactkeval/option-pricer/internal/testutil"
)

func atmResults(t *testing.T) []calculator.Result {
	t.Helper()
	defaults := config.DefaultsConfig{Spot: 100, Strike: 100, Rate: 0.05, Maturity: 1, Volatility: 0.2, Kind: "call"}
	svc := calculator.NewService(defaults, 4, nil, nil)

	var out []calculator.Result
	for _, kind := range []string{"call", "put"} {
		res, err := svc.Price(context.Background(), calculator.Form{Kind: kind})
		require.NoError(t, err)
		out = append(out, *res)
	}
	return out
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteCSV(atmResults(t), dir))

	b, err := os.ReadFile(filepath.Join(dir, CSVFile))
	require.NoError(t, err)
	testutil.CompareWithGolden(t, "atm_quotes.csv", b)
}

func TestWriteJSON(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, WriteJSON(atmResults(t), dir))

	b, err := os.ReadFile(filepath.Join(dir, JSONFile))
	require.NoError(t, err)

	var back []calculator.Result
	require.NoError(t, json.Unmarshal(b, &back))
	require.Len(t, back, 2)
	assert.Equal(t, "10.4506", back[0].Price.String())
	assert.Equal(t, "5.5735", back[1].Price.String())
	assert.Equal(t, calculator.SourceDefault, back[1].SpotSource)
}

func TestWriteCSVMissingDir(t *testing.T) {
	err := WriteCSV(nil, filepath.Join(t.TempDir(), "missing", "dir"))
	assert.Error(t, err)
}
