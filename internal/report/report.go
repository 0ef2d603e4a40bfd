package report

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/contactkeval/option-pricer/internal/calculator"
)

const (
	JSONFile = "quotes.json"
	CSVFile  = "quotes.csv"
)

// Header is the first row of quotes.csv.
var Header = []string{"kind", "spot", "strike", "rate", "maturity", "volatility", "price"}

func WriteJSON(results []calculator.Result, outdir string) error {
	b, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(outdir, JSONFile), b, 0644)
}

func WriteCSV(results []calculator.Result, outdir string) error {
	f, err := os.Create(filepath.Join(outdir, CSVFile))
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(Header); err != nil {
		return err
	}
	for _, r := range results {
		q := r.Quote
		row := []string{
			string(q.Kind),
			formatFloat(q.Spot),
			formatFloat(q.Strike),
			formatFloat(q.Rate),
			formatFloat(q.Maturity),
			formatFloat(q.Volatility),
			r.Price.String(),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
