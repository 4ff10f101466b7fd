package pipeline

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
)

// WriteInitialStateCSV writes the warm start rows to path.
func WriteInitialStateCSV(path string, rows []StateRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return writeInitialState(f, rows)
}

func writeInitialState(out io.Writer, rows []StateRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	header := []string{
		"period",
		"scenario",
		"load_level",
		"unit",
		"output_gw",
		"commit",
	}
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range rows {
		row := []string{
			strconv.Itoa(r.Period),
			r.Scenario,
			r.LoadLevel,
			r.Unit,
			fmtFloat(r.OutputGW),
			fmtFloat(r.Commit),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
