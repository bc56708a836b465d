package backtest

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strconv"
	"time"
)

func WriteLedgerCSV(path string, ledger []LedgerRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return EncodeLedgerCSV(f, ledger)
}

// EncodeLedgerCSV writes the ledger with one extra column per recorded
// variable, sorted by name.
func EncodeLedgerCSV(out io.Writer, ledger []LedgerRow) error {
	w := csv.NewWriter(out)
	defer w.Flush()

	recorded := recordedColumns(ledger)
	header := []string{
		"index",
		"dt",
		"cash",
		"positions_value",
		"portfolio_value",
		"orders",
		"fills",
		"net_shares",
		"action",
		"pnl",
		"cum_pnl",
	}
	header = append(header, recorded...)
	if err := w.Write(header); err != nil {
		return err
	}

	for _, r := range ledger {
		row := []string{
			strconv.Itoa(r.Index),
			fmtTime(r.Dt),
			fmtFloat(r.Cash),
			fmtFloat(r.PositionsValue),
			fmtFloat(r.PortfolioValue),
			strconv.Itoa(r.Orders),
			strconv.Itoa(r.Fills),
			strconv.FormatInt(r.NetShares, 10),
			string(r.Action),
			fmtFloat(r.PNL),
			fmtFloat(r.CumPNL),
		}
		for _, name := range recorded {
			if v, ok := r.Recorded[name]; ok {
				row = append(row, fmtFloat(v))
			} else {
				row = append(row, "")
			}
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

func recordedColumns(ledger []LedgerRow) []string {
	seen := map[string]struct{}{}
	for _, r := range ledger {
		for k := range r.Recorded {
			seen[k] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for k := range seen {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func fmtTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func fmtFloat(x float64) string {
	return strconv.FormatFloat(x, 'f', 6, 64)
}
