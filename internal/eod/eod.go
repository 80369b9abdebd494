// Package eod writes a per-day CSV summary of the trades synced that day.
package eod

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"notion-trade-sync/internal/interfaces"
	"notion-trade-sync/internal/types"
)

// DayReader returns the journal entries recorded on a given local date.
type DayReader interface {
	ReadDay(t time.Time) ([]types.JournalEntry, error)
}

type aggRow struct {
	Symbol      string
	Trades      int
	Wins        int
	Losses      int
	Breakeven   int
	PnL         float64
	Fees        float64
	Commissions float64
}

type Summarizer struct {
	journal DayReader
	outDir  string
	now     func() time.Time
}

var _ interfaces.EodSummarizer = (*Summarizer)(nil)

func NewSummarizer(journal DayReader, outDir string) *Summarizer {
	return &Summarizer{journal: journal, outDir: outDir, now: time.Now}
}

func (s *Summarizer) csvPath(t time.Time) string {
	return filepath.Join(s.outDir, t.In(time.Local).Format("2006-01-02")+".csv")
}

// SummarizeDay aggregates the synced entries of t's date by symbol. It returns
// "" without error when nothing was synced that day.
func (s *Summarizer) SummarizeDay(t time.Time) (string, error) {
	entries, err := s.journal.ReadDay(t)
	if err != nil {
		return "", fmt.Errorf("read journal: %w", err)
	}

	aggs := map[string]*aggRow{}
	seen := map[string]bool{}
	for _, e := range entries {
		if e.Outcome != types.OutcomeSynced {
			continue
		}
		// count each trade once
		if seen[e.Trade.CanonicalID] {
			continue
		}
		seen[e.Trade.CanonicalID] = true

		sym := e.Trade.Symbol
		row := aggs[sym]
		if row == nil {
			row = &aggRow{Symbol: sym}
			aggs[sym] = row
		}
		row.Trades++
		switch e.Trade.Result() {
		case types.ResultWin:
			row.Wins++
		case types.ResultLoss:
			row.Losses++
		case types.ResultBreakeven:
			row.Breakeven++
		}
		row.PnL += deref(e.Trade.PnL)
		row.Fees += deref(e.Trade.Fees)
		row.Commissions += deref(e.Trade.Commissions)
	}
	if len(aggs) == 0 {
		return "", nil
	}

	keys := make([]string, 0, len(aggs))
	for k := range aggs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	outPath := s.csvPath(t)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return "", err
	}
	out, err := os.Create(outPath)
	if err != nil {
		return "", err
	}
	defer out.Close()

	w := csv.NewWriter(out)
	headers := []string{"symbol", "trades", "wins", "losses", "breakeven", "pnl", "fees", "commissions", "net_pnl"}
	if err := w.Write(headers); err != nil {
		return "", err
	}
	var total aggRow
	total.Symbol = "TOTAL"
	for _, k := range keys {
		r := aggs[k]
		if err := w.Write(record(r)); err != nil {
			return "", err
		}
		total.Trades += r.Trades
		total.Wins += r.Wins
		total.Losses += r.Losses
		total.Breakeven += r.Breakeven
		total.PnL += r.PnL
		total.Fees += r.Fees
		total.Commissions += r.Commissions
	}
	if err := w.Write(record(&total)); err != nil {
		return "", err
	}
	w.Flush()
	return outPath, w.Error()
}

func (s *Summarizer) SummarizeToday() (string, error) { return s.SummarizeDay(s.now()) }

func record(r *aggRow) []string {
	// fees and commissions are positive costs
	net := r.PnL - r.Fees - r.Commissions
	return []string{
		r.Symbol,
		strconv.Itoa(r.Trades),
		strconv.Itoa(r.Wins),
		strconv.Itoa(r.Losses),
		strconv.Itoa(r.Breakeven),
		fmt.Sprintf("%.2f", r.PnL),
		fmt.Sprintf("%.2f", r.Fees),
		fmt.Sprintf("%.2f", r.Commissions),
		fmt.Sprintf("%.2f", net),
	}
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
