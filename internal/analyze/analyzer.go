// Package analyze implements the aggregation stage: the accumulated lake
// history is folded into per-symbol totals and first/last prices, then
// ranked into the leaderboard views the report renders.
package analyze

import (
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strconv"
	"strings"

	"tsecli/internal/errors"
)

// Column labels of the market-watch table the aggregation depends on. The
// converter writes tables verbatim, so these are the upstream Persian labels.
const (
	ColSymbol = "نماد"
	ColCount  = "تعداد"
	ColVolume = "حجم"
	ColValue  = "ارزش"
	ColOpen   = "اولین"
	ColClose  = "قیمت پایانی - مقدار"
)

// Entry is one leaderboard row: a symbol and the metric it is ranked by.
type Entry struct {
	Symbol string
	Metric float64
}

// ChangeEntry is one price-change leaderboard row.
type ChangeEntry struct {
	Symbol     string
	FirstPrice float64
	LastPrice  float64
	ChangePct  float64
}

// Analysis holds the six ranked views over the full lake history.
type Analysis struct {
	TopN    int
	Symbols int

	HighestVolume []Entry
	LowestVolume  []Entry
	HighestCount  []Entry
	LowestCount   []Entry
	HighestValue  []Entry
	LowestValue   []Entry

	// TopIncrease and TopDecrease hold only strictly positive and strictly
	// negative changes respectively, so either may carry fewer than TopN rows.
	TopIncrease []ChangeEntry
	TopDecrease []ChangeEntry
}

// Analyzer computes leaderboard views from a lake dataset.
type Analyzer struct {
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer.
func NewAnalyzer(logger *slog.Logger) *Analyzer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Analyzer{logger: logger}
}

// symbolStats accumulates one symbol's history while scanning the dataset.
type symbolStats struct {
	symbol     string
	count      float64
	volume     float64
	value      float64
	firstPrice float64
	lastPrice  float64
}

// Analyze folds the dataset into per-symbol aggregates and ranks the top and
// bottom topN by volume, trade count and value, plus the strongest price
// increases and decreases. Ties keep source iteration order.
func (a *Analyzer) Analyze(ds *Dataset, topN int) (*Analysis, error) {
	if topN <= 0 {
		return nil, errors.NewParameterError(
			fmt.Sprintf("the analyze number (%d) is not valid, it must be larger than 0", topN))
	}

	cols := struct{ symbol, count, volume, value, open, close int }{}
	var err error
	if cols.symbol, err = ds.columnIndex(ColSymbol); err != nil {
		return nil, err
	}
	if cols.count, err = ds.columnIndex(ColCount); err != nil {
		return nil, err
	}
	if cols.volume, err = ds.columnIndex(ColVolume); err != nil {
		return nil, err
	}
	if cols.value, err = ds.columnIndex(ColValue); err != nil {
		return nil, err
	}
	if cols.open, err = ds.columnIndex(ColOpen); err != nil {
		return nil, err
	}
	if cols.close, err = ds.columnIndex(ColClose); err != nil {
		return nil, err
	}

	// Accumulate in first-seen order; that order is the tie-breaker for every
	// ranking below.
	var order []string
	stats := make(map[string]*symbolStats)

	for _, row := range ds.Rows {
		if cols.symbol >= len(row) {
			continue
		}
		symbol := strings.TrimSpace(row[cols.symbol])
		if symbol == "" {
			continue
		}

		s, ok := stats[symbol]
		if !ok {
			s = &symbolStats{symbol: symbol, firstPrice: cell(row, cols.open)}
			stats[symbol] = s
			order = append(order, symbol)
		}

		s.count += cell(row, cols.count)
		s.volume += cell(row, cols.volume)
		s.value += cell(row, cols.value)
		s.lastPrice = cell(row, cols.close)
	}

	if topN > len(order) {
		return nil, errors.NewParameterError(fmt.Sprintf(
			"the analyze number (%d) is larger than the number of stocks (%d)", topN, len(order)))
	}

	all := make([]*symbolStats, len(order))
	for i, symbol := range order {
		all[i] = stats[symbol]
	}

	analysis := &Analysis{
		TopN:          topN,
		Symbols:       len(order),
		HighestVolume: rank(all, topN, func(s *symbolStats) float64 { return s.volume }, true),
		LowestVolume:  rank(all, topN, func(s *symbolStats) float64 { return s.volume }, false),
		HighestCount:  rank(all, topN, func(s *symbolStats) float64 { return s.count }, true),
		LowestCount:   rank(all, topN, func(s *symbolStats) float64 { return s.count }, false),
		HighestValue:  rank(all, topN, func(s *symbolStats) float64 { return s.value }, true),
		LowestValue:   rank(all, topN, func(s *symbolStats) float64 { return s.value }, false),
		TopIncrease:   rankChanges(all, topN, true),
		TopDecrease:   rankChanges(all, topN, false),
	}

	a.logger.Info("analysis complete",
		slog.Int("rows", len(ds.Rows)),
		slog.Int("symbols", len(order)),
		slog.Int("top_n", topN))

	return analysis, nil
}

// changePct computes the percent change between first and last price,
// rounded to two decimal places. A zero first price has no meaningful change.
func (s *symbolStats) changePct() float64 {
	if s.firstPrice == 0 {
		return 0
	}
	return math.Round((s.lastPrice-s.firstPrice)/s.firstPrice*100*100) / 100
}

func rank(all []*symbolStats, topN int, metric func(*symbolStats) float64, descending bool) []Entry {
	sorted := append([]*symbolStats(nil), all...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if descending {
			return metric(sorted[i]) > metric(sorted[j])
		}
		return metric(sorted[i]) < metric(sorted[j])
	})

	entries := make([]Entry, 0, topN)
	for _, s := range sorted[:topN] {
		entries = append(entries, Entry{Symbol: s.symbol, Metric: metric(s)})
	}
	return entries
}

// rankChanges ranks strictly positive (or strictly negative) percent changes.
// Fewer than topN rows come back when not enough symbols qualify.
func rankChanges(all []*symbolStats, topN int, increases bool) []ChangeEntry {
	var qualified []*symbolStats
	for _, s := range all {
		pct := s.changePct()
		if (increases && pct > 0) || (!increases && pct < 0) {
			qualified = append(qualified, s)
		}
	}

	sort.SliceStable(qualified, func(i, j int) bool {
		if increases {
			return qualified[i].changePct() > qualified[j].changePct()
		}
		return qualified[i].changePct() < qualified[j].changePct()
	})

	if len(qualified) > topN {
		qualified = qualified[:topN]
	}

	entries := make([]ChangeEntry, 0, len(qualified))
	for _, s := range qualified {
		entries = append(entries, ChangeEntry{
			Symbol:     s.symbol,
			FirstPrice: s.firstPrice,
			LastPrice:  s.lastPrice,
			ChangePct:  s.changePct(),
		})
	}
	return entries
}

// cell parses a numeric cell, tolerating thousand separators and blanks.
func cell(row []string, idx int) float64 {
	if idx >= len(row) {
		return 0
	}
	v, _ := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(row[idx]), ",", ""), 64)
	return v
}
