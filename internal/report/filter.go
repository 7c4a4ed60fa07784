package report

import (
	"strconv"
	"strings"
)

// Row is a listener annotated against a baseline.
type Row struct {
	Listener
	New bool
}

// Diff annotates listeners that are absent from baseline. With an empty
// baseline nothing is reported as new.
func Diff(listeners, baseline []Listener) []Row {
	known := make(map[string]struct{}, len(baseline))
	for _, l := range baseline {
		known[l.Key()] = struct{}{}
	}
	rows := make([]Row, 0, len(listeners))
	for _, l := range listeners {
		_, seen := known[l.Key()]
		rows = append(rows, Row{Listener: l, New: len(known) > 0 && !seen})
	}
	return rows
}

// Filter narrows the rows shown to the user.
type Filter struct {
	// Query matches the process name, exe path (case-insensitively) or port.
	Query     string
	OnlyNew   bool
	OnlyRisky bool
}

// Apply returns the rows matching f.
func (f Filter) Apply(rows []Row) []Row {
	query := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]Row, 0, len(rows))
	for _, row := range rows {
		if query != "" && !row.matches(query) {
			continue
		}
		if f.OnlyNew && !row.New {
			continue
		}
		if f.OnlyRisky && !row.Risky() {
			continue
		}
		out = append(out, row)
	}
	return out
}

func (r Row) matches(query string) bool {
	return strings.Contains(strings.ToLower(r.Process), query) ||
		strings.Contains(strconv.Itoa(r.Port), query) ||
		strings.Contains(strings.ToLower(r.Exe), query)
}

// CountRisks tallies rows per risk tag. Rows with no tag count as RiskOK.
func CountRisks(rows []Row) map[string]int {
	counts := make(map[string]int, len(KnownRisks))
	for _, tag := range KnownRisks {
		counts[tag] = 0
	}
	for _, row := range rows {
		tags := row.Risks()
		if len(tags) == 0 {
			counts[RiskOK]++
			continue
		}
		for _, tag := range tags {
			if _, ok := counts[tag]; ok {
				counts[tag]++
			}
		}
	}
	return counts
}

// CountNew returns the number of rows marked new.
func CountNew(rows []Row) int {
	n := 0
	for _, row := range rows {
		if row.New {
			n++
		}
	}
	return n
}
