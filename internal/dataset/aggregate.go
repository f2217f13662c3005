package dataset

import (
	"sort"
	"time"

	"leadsboard/server/internal/models"
)

// Selector extracts a grouping key from a lead.
type Selector func(models.Lead) string

// Value extracts a numeric measure from a lead.
type Value func(models.Lead) float64

// Group is one aggregated bucket. The presentation layer branches on how
// many groups come back (none, one or many), so buckets are never merged
// or padded here.
type Group struct {
	Key   string  `json:"key"`
	Count int     `json:"count"`
	Value float64 `json:"value"`
}

func Count(leads []models.Lead) int {
	return len(leads)
}

func Sum(leads []models.Lead, value Value) float64 {
	var total float64
	for _, l := range leads {
		total += value(l)
	}
	return total
}

// Mean returns 0 for an empty slice.
func Mean(leads []models.Lead, value Value) float64 {
	if len(leads) == 0 {
		return 0
	}
	return Sum(leads, value) / float64(len(leads))
}

// CountBy counts leads per key, sorted by key.
func CountBy(leads []models.Lead, key Selector) []Group {
	counts := make(map[string]int)
	for _, l := range leads {
		counts[key(l)]++
	}
	groups := make([]Group, 0, len(counts))
	for k, c := range counts {
		groups = append(groups, Group{Key: k, Count: c, Value: float64(c)})
	}
	sortGroups(groups)
	return groups
}

// SumBy sums a measure per key, sorted by key.
func SumBy(leads []models.Lead, key Selector, value Value) []Group {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for _, l := range leads {
		k := key(l)
		sums[k] += value(l)
		counts[k]++
	}
	groups := make([]Group, 0, len(sums))
	for k, s := range sums {
		groups = append(groups, Group{Key: k, Count: counts[k], Value: s})
	}
	sortGroups(groups)
	return groups
}

// MeanBy averages a measure per key, sorted by key.
func MeanBy(leads []models.Lead, key Selector, value Value) []Group {
	groups := SumBy(leads, key, value)
	for i := range groups {
		groups[i].Value /= float64(groups[i].Count)
	}
	return groups
}

// PivotTable is a wide two-key count table. Cells[i][j] counts leads with
// row key Rows[i] and column key Cols[j]; combinations without rows hold 0.
type PivotTable struct {
	Rows  []string    `json:"rows"`
	Cols  []string    `json:"cols"`
	Cells [][]float64 `json:"cells"`
}

// Pivot counts leads grouped by two keys and spreads the second key into
// columns.
func Pivot(leads []models.Lead, rowKey, colKey Selector) PivotTable {
	counts := make(map[string]map[string]float64)
	colSet := make(map[string]bool)
	for _, l := range leads {
		r, c := rowKey(l), colKey(l)
		if counts[r] == nil {
			counts[r] = make(map[string]float64)
		}
		counts[r][c]++
		colSet[c] = true
	}

	table := PivotTable{}
	for r := range counts {
		table.Rows = append(table.Rows, r)
	}
	for c := range colSet {
		table.Cols = append(table.Cols, c)
	}
	sort.Strings(table.Rows)
	sort.Strings(table.Cols)

	table.Cells = make([][]float64, len(table.Rows))
	for i, r := range table.Rows {
		table.Cells[i] = make([]float64, len(table.Cols))
		for j, c := range table.Cols {
			table.Cells[i][j] = counts[r][c]
		}
	}
	return table
}

// CountByMonth buckets leads by registration month, in chronological
// order. Leads without a parseable Created_at are left out.
func CountByMonth(leads []models.Lead) []Group {
	counts := make(map[time.Time]int)
	for _, l := range leads {
		if l.CreatedAt == nil {
			continue
		}
		month := time.Date(l.CreatedAt.Year(), l.CreatedAt.Month(), 1, 0, 0, 0, 0, time.UTC)
		counts[month]++
	}

	months := make([]time.Time, 0, len(counts))
	for m := range counts {
		months = append(months, m)
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })

	groups := make([]Group, 0, len(months))
	for _, m := range months {
		groups = append(groups, Group{
			Key:   m.Format("Jan-2006"),
			Count: counts[m],
			Value: float64(counts[m]),
		})
	}
	return groups
}

// CountYes counts leads where a flag column holds "Ja".
func CountYes(leads []models.Lead, flag Selector) int {
	n := 0
	for _, l := range leads {
		if flag(l) == models.FlagYes {
			n++
		}
	}
	return n
}

// MeanWohnflaeche averages the living area over rows where it is present.
// The column is outside the normalizer's default table, so missing values
// are skipped rather than treated as 0.
func MeanWohnflaeche(leads []models.Lead) float64 {
	var sum float64
	var count int
	for _, l := range leads {
		if l.Wohnflaeche != nil {
			sum += *l.Wohnflaeche
			count++
		}
	}
	if count == 0 {
		return 0
	}
	return sum / float64(count)
}

func sortGroups(groups []Group) {
	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
}
