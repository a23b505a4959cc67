package dao

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type Time struct {
	ID    int    `db:"id" json:"id"`
	Value string `db:"time_value" json:"time_value"`
}

type Day struct {
	ID   int    `db:"id" json:"id"`
	Date string `db:"date" json:"date"`
}

type Slot struct {
	ID   int    `db:"id" json:"id"`
	Date string `db:"date" json:"date"`
	Time string `db:"time" json:"time"`
}

type SlotFilter struct {
	Date  string
	Month *Month
}

type BatchResult struct {
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
}

type MonthResult struct {
	Removed  int `json:"removed"`
	Inserted int `json:"inserted"`
	Skipped  int `json:"skipped"`
	Groups   int `json:"groups"`
}

// Group is a set of days that open exactly the same times.
type Group struct {
	Dates []string
	Times []string
}

// GroupByTimeSet buckets days by their (deduplicated, sorted) time set so a
// month can be opened with one batch per distinct set. Days with no times
// are dropped. Output order is deterministic.
func GroupByTimeSet(days map[string][]string) []Group {
	byKey := map[string]*Group{}
	for date, times := range days {
		set := normalizeTimes(times)
		if len(set) == 0 {
			continue
		}
		key := strings.Join(set, ",")
		g, ok := byKey[key]
		if !ok {
			g = &Group{Times: set}
			byKey[key] = g
		}
		g.Dates = append(g.Dates, date)
	}

	keys := make([]string, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		g := byKey[k]
		sort.Strings(g.Dates)
		groups = append(groups, *g)
	}
	return groups
}

func normalizeTimes(times []string) []string {
	seen := map[string]bool{}
	out := make([]string, 0, len(times))
	for _, t := range times {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

type Month struct {
	first time.Time
}

// ParseMonth accepts YYYY-MM.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: want YYYY-MM", s)
	}
	return Month{first: t}, nil
}

func (m Month) String() string { return m.first.Format("2006-01") }

// Bounds returns the first day of the month and of the next one.
func (m Month) Bounds() (string, string) {
	return m.first.Format(time.DateOnly), m.first.AddDate(0, 1, 0).Format(time.DateOnly)
}

func (m Month) Contains(date string) bool {
	t, err := time.Parse(time.DateOnly, date)
	if err != nil {
		return false
	}
	return t.Year() == m.first.Year() && t.Month() == m.first.Month()
}
