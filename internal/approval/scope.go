package approval

import (
	"bytes"
	"encoding/json"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Scope is the batch-year reach of a single membership grant. It is a
// closed set of variants: NoScope, YearSet, and YearRange.
type Scope interface {
	// Contains reports whether the scope covers the batch year.
	Contains(year int) bool
	// Years enumerates the covered years in ascending order.
	// NoScope returns nil.
	Years() []int
}

// NoScope is a grant whose params were absent, empty, or malformed.
// It contributes no batch-scoped years.
type NoScope struct{}

func (NoScope) Contains(int) bool { return false }
func (NoScope) Years() []int      { return nil }

// YearSet is an explicit set of allowed batch years.
type YearSet map[int]struct{}

func (s YearSet) Contains(year int) bool {
	_, ok := s[year]
	return ok
}

func (s YearSet) Years() []int {
	if len(s) == 0 {
		return nil
	}
	years := make([]int, 0, len(s))
	for y := range s {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// YearRange is an inclusive range of batch years. From <= To always
// holds for ranges produced by ParseScope.
type YearRange struct {
	From int
	To   int
}

func (r YearRange) Contains(year int) bool {
	return year >= r.From && year <= r.To
}

func (r YearRange) Years() []int {
	years := make([]int, 0, r.To-r.From+1)
	for y := r.From; y <= r.To; y++ {
		years = append(years, y)
	}
	return years
}

// ParseScope normalizes a grant's raw params into a Scope. Params may
// arrive as a JSON object or as a JSON-encoded string wrapping one.
// Anything unparseable degrades to NoScope rather than an error: a
// broken grant contributes nothing, it does not abort the decision.
// Non-numeric array elements are discarded individually; a range is
// honored only when both bounds are numeric and from <= to.
func ParseScope(raw []byte) Scope {
	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return NoScope{}
	}

	// Some rows carry params double-encoded as a JSON string.
	if data[0] == '"' {
		var inner string
		if err := json.Unmarshal(data, &inner); err != nil {
			return NoScope{}
		}
		data = []byte(inner)
	}

	var body struct {
		Batches []json.RawMessage `json:"batches"`
		From    json.RawMessage   `json:"from"`
		To      json.RawMessage   `json:"to"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return NoScope{}
	}

	if len(body.Batches) > 0 {
		set := make(YearSet, len(body.Batches))
		for _, el := range body.Batches {
			if y, ok := coerceYear(el); ok {
				set[y] = struct{}{}
			}
		}
		if len(set) > 0 {
			return set
		}
		return NoScope{}
	}

	if from, ok := coerceYear(body.From); ok {
		if to, ok := coerceYear(body.To); ok && from <= to {
			return YearRange{From: from, To: to}
		}
	}

	return NoScope{}
}

// coerceYear accepts JSON numbers and numeric strings; everything
// else is discarded.
func coerceYear(raw json.RawMessage) (int, bool) {
	if len(raw) == 0 {
		return 0, false
	}

	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return int(f), true
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err == nil && !math.IsNaN(f) {
			return int(f), true
		}
	}

	return 0, false
}
