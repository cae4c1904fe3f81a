package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Raw is one undecoded row as it arrives from storage or the upstream RPC.
type Raw map[string]any

// Values holds the normalized numeric fields of one row.
type Values map[string]float64

// Fallback decides what a field becomes when it is missing. A zero Fallback
// means "use 0"; one with a Formula derives the field from its Sources.
type Fallback struct {
	Sources []string
	Formula func(Values) float64
}

func ZeroFallback() Fallback { return Fallback{} }

func SumOf(fields ...string) Fallback {
	return Fallback{
		Sources: fields,
		Formula: func(v Values) float64 {
			var sum float64
			for _, f := range fields {
				sum += v[f]
			}
			return sum
		},
	}
}

func (f Fallback) derived() bool {
	return f.Formula != nil && len(f.Sources) > 0
}

type Rule struct {
	Field    string
	Aliases  []string
	Fallback Fallback
}

type Schema []Rule

// Issue is a non-fatal data quality note produced while normalizing.
type Issue struct {
	Unit    string `json:"unit,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

const derivedTolerance = 1e-6

// Normalize gives every field in the schema a concrete, finite, non-negative
// value. When any source of a derived field is present the derived value
// replaces whatever total the row carried.
func (s Schema) Normalize(raw Raw) (Values, []Issue) {
	values := make(Values, len(s))
	var issues []Issue

	for _, rule := range s {
		if rule.Fallback.derived() {
			continue
		}
		v, _, issue := rule.read(raw)
		if issue != nil {
			issues = append(issues, *issue)
		}
		values[rule.Field] = v
	}

	for _, rule := range s {
		if !rule.Fallback.derived() {
			continue
		}
		provided, present, issue := rule.read(raw)
		if issue != nil {
			issues = append(issues, *issue)
		}

		if !s.anyPresent(raw, rule.Fallback.Sources) {
			values[rule.Field] = provided
			continue
		}

		derived := finite(rule.Fallback.Formula(values))
		if present && math.Abs(provided-derived) > derivedTolerance {
			issues = append(issues, Issue{
				Field:   rule.Field,
				Message: fmt.Sprintf("provided %g disagrees with derived %g, using derived", provided, derived),
			})
		}
		values[rule.Field] = derived
	}

	return values, issues
}

func (s Schema) rule(field string) (Rule, bool) {
	for _, r := range s {
		if r.Field == field {
			return r, true
		}
	}
	return Rule{}, false
}

func (s Schema) anyPresent(raw Raw, fields []string) bool {
	for _, f := range fields {
		r, ok := s.rule(f)
		if !ok {
			r = Rule{Field: f}
		}
		if _, found := r.lookup(raw); found {
			return true
		}
	}
	return false
}

// Keys lists the field name followed by its aliases.
func (r Rule) Keys() []string {
	return append([]string{r.Field}, r.Aliases...)
}

func (r Rule) lookup(raw Raw) (any, bool) {
	for _, key := range r.Keys() {
		v, ok := raw[key]
		if !ok || v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func (r Rule) read(raw Raw) (float64, bool, *Issue) {
	v, ok := r.lookup(raw)
	if !ok {
		return 0, false, nil
	}

	n, ok := ParseNumber(v)
	if !ok {
		return 0, false, &Issue{Field: r.Field, Message: fmt.Sprintf("%v is not a number", v)}
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, true, &Issue{Field: r.Field, Message: "value is not finite"}
	}
	if n < 0 {
		return 0, true, &Issue{Field: r.Field, Message: fmt.Sprintf("negative value %g replaced with 0", n)}
	}
	return n, true, nil
}

var devanagariDigits = strings.NewReplacer(
	"०", "0", "१", "1", "२", "2", "३", "3", "४", "4",
	"५", "5", "६", "6", "७", "7", "८", "8", "९", "9",
)

// ParseNumber accepts the numeric shapes rows arrive in, including strings
// typed with Devanagari digits and thousands separators.
func ParseNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case string:
		s := devanagariDigits.Replace(strings.TrimSpace(n))
		s = strings.ReplaceAll(s, ",", "")
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	default:
		return 0, false
	}
}

// Text reads a code-like field, trying each key in order.
func Text(raw Raw, keys ...string) string {
	for _, k := range keys {
		switch v := raw[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case nil:
		default:
			return fmt.Sprint(v)
		}
	}
	return ""
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
