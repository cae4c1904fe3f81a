package entities

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrMissingUnit = errors.New("row has no unit key")

type EventOp string

const (
	OpUpsert EventOp = "upsert"
	OpDelete EventOp = "delete"
)

// Record mirrors the row the profile API stores for a dataset unit.
type Record struct {
	Dataset   string                 `json:"dataset"`
	UnitKey   string                 `json:"unit_key"`
	Fields    map[string]interface{} `json:"fields"`
	Source    string                 `json:"source"`
	UpdatedAt time.Time              `json:"updated_at"`
}

// RecordEvent is the message published on the records topic.
type RecordEvent struct {
	Op        EventOp   `json:"op"`
	Record    Record    `json:"record"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Key is the Kafka message key, so that every change to a unit lands on the
// same partition.
func (e *RecordEvent) Key() string {
	return e.Record.Dataset + ":" + e.Record.UnitKey
}

// UnitKey joins the values of the unit fields with ":". A field may list
// aliases separated by "|"; the first one present is used. Integral numbers
// are written without a fraction so 3 and 3.0 name the same ward.
func UnitKey(row map[string]interface{}, fields []string) (string, error) {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		s := lookupUnitPart(row, strings.Split(f, "|"))
		if s == "" {
			return "", fmt.Errorf("%w: field %s is missing or empty", ErrMissingUnit, f)
		}
		parts = append(parts, s)
	}
	return strings.Join(parts, ":"), nil
}

func lookupUnitPart(row map[string]interface{}, keys []string) string {
	for _, k := range keys {
		v, ok := row[strings.TrimSpace(k)]
		if !ok || v == nil {
			continue
		}
		if s := unitPart(v); s != "" {
			return s
		}
	}
	return ""
}

func unitPart(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}
