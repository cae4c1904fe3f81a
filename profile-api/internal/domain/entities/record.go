package entities

import (
	"fmt"
	"strings"
	"time"

	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

const maxFieldsPerRecord = 64

// Record is one stored row of a dataset: a ward, or a ward/category pair.
type Record struct {
	ID        string                 `json:"id" db:"id"`
	Dataset   string                 `json:"dataset" db:"dataset"`
	UnitKey   string                 `json:"unit_key" db:"unit_key"`
	Fields    map[string]interface{} `json:"fields" db:"fields"`
	Source    string                 `json:"source" db:"source"`
	UpdatedAt time.Time              `json:"updated_at" db:"updated_at"`
	CreatedAt time.Time              `json:"created_at" db:"created_at"`
}

// Validate also requires the unit key to be the one the fields name, so a
// ward cannot be stored twice under different keys.
func (r *Record) Validate() error {
	if r.Dataset == "" {
		return ValidationError{Field: "dataset", Reason: "must not be empty"}
	}
	ds, ok := stats.LookupDataset(r.Dataset)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownDataset, r.Dataset)
	}
	if r.UnitKey == "" {
		return ValidationError{Field: "unit_key", Reason: "must not be empty"}
	}
	if len(r.UnitKey) > 64 {
		return ValidationError{Field: "unit_key", Reason: "must be at most 64 characters"}
	}
	if len(r.Fields) == 0 {
		return ValidationError{Field: "fields", Reason: "must not be empty"}
	}
	if len(r.Fields) > maxFieldsPerRecord {
		return ValidationError{Field: "fields", Reason: fmt.Sprintf("must have at most %d entries", maxFieldsPerRecord)}
	}

	derived := ds.UnitKey(r.Raw())
	if derived == "" {
		return ValidationError{Field: "unit_key", Reason: fmt.Sprintf("fields must include %s", strings.Join(ds.UnitFields(), ", "))}
	}
	if stats.CanonicalUnitKey(r.UnitKey) != derived {
		return ValidationError{Field: "unit_key", Reason: fmt.Sprintf("%q does not match %q named by the fields", r.UnitKey, derived)}
	}
	return nil
}

func (r *Record) Raw() stats.Raw {
	return stats.Raw(r.Fields)
}

type EventOp string

const (
	OpUpsert EventOp = "upsert"
	OpDelete EventOp = "delete"
)

// RecordEvent is the message carried on the records topic.
type RecordEvent struct {
	Op        EventOp   `json:"op"`
	Record    Record    `json:"record"`
	EmittedAt time.Time `json:"emitted_at"`
}

func (e *RecordEvent) Validate() error {
	switch e.Op {
	case OpUpsert:
		return e.Record.Validate()
	case OpDelete:
		if _, ok := stats.LookupDataset(e.Record.Dataset); !ok {
			return fmt.Errorf("%w: %s", ErrUnknownDataset, e.Record.Dataset)
		}
		if e.Record.UnitKey == "" {
			return ValidationError{Field: "unit_key", Reason: "must not be empty"}
		}
		return nil
	default:
		return ValidationError{Field: "op", Reason: fmt.Sprintf("unsupported operation %q", e.Op)}
	}
}
