package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitKey(t *testing.T) {
	tests := []struct {
		name    string
		row     map[string]interface{}
		fields  []string
		want    string
		wantErr bool
	}{
		{"integral float", map[string]interface{}{"ward_number": 3.0}, []string{"ward_number"}, "3", false},
		{"string ward", map[string]interface{}{"ward_number": " 7 "}, []string{"ward_number"}, "7", false},
		{"composite", map[string]interface{}{"ward_number": 2.0, "religion_type": "HINDU"}, []string{"ward_number", "religion_type"}, "2:HINDU", false},
		{"fractional", map[string]interface{}{"plot": 1.5}, []string{"plot"}, "1.5", false},
		{"missing", map[string]interface{}{"religion_type": "HINDU"}, []string{"ward_number"}, "", true},
		{"blank", map[string]interface{}{"ward_number": "  "}, []string{"ward_number"}, "", true},
		{"alias", map[string]interface{}{"wardNumber": 3.0}, []string{"ward_number|wardNumber|ward"}, "3", false},
		{"composite alias", map[string]interface{}{"ward_number": 1.0, "sourceType": "CANAL"}, []string{"ward_number|wardNumber", "source_type|sourceType"}, "1:CANAL", false},
		{"blank falls through to alias", map[string]interface{}{"ward_number": "", "ward": 4.0}, []string{"ward_number|ward"}, "4", false},
		{"no alias present", map[string]interface{}{"ward_no": 4.0}, []string{"ward_number|wardNumber"}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnitKey(tt.row, tt.fields)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMissingUnit)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecordEventKey(t *testing.T) {
	e := RecordEvent{Record: Record{Dataset: "religion_population", UnitKey: "2:HINDU"}}
	assert.Equal(t, "religion_population:2:HINDU", e.Key())
}
