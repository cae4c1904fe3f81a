package stats

import (
	"math"
	"sort"
	"strings"
)

const (
	DatasetWardDemographics   = "ward_demographics"
	DatasetWardIrrigatedArea  = "ward_irrigated_area"
	DatasetIrrigationSources  = "irrigation_sources"
	DatasetReligionPopulation = "religion_population"
)

// Summary is the typed result of one pipeline run over a dataset.
type Summary interface {
	Len() int
	Problems() []Issue
	Present(l Localizer, locale string) Presentation
}

type Dataset struct {
	Name string
	// Units identify a row within the dataset. Their values are joined
	// with ":" when more than one is needed.
	Units     []Rule
	Summarize func([]Raw) Summary
}

var IrrigationSources = DistributionKind{
	Name:       DatasetIrrigationSources,
	LabelGroup: "irrigation_source",
	Code:       Rule{Field: "source_type", Aliases: []string{"sourceType"}},
	Magnitude:  Rule{Field: "coverage_hectares", Aliases: []string{"coverageInHectares"}},
	Decimals:   2,
}

var ReligionPopulation = DistributionKind{
	Name:       DatasetReligionPopulation,
	LabelGroup: "religion",
	Code:       Rule{Field: "religion_type", Aliases: []string{"religionType"}},
	Magnitude:  Rule{Field: "population", Aliases: []string{"population_count"}},
}

var datasets = map[string]Dataset{
	DatasetWardDemographics: {
		Name:      DatasetWardDemographics,
		Units:     []Rule{WardRule},
		Summarize: func(r []Raw) Summary { return SummarizeDemographics(r) },
	},
	DatasetWardIrrigatedArea: {
		Name:      DatasetWardIrrigatedArea,
		Units:     []Rule{WardRule},
		Summarize: func(r []Raw) Summary { return SummarizeIrrigatedArea(r) },
	},
	DatasetIrrigationSources: {
		Name:      DatasetIrrigationSources,
		Units:     []Rule{WardRule, IrrigationSources.Code},
		Summarize: func(r []Raw) Summary { return SummarizeDistribution(IrrigationSources, r) },
	},
	DatasetReligionPopulation: {
		Name:      DatasetReligionPopulation,
		Units:     []Rule{WardRule, ReligionPopulation.Code},
		Summarize: func(r []Raw) Summary { return SummarizeDistribution(ReligionPopulation, r) },
	},
}

func LookupDataset(name string) (Dataset, bool) {
	d, ok := datasets[name]
	return d, ok
}

// Datasets returns the known dataset names in sorted order.
func Datasets() []string {
	names := make([]string, 0, len(datasets))
	for name := range datasets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (d Dataset) UnitFields() []string {
	fields := make([]string, len(d.Units))
	for i, u := range d.Units {
		fields[i] = u.Field
	}
	return fields
}

// UnitKey builds the identifier of a row within its dataset, or "" when a
// unit field is missing. Unit fields are read through their aliases, the
// same way the normalizer reads them.
func (d Dataset) UnitKey(raw Raw) string {
	parts := make([]string, 0, len(d.Units))
	for _, u := range d.Units {
		v := Text(raw, u.Keys()...)
		if v == "" {
			return ""
		}
		parts = append(parts, unitPart(v))
	}
	return strings.Join(parts, ":")
}

// CanonicalUnitKey rewrites a caller-supplied key the way UnitKey writes
// it, so "03" and "3.0" both name ward 3.
func CanonicalUnitKey(key string) string {
	parts := strings.Split(key, ":")
	for i, p := range parts {
		parts[i] = unitPart(strings.TrimSpace(p))
	}
	return strings.Join(parts, ":")
}

func unitPart(v string) string {
	if n, ok := ParseNumber(v); ok && n == math.Trunc(n) && math.Abs(n) < 1e15 {
		return itoa(int(n))
	}
	return v
}
