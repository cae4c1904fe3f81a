package stats

import (
	"sort"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// echoLocalizer renders keys and arguments verbatim so tests can see what
// was asked for.
type echoLocalizer struct{}

func (echoLocalizer) Label(group, code, _ string) string { return group + "." + code }

func (echoLocalizer) Message(key, _ string, args map[string]string) string {
	if len(args) == 0 {
		return key
	}
	keys := make([]string, 0, len(args))
	for k := range args {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + args[k]
	}
	return key + "[" + strings.Join(parts, ",") + "]"
}

func (echoLocalizer) FormatNumber(v float64, decimals int, _ string) string {
	return strconv.FormatFloat(v, 'f', decimals, 64)
}

func threeWards() []Raw {
	return []Raw{
		{"ward_number": 1, "male_population": 40, "female_population": 60, "other_population": 0, "total_households": 20},
		{"ward_number": 2, "male_population": 100, "female_population": 100, "total_households": 40},
		{"ward_number": 3, "male_population": 200, "female_population": 99, "other_population": 1, "total_households": 50},
	}
}

func TestSummarizeDemographicsWeightedHouseholdSize(t *testing.T) {
	s := SummarizeDemographics(threeWards())

	assert.Equal(t, 600.0, s.Totals.Population)
	assert.Equal(t, 110.0, s.Totals.Households)
	assert.InDelta(t, 5.4545, s.Totals.AverageHouseholdSize, 1e-4)

	var naive float64
	for _, r := range s.Rows {
		naive += r.Metrics.AverageHouseholdSize
	}
	naive /= float64(len(s.Rows))
	assert.InDelta(t, 5.3333, naive, 1e-4)
	assert.NotEqual(t, Round(naive, 4), Round(s.Totals.AverageHouseholdSize, 4))
}

func TestSummarizeDemographicsWeightedSexRatio(t *testing.T) {
	s := SummarizeDemographics(threeWards())

	// 259 females over 340 males
	assert.InDelta(t, 259.0/340.0*100, s.Totals.SexRatio, 1e-9)

	var mean float64
	for _, r := range s.Rows {
		mean += r.Metrics.SexRatio
	}
	mean /= 3
	assert.NotEqual(t, Round(mean, 4), Round(s.Totals.SexRatio, 4),
		"municipal ratio comes from summed counts, not the mean of ward ratios")
}

func TestSummarizeDemographicsShares(t *testing.T) {
	s := SummarizeDemographics(threeWards())

	var total float64
	for _, r := range s.Rows {
		total += r.Metrics.PopulationShare
	}
	assert.InDelta(t, 100.0, total, 1e-9)

	assert.Equal(t, 3, s.ByPopulation.Max.Ward.Number)
	assert.Equal(t, 1, s.ByPopulation.Min.Ward.Number)
	assert.Same(t, &s.Rows[2], s.ByPopulation.Max)
	assert.Equal(t, 1, s.BySexRatio.Max.Ward.Number)
}

func TestSummarizeDemographicsDegenerateWards(t *testing.T) {
	s := SummarizeDemographics([]Raw{
		{"ward_number": 4, "male_population": 0, "female_population": 30, "total_households": 0},
	})
	row := s.Rows[0]
	assert.Equal(t, 0.0, row.Metrics.SexRatio)
	assert.Equal(t, 0.0, row.Metrics.AverageHouseholdSize)
	assert.Equal(t, 100.0, row.Metrics.PopulationShare)
	assert.Same(t, s.ByPopulation.Max, s.ByPopulation.Min)
}

func TestSummarizeDemographicsPrefersSubgroupSum(t *testing.T) {
	s := SummarizeDemographics([]Raw{
		{"wardNumber": "२", "malePopulation": "१००", "femalePopulation": 120, "totalPopulation": 999},
	})
	assert.Equal(t, 2, s.Rows[0].Ward.Number)
	assert.Equal(t, 220.0, s.Rows[0].Ward.Population)
	require.Len(t, s.Issues, 1)
	assert.Equal(t, "ward 2", s.Issues[0].Unit)
	assert.Equal(t, FieldTotalPopulation, s.Issues[0].Field)
}

func TestSummarizeDemographicsPartialSubgroups(t *testing.T) {
	s := SummarizeDemographics([]Raw{
		{"ward_number": 1, "male_population": 50, "total_population": 100},
	})
	assert.Equal(t, 50.0, s.Totals.Population)
	require.Len(t, s.Issues, 1)
	assert.Equal(t, FieldTotalPopulation, s.Issues[0].Field)
}

func TestAggregatorsOnEmptyInput(t *testing.T) {
	assert.Equal(t, DemographicsTotals{}, AggregateDemographics(nil))
	assert.Equal(t, IrrigatedTotals{}, AggregateIrrigatedArea(nil))

	for _, name := range Datasets() {
		t.Run(name, func(t *testing.T) {
			ds, ok := LookupDataset(name)
			require.True(t, ok)
			s := ds.Summarize(nil)
			assert.Equal(t, 0, s.Len())

			p := s.Present(echoLocalizer{}, "en")
			assert.Empty(t, p.Table.Rows)
			assert.Empty(t, p.Chart)
			assert.Len(t, p.Narrative, 1)
			for _, sc := range p.Scalars {
				assert.Equal(t, 0.0, sc.Value, sc.Key)
			}
		})
	}
}

func TestSummarizeIrrigatedArea(t *testing.T) {
	s := SummarizeIrrigatedArea([]Raw{
		{"ward_number": 1, "irrigated_area_hectares": 30, "unirrigated_area_hectares": 70},
		{"ward_number": 2, "irrigated_area_hectares": 90, "unirrigated_area_hectares": 10, "total_area_hectares": 100},
		{"ward_number": 3, "irrigated_area_hectares": 0, "unirrigated_area_hectares": 0},
	})

	assert.Equal(t, 120.0, s.Totals.Irrigated)
	assert.Equal(t, 200.0, s.Totals.Total)
	assert.Equal(t, 60.0, s.Totals.Coverage)
	assert.Equal(t, 30.0, s.Rows[0].Metrics.Coverage)
	assert.Equal(t, 75.0, s.Rows[1].Metrics.IrrigatedShare)
	assert.Equal(t, 0.0, s.Rows[2].Metrics.Coverage)

	assert.Equal(t, 2, s.ByCoverage.Max.Ward.Number)
	assert.Equal(t, 3, s.ByCoverage.Min.Ward.Number)
	assert.Empty(t, s.Issues)
}

func TestSummarizeDistribution(t *testing.T) {
	s := SummarizeDistribution(IrrigationSources, []Raw{
		{"ward_number": 1, "source_type": "canal", "coverage_hectares": 30},
		{"ward_number": 1, "source_type": "TUBE_WELL", "coverage_hectares": 30},
		{"ward_number": 2, "source_type": "CANAL", "coverage_hectares": 20},
		{"ward_number": 2, "source_type": "POND", "coverage_hectares": 20},
	})

	want := []CategoryRow{
		{Category: Category{Code: "CANAL", Magnitude: 50}, Percentage: 50},
		{Category: Category{Code: "TUBE_WELL", Magnitude: 30}, Percentage: 30},
		{Category: Category{Code: "POND", Magnitude: 20}, Percentage: 20},
	}
	if diff := cmp.Diff(want, s.Rows, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}

	assert.Equal(t, 100.0, s.Total)
	assert.InDelta(t, 0.62, s.Diversity, 1e-9)
	assert.InDelta(t, 50.0, s.Dependency, 1e-9)
	assert.Equal(t, 65.0, s.CompositeScore)
	assert.Equal(t, "CANAL", s.ByMagnitude.Max.Category.Code)
	assert.Equal(t, "POND", s.ByMagnitude.Min.Category.Code)
}

func TestSummarizeDistributionManyCategoriesClamped(t *testing.T) {
	raws := make([]Raw, 0, 25)
	for i := 0; i < 25; i++ {
		raws = append(raws, Raw{"religion_type": "R" + strconv.Itoa(i), "population": 10})
	}
	s := SummarizeDistribution(ReligionPopulation, raws)
	assert.Equal(t, 25, s.Len())
	assert.Equal(t, 100.0, s.CompositeScore)
	assert.InDelta(t, 0.96, s.Diversity, 1e-9)
}

func TestDistributionMissingCode(t *testing.T) {
	s := SummarizeDistribution(ReligionPopulation, []Raw{{"population": 5}})
	assert.Equal(t, "OTHER", s.Rows[0].Category.Code)
	assert.Equal(t, 0.0, s.Diversity)
	assert.Equal(t, 100.0, s.Dependency)
}

func TestDemographicsPresent(t *testing.T) {
	p := SummarizeDemographics(threeWards()).Present(echoLocalizer{}, "en")

	assert.Equal(t, DatasetWardDemographics, p.Dataset)
	assert.Equal(t, "ward_demographics.title", p.Title)
	require.Len(t, p.Table.Rows, 3)
	assert.Len(t, p.Table.Columns, len(p.Table.Rows[0]))
	assert.Equal(t, []string{"ward.name[number=1]", "40", "60", "0", "100", "20", "16.67%", "150.00", "5.00"}, p.Table.Rows[0])

	require.Len(t, p.Chart, 3)
	assert.Equal(t, ChartPoint{Category: "ward-2", Label: "ward.name[number=2]", Value: 200, Percentage: 33.33}, p.Chart[1])

	hh, ok := p.Scalar("average_household_size")
	require.True(t, ok)
	assert.Equal(t, 5.45, hh.Value)
	assert.Equal(t, "5.45", hh.Display)

	require.Len(t, p.Narrative, 3)
	assert.Contains(t, p.Narrative[0], "population=600")

	assert.Equal(t, "Dataset", p.StructuredData["@type"])
	assert.Equal(t, "https://schema.org", p.StructuredData["@context"])
	measured, ok := p.StructuredData["variableMeasured"].([]map[string]any)
	require.True(t, ok)
	assert.Len(t, measured, len(p.Scalars))
}

func TestDistributionPresentOrdersTableByMagnitude(t *testing.T) {
	p := SummarizeDistribution(IrrigationSources, []Raw{
		{"source_type": "POND", "coverage_hectares": 20},
		{"source_type": "CANAL", "coverage_hectares": 50},
		{"source_type": "RIVER", "coverage_hectares": 30},
	}).Present(echoLocalizer{}, "en")

	assert.Equal(t, "irrigation_source.CANAL", p.Table.Rows[0][0])
	assert.Equal(t, "50.00%", p.Table.Rows[0][2])
	assert.Equal(t, "POND", p.Chart[0].Category)

	score, ok := p.Scalar("composite_score")
	require.True(t, ok)
	assert.Equal(t, 65.0, score.Value)
}

func TestDatasetUnitKey(t *testing.T) {
	ds, _ := LookupDataset(DatasetIrrigationSources)
	assert.Equal(t, "3:CANAL", ds.UnitKey(Raw{"ward_number": 3.0, "source_type": "CANAL"}))
	assert.Equal(t, "", ds.UnitKey(Raw{"ward_number": 3}))

	demo, _ := LookupDataset(DatasetWardDemographics)
	assert.Equal(t, "7", demo.UnitKey(Raw{"ward_number": "7"}))
	assert.Equal(t, []string{FieldWard}, demo.UnitFields())

	t.Run("aliases", func(t *testing.T) {
		assert.Equal(t, "3", demo.UnitKey(Raw{"wardNumber": 3, "malePopulation": 10}))
		assert.Equal(t, "1:CANAL", ds.UnitKey(Raw{"ward_number": 1, "sourceType": "CANAL"}))

		religion, _ := LookupDataset(DatasetReligionPopulation)
		assert.Equal(t, "2:HINDU", religion.UnitKey(Raw{"ward": "२", "religionType": "HINDU"}))
	})

	t.Run("agrees with the normalizer", func(t *testing.T) {
		row := Raw{"wardNumber": 3.0, "malePopulation": 10}
		s := SummarizeDemographics([]Raw{row})
		require.Len(t, s.Rows, 1)
		assert.Equal(t, itoa(s.Rows[0].Ward.Number), demo.UnitKey(row))
	})

	_, ok := LookupDataset("fish_farms")
	assert.False(t, ok)
	assert.Equal(t, []string{DatasetIrrigationSources, DatasetReligionPopulation, DatasetWardDemographics, DatasetWardIrrigatedArea}, Datasets())
}

func TestCanonicalUnitKey(t *testing.T) {
	tests := map[string]string{
		"3":        "3",
		"03":       "3",
		"3.0":      "3",
		" 4 ":      "4",
		"2:HINDU":  "2:HINDU",
		"02:CANAL": "2:CANAL",
		"1.5":      "1.5",
		"":         "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalUnitKey(in), in)
	}
}
