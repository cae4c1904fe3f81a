package stats

const (
	FieldWard            = "ward_number"
	FieldMale            = "male_population"
	FieldFemale          = "female_population"
	FieldOther           = "other_population"
	FieldTotalPopulation = "total_population"
	FieldHouseholds      = "total_households"
)

// WardRule reads the ward number of any ward-level row.
var WardRule = Rule{Field: FieldWard, Aliases: []string{"wardNumber", "ward"}}

var DemographicsSchema = Schema{
	WardRule,
	{Field: FieldMale, Aliases: []string{"malePopulation"}},
	{Field: FieldFemale, Aliases: []string{"femalePopulation"}},
	{Field: FieldOther, Aliases: []string{"otherPopulation"}},
	{Field: FieldTotalPopulation, Aliases: []string{"totalPopulation"}, Fallback: SumOf(FieldMale, FieldFemale, FieldOther)},
	{Field: FieldHouseholds, Aliases: []string{"totalHouseholds"}, Fallback: ZeroFallback()},
}

type Ward struct {
	Number     int     `json:"ward_number"`
	Male       float64 `json:"male_population"`
	Female     float64 `json:"female_population"`
	Other      float64 `json:"other_population"`
	Population float64 `json:"total_population"`
	Households float64 `json:"total_households"`
}

type WardMetrics struct {
	PopulationShare      float64 `json:"population_share"`
	SexRatio             float64 `json:"sex_ratio"`
	AverageHouseholdSize float64 `json:"average_household_size"`
}

type WardRow struct {
	Ward    Ward        `json:"ward"`
	Metrics WardMetrics `json:"metrics"`
}

type DemographicsTotals struct {
	Wards                int     `json:"wards"`
	Male                 float64 `json:"male_population"`
	Female               float64 `json:"female_population"`
	Other                float64 `json:"other_population"`
	Population           float64 `json:"total_population"`
	Households           float64 `json:"total_households"`
	SexRatio             float64 `json:"sex_ratio"`
	AverageHouseholdSize float64 `json:"average_household_size"`
}

type Demographics struct {
	Rows            []WardRow
	Totals          DemographicsTotals
	ByPopulation    Extremes[WardRow]
	ByHouseholdSize Extremes[WardRow]
	BySexRatio      Extremes[WardRow]
	Issues          []Issue
}

func WardFromRaw(raw Raw) (Ward, []Issue) {
	v, issues := DemographicsSchema.Normalize(raw)
	w := Ward{
		Number:     int(v[FieldWard]),
		Male:       v[FieldMale],
		Female:     v[FieldFemale],
		Other:      v[FieldOther],
		Population: v[FieldTotalPopulation],
		Households: v[FieldHouseholds],
	}
	return w, tagIssues(issues, "ward "+itoa(w.Number))
}

func WardMetricsFor(w Ward, municipalPopulation float64) WardMetrics {
	return WardMetrics{
		PopulationShare:      Percentage(w.Population, municipalPopulation),
		SexRatio:             SexRatio(w.Female, w.Male),
		AverageHouseholdSize: AverageHouseholdSize(w.Population, w.Households),
	}
}

// AggregateDemographics derives municipal ratios from the summed counts,
// never from the per-ward ratios.
func AggregateDemographics(wards []Ward) DemographicsTotals {
	t := DemographicsTotals{
		Wards:      len(wards),
		Male:       SumBy(wards, func(w Ward) float64 { return w.Male }),
		Female:     SumBy(wards, func(w Ward) float64 { return w.Female }),
		Other:      SumBy(wards, func(w Ward) float64 { return w.Other }),
		Population: SumBy(wards, func(w Ward) float64 { return w.Population }),
		Households: SumBy(wards, func(w Ward) float64 { return w.Households }),
	}
	t.SexRatio = SexRatio(t.Female, t.Male)
	t.AverageHouseholdSize = AverageHouseholdSize(t.Population, t.Households)
	return t
}

func SummarizeDemographics(raws []Raw) *Demographics {
	s := &Demographics{}
	wards := make([]Ward, 0, len(raws))
	for _, raw := range raws {
		w, issues := WardFromRaw(raw)
		wards = append(wards, w)
		s.Issues = append(s.Issues, issues...)
	}

	s.Totals = AggregateDemographics(wards)
	s.Rows = make([]WardRow, len(wards))
	for i, w := range wards {
		s.Rows[i] = WardRow{Ward: w, Metrics: WardMetricsFor(w, s.Totals.Population)}
	}

	s.ByPopulation = SelectExtremes(s.Rows, func(r WardRow) float64 { return r.Ward.Population })
	s.ByHouseholdSize = SelectExtremes(s.Rows, func(r WardRow) float64 { return r.Metrics.AverageHouseholdSize })
	s.BySexRatio = SelectExtremes(s.Rows, func(r WardRow) float64 { return r.Metrics.SexRatio })
	return s
}

func (s *Demographics) Len() int          { return len(s.Rows) }
func (s *Demographics) Problems() []Issue { return s.Issues }

func (s *Demographics) Present(l Localizer, locale string) Presentation {
	p := presenter{l: l, locale: locale}
	t := s.Totals
	out := Presentation{Issues: s.Issues}

	out.Table.Columns = p.columns("ward", "male", "female", "other", "population", "households", "share", "sex_ratio", "household_size")
	for _, r := range s.Rows {
		out.Table.Rows = append(out.Table.Rows, []string{
			p.ward(r.Ward.Number),
			p.num(r.Ward.Male, 0),
			p.num(r.Ward.Female, 0),
			p.num(r.Ward.Other, 0),
			p.num(r.Ward.Population, 0),
			p.num(r.Ward.Households, 0),
			p.pct(r.Metrics.PopulationShare),
			p.num(r.Metrics.SexRatio, 2),
			p.num(r.Metrics.AverageHouseholdSize, 2),
		})
		out.Chart = append(out.Chart, ChartPoint{
			Category:   "ward-" + itoa(r.Ward.Number),
			Label:      p.ward(r.Ward.Number),
			Value:      r.Ward.Population,
			Percentage: Round(r.Metrics.PopulationShare, 2),
		})
	}

	out.Scalars = []Scalar{
		p.scalar("wards", float64(t.Wards), 0),
		p.scalar("total_population", t.Population, 0),
		p.scalar("male", t.Male, 0),
		p.scalar("female", t.Female, 0),
		p.scalar("other", t.Other, 0),
		p.scalar("total_households", t.Households, 0),
		p.scalar("sex_ratio", t.SexRatio, 2),
		p.scalar("average_household_size", t.AverageHouseholdSize, 2),
	}

	if s.Len() == 0 {
		out.Narrative = []string{p.msg("ward_demographics.empty", nil)}
	} else {
		out.Narrative = []string{
			p.msg("ward_demographics.summary", map[string]string{
				"municipality":   p.msg("municipality.name", nil),
				"population":     p.num(t.Population, 0),
				"wards":          p.num(float64(t.Wards), 0),
				"households":     p.num(t.Households, 0),
				"household_size": p.num(t.AverageHouseholdSize, 2),
			}),
			p.msg("ward_demographics.sex_ratio", map[string]string{"sex_ratio": p.num(t.SexRatio, 2)}),
			p.msg("ward_demographics.extremes", map[string]string{
				"largest":             p.ward(s.ByPopulation.Max.Ward.Number),
				"largest_population":  p.num(s.ByPopulation.Max.Ward.Population, 0),
				"smallest":            p.ward(s.ByPopulation.Min.Ward.Number),
				"smallest_population": p.num(s.ByPopulation.Min.Ward.Population, 0),
			}),
		}
	}

	p.finish(DatasetWardDemographics, &out)
	return out
}

func tagIssues(issues []Issue, unit string) []Issue {
	for i := range issues {
		issues[i].Unit = unit
	}
	return issues
}
