package stats

const (
	FieldIrrigated   = "irrigated_area_hectares"
	FieldUnirrigated = "unirrigated_area_hectares"
	FieldTotalArea   = "total_area_hectares"
)

var IrrigatedAreaSchema = Schema{
	WardRule,
	{Field: FieldIrrigated, Aliases: []string{"irrigatedAreaHectares"}},
	{Field: FieldUnirrigated, Aliases: []string{"unirrigatedAreaHectares"}},
	{Field: FieldTotalArea, Aliases: []string{"totalAreaHectares"}, Fallback: SumOf(FieldIrrigated, FieldUnirrigated)},
}

type IrrigatedWard struct {
	Number      int     `json:"ward_number"`
	Irrigated   float64 `json:"irrigated_area_hectares"`
	Unirrigated float64 `json:"unirrigated_area_hectares"`
	Total       float64 `json:"total_area_hectares"`
}

type IrrigatedMetrics struct {
	Coverage       float64 `json:"coverage_percentage"`
	IrrigatedShare float64 `json:"irrigated_share"`
	AreaShare      float64 `json:"area_share"`
}

type IrrigatedRow struct {
	Ward    IrrigatedWard    `json:"ward"`
	Metrics IrrigatedMetrics `json:"metrics"`
}

type IrrigatedTotals struct {
	Wards       int     `json:"wards"`
	Irrigated   float64 `json:"irrigated_area_hectares"`
	Unirrigated float64 `json:"unirrigated_area_hectares"`
	Total       float64 `json:"total_area_hectares"`
	Coverage    float64 `json:"coverage_percentage"`
}

type IrrigatedArea struct {
	Rows       []IrrigatedRow
	Totals     IrrigatedTotals
	ByCoverage Extremes[IrrigatedRow]
	Issues     []Issue
}

func IrrigatedWardFromRaw(raw Raw) (IrrigatedWard, []Issue) {
	v, issues := IrrigatedAreaSchema.Normalize(raw)
	w := IrrigatedWard{
		Number:      int(v[FieldWard]),
		Irrigated:   v[FieldIrrigated],
		Unirrigated: v[FieldUnirrigated],
		Total:       v[FieldTotalArea],
	}
	return w, tagIssues(issues, "ward "+itoa(w.Number))
}

func AggregateIrrigatedArea(wards []IrrigatedWard) IrrigatedTotals {
	t := IrrigatedTotals{
		Wards:       len(wards),
		Irrigated:   SumBy(wards, func(w IrrigatedWard) float64 { return w.Irrigated }),
		Unirrigated: SumBy(wards, func(w IrrigatedWard) float64 { return w.Unirrigated }),
		Total:       SumBy(wards, func(w IrrigatedWard) float64 { return w.Total }),
	}
	t.Coverage = CoveragePercentage(t.Irrigated, t.Unirrigated)
	return t
}

func SummarizeIrrigatedArea(raws []Raw) *IrrigatedArea {
	s := &IrrigatedArea{}
	wards := make([]IrrigatedWard, 0, len(raws))
	for _, raw := range raws {
		w, issues := IrrigatedWardFromRaw(raw)
		wards = append(wards, w)
		s.Issues = append(s.Issues, issues...)
	}

	s.Totals = AggregateIrrigatedArea(wards)
	s.Rows = make([]IrrigatedRow, len(wards))
	for i, w := range wards {
		s.Rows[i] = IrrigatedRow{Ward: w, Metrics: IrrigatedMetrics{
			Coverage:       CoveragePercentage(w.Irrigated, w.Unirrigated),
			IrrigatedShare: Percentage(w.Irrigated, s.Totals.Irrigated),
			AreaShare:      Percentage(w.Total, s.Totals.Total),
		}}
	}
	s.ByCoverage = SelectExtremes(s.Rows, func(r IrrigatedRow) float64 { return r.Metrics.Coverage })
	return s
}

func (s *IrrigatedArea) Len() int          { return len(s.Rows) }
func (s *IrrigatedArea) Problems() []Issue { return s.Issues }

func (s *IrrigatedArea) Present(l Localizer, locale string) Presentation {
	p := presenter{l: l, locale: locale}
	t := s.Totals
	out := Presentation{Issues: s.Issues}

	out.Table.Columns = p.columns("ward", "irrigated", "unirrigated", "total_area", "coverage", "irrigated_share")
	for _, r := range s.Rows {
		out.Table.Rows = append(out.Table.Rows, []string{
			p.ward(r.Ward.Number),
			p.num(r.Ward.Irrigated, 2),
			p.num(r.Ward.Unirrigated, 2),
			p.num(r.Ward.Total, 2),
			p.pct(r.Metrics.Coverage),
			p.pct(r.Metrics.IrrigatedShare),
		})
		out.Chart = append(out.Chart, ChartPoint{
			Category:   "ward-" + itoa(r.Ward.Number),
			Label:      p.ward(r.Ward.Number),
			Value:      r.Ward.Irrigated,
			Percentage: Round(r.Metrics.Coverage, 2),
		})
	}

	out.Scalars = []Scalar{
		p.scalar("wards", float64(t.Wards), 0),
		p.scalar("total_irrigated", t.Irrigated, 2),
		p.scalar("total_unirrigated", t.Unirrigated, 2),
		p.scalar("total_area", t.Total, 2),
		p.percentScalar("coverage", t.Coverage),
	}

	if s.Len() == 0 {
		out.Narrative = []string{p.msg("ward_irrigated_area.empty", nil)}
	} else {
		out.Narrative = []string{
			p.msg("ward_irrigated_area.summary", map[string]string{
				"total_area": p.num(t.Total, 2),
				"irrigated":  p.num(t.Irrigated, 2),
				"coverage":   p.pct(t.Coverage),
			}),
			p.msg("ward_irrigated_area.extremes", map[string]string{
				"best":           p.ward(s.ByCoverage.Max.Ward.Number),
				"best_coverage":  p.pct(s.ByCoverage.Max.Metrics.Coverage),
				"worst":          p.ward(s.ByCoverage.Min.Ward.Number),
				"worst_coverage": p.pct(s.ByCoverage.Min.Metrics.Coverage),
			}),
		}
	}

	p.finish(DatasetWardIrrigatedArea, &out)
	return out
}
