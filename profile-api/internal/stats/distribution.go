package stats

import "strings"

const uncategorized = "OTHER"

// DistributionKind describes where a categorical dataset keeps its category
// code and magnitude, and which label group names its categories.
type DistributionKind struct {
	Name       string
	LabelGroup string
	Code       Rule
	Magnitude  Rule
	Decimals   int
}

type Category struct {
	Code      string  `json:"code"`
	Magnitude float64 `json:"magnitude"`
}

type CategoryRow struct {
	Category   Category `json:"category"`
	Percentage float64  `json:"percentage"`
}

type Distribution struct {
	Kind           DistributionKind
	Rows           []CategoryRow
	Total          float64
	Diversity      float64
	Dependency     float64
	CompositeScore float64
	ByMagnitude    Extremes[CategoryRow]
	Issues         []Issue
}

// GroupCategories merges rows sharing a code, keeping first-seen order. Rows
// for the same category usually come from different wards.
func GroupCategories(kind DistributionKind, raws []Raw) ([]Category, []Issue) {
	schema := Schema{kind.Magnitude}
	index := make(map[string]int)
	var cats []Category
	var issues []Issue

	for _, raw := range raws {
		code := strings.ToUpper(Text(raw, kind.Code.Keys()...))
		if code == "" {
			code = uncategorized
		}
		v, iss := schema.Normalize(raw)
		issues = append(issues, tagIssues(iss, code)...)

		if i, ok := index[code]; ok {
			cats[i].Magnitude += v[kind.Magnitude.Field]
			continue
		}
		index[code] = len(cats)
		cats = append(cats, Category{Code: code, Magnitude: v[kind.Magnitude.Field]})
	}
	return cats, issues
}

func SummarizeDistribution(kind DistributionKind, raws []Raw) *Distribution {
	cats, issues := GroupCategories(kind, raws)
	s := &Distribution{Kind: kind, Issues: issues}

	magnitudes := make([]float64, len(cats))
	for i, c := range cats {
		magnitudes[i] = c.Magnitude
	}
	s.Total = sum(magnitudes)
	s.Diversity = SimpsonIndex(magnitudes)
	s.Dependency = DependencyRatio(magnitudes)
	s.CompositeScore = CompositeScore(s.Diversity, s.Dependency, len(cats))

	s.Rows = make([]CategoryRow, len(cats))
	for i, c := range cats {
		s.Rows[i] = CategoryRow{Category: c, Percentage: Percentage(c.Magnitude, s.Total)}
	}
	s.ByMagnitude = SelectExtremes(s.Rows, func(r CategoryRow) float64 { return r.Category.Magnitude })
	return s
}

func (s *Distribution) Len() int          { return len(s.Rows) }
func (s *Distribution) Problems() []Issue { return s.Issues }

func (s *Distribution) Present(l Localizer, locale string) Presentation {
	p := presenter{l: l, locale: locale}
	out := Presentation{Issues: s.Issues}
	group := s.Kind.LabelGroup

	// Table follows magnitude order, chart keeps input order.
	out.Table.Columns = p.columns("category", s.Kind.Magnitude.Field, "percentage")
	for _, r := range RankBy(s.Rows, func(r CategoryRow) float64 { return r.Category.Magnitude }) {
		out.Table.Rows = append(out.Table.Rows, []string{
			p.label(group, r.Category.Code),
			p.num(r.Category.Magnitude, s.Kind.Decimals),
			p.pct(r.Percentage),
		})
	}
	for _, r := range s.Rows {
		out.Chart = append(out.Chart, ChartPoint{
			Category:   r.Category.Code,
			Label:      p.label(group, r.Category.Code),
			Value:      r.Category.Magnitude,
			Percentage: Round(r.Percentage, 2),
		})
	}

	out.Scalars = []Scalar{
		p.scalar("categories", float64(len(s.Rows)), 0),
		p.scalar("total", s.Total, s.Kind.Decimals),
		p.scalar("diversity_index", s.Diversity, 2),
		p.percentScalar("dependency_ratio", s.Dependency),
		p.scalar("composite_score", s.CompositeScore, 0),
	}

	if s.Len() == 0 {
		out.Narrative = []string{p.msg("distribution.empty", nil)}
	} else {
		out.Narrative = []string{
			p.msg("distribution.summary", map[string]string{
				"largest":       p.label(group, s.ByMagnitude.Max.Category.Code),
				"largest_share": p.pct(s.ByMagnitude.Max.Percentage),
				"smallest":      p.label(group, s.ByMagnitude.Min.Category.Code),
				"categories":    p.num(float64(len(s.Rows)), 0),
			}),
			p.msg("distribution.diversity", map[string]string{
				"diversity": p.num(s.Diversity, 2),
				"score":     p.num(s.CompositeScore, 0),
			}),
		}
	}

	p.finish(s.Kind.Name, &out)
	return out
}
