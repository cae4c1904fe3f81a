package stats

import "strconv"

// Localizer resolves display strings. labels.Catalog satisfies it.
type Localizer interface {
	Label(group, code, locale string) string
	Message(key, locale string, args map[string]string) string
	FormatNumber(v float64, decimals int, locale string) string
}

type Table struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

type ChartPoint struct {
	Category   string  `json:"category"`
	Label      string  `json:"label"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"`
}

type Scalar struct {
	Key     string  `json:"key"`
	Label   string  `json:"label"`
	Value   float64 `json:"value"`
	Display string  `json:"display"`
}

// Presentation is everything a page, report or search crawler needs from one
// pipeline run.
type Presentation struct {
	Dataset        string         `json:"dataset"`
	Locale         string         `json:"locale"`
	Title          string         `json:"title"`
	Description    string         `json:"description"`
	Table          Table          `json:"table"`
	Chart          []ChartPoint   `json:"chart"`
	Scalars        []Scalar       `json:"scalars"`
	Narrative      []string       `json:"narrative"`
	StructuredData map[string]any `json:"structured_data"`
	Issues         []Issue        `json:"issues,omitempty"`
}

func (p Presentation) Scalar(key string) (Scalar, bool) {
	for _, s := range p.Scalars {
		if s.Key == key {
			return s, true
		}
	}
	return Scalar{}, false
}

type presenter struct {
	l      Localizer
	locale string
}

func (p presenter) num(v float64, decimals int) string {
	return p.l.FormatNumber(v, decimals, p.locale)
}

func (p presenter) pct(v float64) string {
	return p.num(v, 2) + "%"
}

func (p presenter) label(group, code string) string {
	return p.l.Label(group, code, p.locale)
}

func (p presenter) msg(key string, args map[string]string) string {
	return p.l.Message(key, p.locale, args)
}

func (p presenter) ward(n int) string {
	return p.msg("ward.name", map[string]string{"number": p.num(float64(n), 0)})
}

func (p presenter) columns(codes ...string) []string {
	out := make([]string, len(codes))
	for i, c := range codes {
		out[i] = p.label("column", c)
	}
	return out
}

func (p presenter) scalar(key string, v float64, decimals int) Scalar {
	return Scalar{Key: key, Label: p.label("metric", key), Value: Round(v, decimals), Display: p.num(v, decimals)}
}

func (p presenter) percentScalar(key string, v float64) Scalar {
	s := p.scalar(key, v, 2)
	s.Display = p.pct(v)
	return s
}

// finish fills the dataset-level text and the schema.org Dataset block.
func (p presenter) finish(dataset string, out *Presentation) {
	out.Dataset = dataset
	out.Locale = p.locale
	out.Title = p.msg(dataset+".title", nil)
	out.Description = p.msg(dataset+".description", nil)
	if out.Chart == nil {
		out.Chart = []ChartPoint{}
	}
	if out.Table.Rows == nil {
		out.Table.Rows = [][]string{}
	}

	measured := make([]map[string]any, 0, len(out.Scalars))
	for _, s := range out.Scalars {
		measured = append(measured, map[string]any{
			"@type": "PropertyValue",
			"name":  s.Label,
			"value": s.Value,
		})
	}

	municipality := p.msg("municipality.name", nil)
	out.StructuredData = map[string]any{
		"@context":    "https://schema.org",
		"@type":       "Dataset",
		"name":        out.Title,
		"description": out.Description,
		"inLanguage":  p.locale,
		"keywords":    []string{out.Title, municipality},
		"spatialCoverage": map[string]any{
			"@type": "Place",
			"name":  municipality,
		},
		"variableMeasured": measured,
	}
}

func itoa(n int) string { return strconv.Itoa(n) }
