package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fernsky/digital-profile/profile-api/internal/labels"
	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

var errInvalidRecords = errors.New("record file has invalid rows")

type summarizeOptions struct {
	path    string
	dataset string
	lang    string
	format  string
	labels  string
}

// recordFile is either a bare list of rows or a mapping with the dataset
// name next to its rows.
type recordFile struct {
	Dataset string      `yaml:"dataset"`
	Rows    []stats.Raw `yaml:"rows"`
}

func loadRecords(path, dataset string) (stats.Dataset, []stats.Raw, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return stats.Dataset{}, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return stats.Dataset{}, nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	var file recordFile
	if len(node.Content) > 0 && node.Content[0].Kind == yaml.SequenceNode {
		err = node.Content[0].Decode(&file.Rows)
	} else {
		err = node.Decode(&file)
	}
	if err != nil {
		return stats.Dataset{}, nil, fmt.Errorf("failed to decode rows of %s: %w", path, err)
	}

	if dataset == "" {
		dataset = file.Dataset
	}
	if dataset == "" {
		return stats.Dataset{}, nil, fmt.Errorf("no dataset given and %s does not name one", path)
	}
	ds, ok := stats.LookupDataset(dataset)
	if !ok {
		return stats.Dataset{}, nil, fmt.Errorf("unknown dataset %q", dataset)
	}
	return ds, file.Rows, nil
}

func runDatasets(w io.Writer) error {
	catalog, err := labels.Default()
	if err != nil {
		return err
	}
	locale := catalog.Resolve(labels.LocaleEnglish)
	for _, name := range stats.Datasets() {
		fmt.Fprintf(w, "%-22s %s\n", name, catalog.Message(name+".title", locale, nil))
	}
	return nil
}

func runSummarize(w io.Writer, opts summarizeOptions) error {
	catalog, err := labels.Load(opts.labels)
	if err != nil {
		return err
	}
	ds, rows, err := loadRecords(opts.path, opts.dataset)
	if err != nil {
		return err
	}

	p := ds.Summarize(rows).Present(catalog, catalog.Resolve(opts.lang))

	switch opts.format {
	case "table", "":
		printPresentation(w, &p)
		return nil
	case "json":
		return writeJSON(w, p)
	case "jsonld":
		return writeJSON(w, p.StructuredData)
	default:
		return fmt.Errorf("unknown format %q", opts.format)
	}
}

func runValidate(w io.Writer, path, dataset string) error {
	ds, rows, err := loadRecords(path, dataset)
	if err != nil {
		return err
	}

	seen := make(map[string]int, len(rows))
	invalid := 0
	for i, row := range rows {
		key := ds.UnitKey(row)
		switch {
		case key == "":
			fmt.Fprintf(w, "  row %d: missing unit fields %v\n", i+1, ds.UnitFields())
			invalid++
		case seen[key] > 0:
			fmt.Fprintf(w, "  row %d: duplicate unit %s (first seen in row %d)\n", i+1, key, seen[key])
			invalid++
		default:
			seen[key] = i + 1
		}
	}

	issues := ds.Summarize(rows).Problems()
	printIssues(w, issues)

	if invalid > 0 {
		fmt.Fprintf(w, "Result: INVALID (%d rows, %d invalid, %d issues)\n", len(rows), invalid, len(issues))
		return errInvalidRecords
	}
	fmt.Fprintf(w, "Result: VALID (%d rows, %d issues)\n", len(rows), len(issues))
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
