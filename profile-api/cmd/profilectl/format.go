package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/fernsky/digital-profile/profile-api/internal/stats"
)

func printPresentation(w io.Writer, p *stats.Presentation) {
	fmt.Fprintln(w, p.Title)
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
	}
	fmt.Fprintln(w)

	if len(p.Table.Rows) > 0 {
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, strings.Join(p.Table.Columns, "\t")+"\t")
		for _, row := range p.Table.Rows {
			fmt.Fprintln(tw, strings.Join(row, "\t")+"\t")
		}
		tw.Flush()
		fmt.Fprintln(w)
	}

	for _, s := range p.Scalars {
		fmt.Fprintf(w, "  %s: %s\n", s.Label, s.Display)
	}
	if len(p.Narrative) > 0 {
		fmt.Fprintln(w)
		for _, line := range p.Narrative {
			fmt.Fprintln(w, line)
		}
	}
	if len(p.Issues) > 0 {
		fmt.Fprintln(w)
		printIssues(w, p.Issues)
	}
}

func printIssues(w io.Writer, issues []stats.Issue) {
	if len(issues) == 0 {
		return
	}
	fmt.Fprintf(w, "WARNINGS (%d):\n", len(issues))
	for _, i := range issues {
		if i.Unit != "" {
			fmt.Fprintf(w, "  [%s] %s: %s\n", i.Unit, i.Field, i.Message)
		} else {
			fmt.Fprintf(w, "  %s: %s\n", i.Field, i.Message)
		}
	}
}
