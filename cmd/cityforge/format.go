package main

import (
	"fmt"

	"github.com/cityforge/cityforge/pkg/report"
)

func printReport(r *report.Report) {
	if r == nil {
		return
	}

	errs := r.Errors()
	if len(errs) > 0 {
		fmt.Printf("ERRORS (%d):\n", len(errs))
		for _, f := range errs {
			printFinding(f)
		}
		fmt.Println()
	}

	var warnings, info []report.Finding
	for _, f := range r.Findings {
		switch f.Severity {
		case report.SeverityWarning:
			warnings = append(warnings, f)
		case report.SeverityInfo:
			info = append(info, f)
		}
	}

	if len(warnings) > 0 {
		fmt.Printf("WARNINGS (%d):\n", len(warnings))
		for _, f := range warnings {
			printFinding(f)
		}
		fmt.Println()
	}

	if len(info) > 0 {
		for _, f := range info {
			fmt.Printf("  [%s] %s\n", f.Stage, f.Message)
		}
		fmt.Println()
	}

	fmt.Printf("Result: %s\n", r.Summary())
}

func printFinding(f report.Finding) {
	if f.BuildingID != "" {
		fmt.Printf("  [%s] %s: %s\n", f.Stage, f.BuildingID, f.Message)
		return
	}
	fmt.Printf("  [%s] %s\n", f.Stage, f.Message)
}
