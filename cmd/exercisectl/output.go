package main

import (
	"alcyxob/fitness-catalog/internal/domain"
	"alcyxob/fitness-catalog/internal/service"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// outputFormat specifies how to render CLI output.
type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

// parseOutputFormat parses and validates the output format flag.
func parseOutputFormat(s string) (outputFormat, error) {
	switch strings.ToLower(s) {
	case "table", "":
		return outputTable, nil
	case "json":
		return outputJSON, nil
	case "yaml":
		return outputYAML, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (supported: table, json, yaml)", s)
	}
}

// printOutput renders data in the requested format.
// For table output, headers and rows must be provided.
func printOutput(w io.Writer, format outputFormat, data any, headers []string, rows [][]string) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(data)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(data)
	default:
		return printTable(w, headers, rows)
	}
}

// printTable writes aligned columnar output to the writer.
func printTable(w io.Writer, headers []string, rows [][]string) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintln(tw, strings.ToUpper(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	return tw.Flush()
}

// summaryView is the stable, serializable shape of a pass summary.
type summaryView struct {
	RunID     string `json:"runId" yaml:"runId"`
	Mode      string `json:"mode" yaml:"mode"`
	Created   int    `json:"created" yaml:"created"`
	Updated   int    `json:"updated" yaml:"updated"`
	Linked    int    `json:"linked" yaml:"linked"`
	Skipped   int    `json:"skipped" yaml:"skipped"`
	Unmatched int    `json:"unmatched" yaml:"unmatched"`
	MissingID int    `json:"missingId" yaml:"missingId"`
	Failed    int    `json:"failed" yaml:"failed"`
	Duration  string `json:"duration" yaml:"duration"`
}

func printSummary(w io.Writer, format outputFormat, s service.Summary) error {
	view := summaryView{
		RunID:     s.RunID,
		Mode:      s.Mode,
		Created:   s.Created,
		Updated:   s.Updated,
		Linked:    s.Linked,
		Skipped:   s.Skipped,
		Unmatched: s.Unmatched,
		MissingID: s.MissingID,
		Failed:    s.Failed,
		Duration:  s.Duration().Round(time.Millisecond).String(),
	}
	headers := []string{"mode", "created", "updated", "linked", "skipped", "unmatched", "missing id", "failed", "duration"}
	rows := [][]string{{
		view.Mode,
		strconv.Itoa(view.Created),
		strconv.Itoa(view.Updated),
		strconv.Itoa(view.Linked),
		strconv.Itoa(view.Skipped),
		strconv.Itoa(view.Unmatched),
		strconv.Itoa(view.MissingID),
		strconv.Itoa(view.Failed),
		view.Duration,
	}}
	return printOutput(w, format, view, headers, rows)
}

// missingView is one record without a catalog id.
type missingView struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

func printMissing(w io.Writer, format outputFormat, exercises []domain.Exercise) error {
	views := make([]missingView, 0, len(exercises))
	rows := make([][]string, 0, len(exercises))
	for _, ex := range exercises {
		views = append(views, missingView{ID: ex.ID, Name: ex.Name})
		rows = append(rows, []string{ex.ID, ex.Name})
	}
	if format == outputTable && len(exercises) == 0 {
		_, err := fmt.Fprintln(w, "All exercises have a catalog id.")
		return err
	}
	return printOutput(w, format, views, []string{"id", "name"}, rows)
}
