// Package cli renders windguide results for the terminal.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/hyperjump/windguide/internal/models"
	"github.com/hyperjump/windguide/internal/search"
	"github.com/hyperjump/windguide/pkg/utils"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputCompact prints one result per line.
	OutputCompact OutputFormat = "compact"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

const descriptionWidth = 72

// ParseOutputFormat validates a --output flag value.
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", OutputText:
		return OutputText, nil
	case OutputCompact, OutputJSON:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text, compact or json)", s)
	}
}

// WriteSearchResults writes a search response to w in the given format.
func WriteSearchResults(w io.Writer, resp *models.SearchResponse, format OutputFormat) error {
	switch format {
	case OutputJSON:
		return writeJSON(w, resp)
	case OutputCompact:
		return writeSearchCompact(w, resp)
	default:
		return writeSearchText(w, resp)
	}
}

func writeSearchText(w io.Writer, resp *models.SearchResponse) error {
	if resp.Query == "" {
		_, err := fmt.Fprintln(w, "Type a query to search the guide.")
		return err
	}
	fmt.Fprintf(w, "\nFound %d results for %q in %dms\n", resp.Total, resp.Query, resp.QueryTime)
	if resp.Total == 0 {
		if len(resp.Suggestions) > 0 {
			fmt.Fprintf(w, "Did you mean: %s?\n", strings.Join(resp.Suggestions, ", "))
		}
		return nil
	}
	fmt.Fprintln(w)

	if len(resp.Groups) > 0 {
		for _, g := range resp.Groups {
			fmt.Fprintf(w, "== %s ==\n", g.Label)
			for _, r := range g.Results {
				writeOneResult(w, r)
			}
		}
		return nil
	}
	for _, r := range resp.Results {
		writeOneResult(w, r)
	}
	return nil
}

func writeOneResult(w io.Writer, r *models.SearchResult) {
	fmt.Fprintf(w, "%2d. %s  [%s] %s\n", r.Rank, r.Entry.Topic, r.Entry.SectionLabel, r.Anchor)
	fmt.Fprintf(w, "    %s\n", utils.Truncate(r.Entry.Description, descriptionWidth))
}

func writeSearchCompact(w io.Writer, resp *models.SearchResponse) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, r := range resp.Results {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Score, r.Entry.ID, r.Entry.Topic, r.Entry.SectionLabel)
	}
	return tw.Flush()
}

// WriteSections lists sections with their entry counts.
func WriteSections(w io.Writer, sections []search.SectionSummary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, sections)
	}
	width := 0
	for _, s := range sections {
		if n := len([]rune(s.Label)); n > width {
			width = n
		}
	}
	for _, s := range sections {
		fmt.Fprintf(w, "%s  %3d  #%s\n", utils.Pad(s.Label, width), s.Entries, s.ID)
	}
	return nil
}

// WriteTopQueries prints query log statistics.
func WriteTopQueries(w io.Writer, stats []models.QueryStat, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, stats)
	}
	if len(stats) == 0 {
		_, err := fmt.Fprintln(w, "No queries logged yet.")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "QUERY\tCOUNT\tZERO HITS\tLAST SEEN")
	for _, s := range stats {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\n",
			utils.Truncate(s.Query, 40), s.Count, s.ZeroHits, s.LastSeen.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
