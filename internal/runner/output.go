package runner

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	prettytable "github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Format selects how hash results are written.
type Format string

const (
	// FormatText writes "<digest>  <path>" lines.
	FormatText  Format = "text"
	FormatTable Format = "table"
	FormatJSON  Format = "json"
)

// ParseFormat validates a format name. An empty name selects FormatText.
func ParseFormat(name string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(name))) {
	case "", FormatText:
		return FormatText, nil
	case FormatTable:
		return FormatTable, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unsupported output format %q (want text, table or json)", name)
	}
}

// WriteResults renders hashed files in the requested format.
func WriteResults(w io.Writer, format Format, results []Result) error {
	switch format {
	case FormatJSON:
		if results == nil {
			results = []Result{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case FormatTable:
		if len(results) == 0 {
			return nil
		}
		_, err := io.WriteString(w, renderResults(results)+"\n")
		return err
	default:
		bw := bufio.NewWriter(w)
		for _, res := range results {
			fmt.Fprintf(bw, "%s  %s\n", res.Digest, res.Path)
		}
		return bw.Flush()
	}
}

func renderResults(results []Result) string {
	tw := prettytable.NewWriter()
	tw.SetStyle(prettytable.StyleRounded)
	tw.AppendHeader(prettytable.Row{"Digest", "Path", "Rows", "Columns", "Cached"})
	for _, res := range results {
		rows, columns := "-", "-"
		if !res.Cached {
			rows = strconv.Itoa(res.Rows)
			columns = strconv.Itoa(res.Columns)
		}
		cached := "no"
		if res.Cached {
			cached = "yes"
		}
		tw.AppendRow(prettytable.Row{res.Digest, res.Path, rows, columns, cached})
	}
	tw.SetColumnConfigs([]prettytable.ColumnConfig{
		{Number: 3, Align: text.AlignRight, AlignHeader: text.AlignLeft},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})
	return tw.Render()
}
