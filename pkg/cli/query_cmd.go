package cli

import (
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"prism/internal/domain"
	"prism/internal/service/query"
)

func newQueryCmd() *cobra.Command {
	var explore string
	var dimensions []string
	var metrics []string
	var limit int

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a metric query and print the shaped result",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := clientFrom(cmd.Context())

			sel := domain.QuerySelection{
				Explore:    explore,
				Dimensions: toFieldIDs(dimensions),
				Metrics:    toFieldIDs(metrics),
				Limit:      limit,
			}

			var result query.RunResult
			if err := client.Post(cmd.Context(), "/api/v1/query/run", sel, &result); err != nil {
				return err
			}

			if outputFormat(cmd) == "json" {
				return printJSON(os.Stdout, result)
			}
			return printResultTable(os.Stdout, &result)
		},
	}

	cmd.Flags().StringVarP(&explore, "explore", "e", "", "explore to query (required)")
	cmd.Flags().StringSliceVarP(&dimensions, "dimension", "d", nil, "dimension field id (repeatable)")
	cmd.Flags().StringSliceVarP(&metrics, "metric", "m", nil, "metric field id (repeatable)")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "row limit (0 uses the server default)")
	_ = cmd.MarkFlagRequired("explore")
	return cmd
}

func toFieldIDs(values []string) []domain.FieldID {
	ids := make([]domain.FieldID, len(values))
	for i, v := range values {
		ids[i] = domain.FieldID(v)
	}
	return ids
}

// printResultTable renders shaped rows with query column order: dimensions,
// then metrics, then table calculations; leftover columns sorted by name.
func printResultTable(w io.Writer, result *query.RunResult) error {
	columns := []domain.FieldID{}
	columns = append(columns, result.Query.Dimensions...)
	columns = append(columns, result.Query.Metrics...)
	for i := range result.Query.TableCalculations {
		columns = append(columns, result.Query.TableCalculations[i].FieldID())
	}

	known := map[domain.FieldID]bool{}
	for _, id := range columns {
		known[id] = true
	}
	var extras []string
	for id := range result.FieldTypes {
		if !known[id] {
			extras = append(extras, string(id))
		}
	}
	sort.Strings(extras)
	for _, id := range extras {
		columns = append(columns, domain.FieldID(id))
	}

	header := make([]string, len(columns))
	for i, id := range columns {
		header[i] = string(id)
	}
	rows := make([][]string, len(result.Rows))
	for i, row := range result.Rows {
		cells := make([]string, len(columns))
		for j, id := range columns {
			if cell, ok := row[id]; ok {
				cells[j] = cell.Formatted
			} else {
				cells[j] = domain.NullDisplay
			}
		}
		rows[i] = cells
	}
	return printTable(w, header, rows)
}
