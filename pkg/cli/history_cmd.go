package cli

import (
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"prism/internal/history"
)

func newHistoryCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recent query executions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := clientFrom(cmd.Context())

			var resp struct {
				Data []history.Entry `json:"data"`
			}
			path := fmt.Sprintf("/api/v1/history?limit=%d", limit)
			if err := client.Get(cmd.Context(), path, &resp); err != nil {
				return err
			}

			if outputFormat(cmd) == "json" {
				return printJSON(os.Stdout, resp.Data)
			}

			rows := make([][]string, 0, len(resp.Data))
			for _, e := range resp.Data {
				rows = append(rows, []string{
					e.ID,
					e.ExploreName,
					strings.Join(e.Metrics, ","),
					e.Status,
					fmt.Sprintf("%d", e.RowCount),
					fmt.Sprintf("%dms", e.DurationMs),
					e.CreatedAt.Format("2006-01-02 15:04:05"),
				})
			}
			return printTable(os.Stdout, []string{"ID", "EXPLORE", "METRICS", "STATUS", "ROWS", "DURATION", "CREATED"}, rows)
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "l", 20, "maximum number of entries")
	cmd.AddCommand(newHistoryPruneCmd())
	return cmd
}

func newHistoryPruneCmd() *cobra.Command {
	var before string

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete query executions recorded before a cutoff",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := clientFrom(cmd.Context())

			var resp struct {
				Data struct {
					Deleted int64 `json:"deleted"`
				} `json:"data"`
			}
			path := "/api/v1/history?before=" + url.QueryEscape(before)
			if err := client.Delete(cmd.Context(), path, &resp); err != nil {
				return err
			}

			if outputFormat(cmd) == "json" {
				return printJSON(os.Stdout, resp.Data)
			}
			fmt.Printf("deleted %d entries\n", resp.Data.Deleted)
			return nil
		},
	}

	cmd.Flags().StringVar(&before, "before", "", "cutoff date or timestamp, e.g. 2026-01-01")
	_ = cmd.MarkFlagRequired("before")
	return cmd
}
