package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"prism/internal/domain"
)

func newExploresCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "explores",
		Short: "List the explores available on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client := clientFrom(cmd.Context())

			var resp struct {
				Data []domain.Explore `json:"data"`
			}
			if err := client.Get(cmd.Context(), "/api/v1/explores", &resp); err != nil {
				return err
			}

			if outputFormat(cmd) == "json" {
				return printJSON(os.Stdout, resp.Data)
			}

			rows := make([][]string, 0, len(resp.Data))
			for _, e := range resp.Data {
				rows = append(rows, []string{
					e.Name,
					e.SQLTable,
					fmt.Sprintf("%d", len(e.Dimensions)),
					fmt.Sprintf("%d", len(e.Metrics)),
				})
			}
			return printTable(os.Stdout, []string{"NAME", "TABLE", "DIMENSIONS", "METRICS"}, rows)
		},
	}
}
