package cli

import (
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// CommandEntry describes one CLI command for introspection output.
type CommandEntry struct {
	Path  string      `json:"path"`
	Short string      `json:"short"`
	Args  string      `json:"args,omitempty"`
	Flags []FlagEntry `json:"flags,omitempty"`
}

// FlagEntry describes one CLI flag for introspection output.
type FlagEntry struct {
	Name    string `json:"name"`
	Short   string `json:"shorthand,omitempty"`
	Type    string `json:"type"`
	Default string `json:"default,omitempty"`
	Usage   string `json:"usage,omitempty"`
}

func newCommandsCmd() *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "commands",
		Short: "List all available CLI commands with their flags",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			entries := walkCommands(cmd.Root(), "")

			if filter != "" {
				needle := strings.ToLower(filter)
				var kept []CommandEntry
				for _, e := range entries {
					if strings.Contains(strings.ToLower(e.Path+" "+e.Short), needle) {
						kept = append(kept, e)
					}
				}
				entries = kept
			}

			if outputFormat(cmd) == "json" {
				return printJSON(os.Stdout, entries)
			}

			rows := make([][]string, 0, len(entries))
			for _, e := range entries {
				rows = append(rows, []string{e.Path, e.Short})
			}
			return printTable(os.Stdout, []string{"COMMAND", "DESCRIPTION"}, rows)
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "substring search across command names and descriptions")
	return cmd
}

// walkCommands collects leaf commands from the cobra command tree.
func walkCommands(cmd *cobra.Command, parentPath string) []CommandEntry {
	var entries []CommandEntry
	for _, child := range cmd.Commands() {
		if child.Hidden || child.Name() == "help" || child.Name() == "completion" {
			continue
		}

		path := child.Name()
		if parentPath != "" {
			path = parentPath + " " + child.Name()
		}
		if child.HasSubCommands() {
			entries = append(entries, walkCommands(child, path)...)
			continue
		}

		args := ""
		if useParts := strings.Fields(child.Use); len(useParts) > 1 {
			args = strings.Join(useParts[1:], " ")
		}

		entries = append(entries, CommandEntry{
			Path:  path,
			Short: child.Short,
			Args:  args,
			Flags: collectFlags(child.Flags()),
		})
	}
	return entries
}

func collectFlags(flags *pflag.FlagSet) []FlagEntry {
	var out []FlagEntry
	flags.VisitAll(func(f *pflag.Flag) {
		out = append(out, FlagEntry{
			Name:    f.Name,
			Short:   f.Shorthand,
			Type:    f.Value.Type(),
			Default: f.DefValue,
			Usage:   f.Usage,
		})
	})
	return out
}
