package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"tasklite/internal/app"
	"tasklite/internal/task"
	"tasklite/internal/ui"
)

type listing struct {
	Filter task.Filter `json:"filter" yaml:"filter"`
	Tasks  []task.Task `json:"tasks" yaml:"tasks"`
	Counts app.Counts  `json:"counts" yaml:"counts"`
}

func newListCmd(o *options) *cobra.Command {
	var filter, format string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Print the tasks",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if filter == "" {
				filter = o.cfg.DefaultFilter
			}
			f := task.Filter(strings.ToLower(strings.TrimSpace(filter)))
			if !f.Valid() {
				return fmt.Errorf("unknown filter %q (want all, active or completed)", filter)
			}

			ws, err := o.open(promptConfirm(cmd, false))
			if err != nil {
				return err
			}
			defer ws.Close()

			all := ws.ctrl.Tasks()
			l := listing{
				Filter: f,
				Tasks:  task.Select(all, f),
				Counts: app.Tally(all),
			}
			return writeListing(cmd.OutOrStdout(), l, format)
		},
	}
	cmd.Flags().StringVarP(&filter, "filter", "f", "", "all, active or completed (default from config)")
	cmd.Flags().StringVarP(&format, "format", "o", "text", "text, json or yaml")
	return cmd
}

func writeListing(w io.Writer, l listing, format string) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(l)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(l); err != nil {
			return err
		}
		return enc.Close()
	case "text", "":
		if len(l.Tasks) == 0 {
			fmt.Fprintln(w, "No tasks.")
		}
		for _, t := range l.Tasks {
			box := "[ ]"
			if t.Completed {
				box = "[x]"
			}
			fmt.Fprintf(w, "%s %s  %s\n", box, t.ID, ui.Plain(t.Text))
		}
		fmt.Fprintf(w, "Total %d • Active %d • Completed %d\n", l.Counts.Total, l.Counts.Active, l.Counts.Completed)
		return nil
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}
