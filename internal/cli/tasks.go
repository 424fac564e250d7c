package cli

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasklite/internal/app"
	"tasklite/internal/task"
)

// resolveID accepts a full id or any unambiguous prefix of one.
func resolveID(tasks []task.Task, ref string) (string, error) {
	if ref == "" {
		return "", fmt.Errorf("empty task id")
	}
	for _, t := range tasks {
		if t.ID == ref {
			return t.ID, nil
		}
	}
	var match string
	for _, t := range tasks {
		if !strings.HasPrefix(t.ID, ref) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("task id %q is ambiguous", ref)
		}
		match = t.ID
	}
	if match == "" {
		return "", fmt.Errorf("no task with id %q", ref)
	}
	return match, nil
}

// promptConfirm asks on the command's stdin. Anything but y or yes declines.
func promptConfirm(cmd *cobra.Command, yes bool) app.Confirmer {
	return app.ConfirmFunc(func(prompt string) bool {
		if yes {
			return true
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
		line, _ := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return true
		}
		return false
	})
}

func newAddCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := o.open(promptConfirm(cmd, false))
			if err != nil {
				return err
			}
			defer ws.Close()

			before := len(ws.ctrl.Tasks())
			if err := ws.ctrl.Submit(strings.Join(args, " ")); err != nil {
				return err
			}
			tasks := ws.ctrl.Tasks()
			if len(tasks) == before {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to save")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", tasks[len(tasks)-1].ID)
			return nil
		},
	}
}

func newEditCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "edit <id> <text>",
		Short: "Replace a task's text",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := o.open(promptConfirm(cmd, false))
			if err != nil {
				return err
			}
			defer ws.Close()

			id, err := resolveID(ws.ctrl.Tasks(), args[0])
			if err != nil {
				return err
			}
			text := strings.Join(args[1:], " ")
			if strings.TrimSpace(text) == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to save")
				return nil
			}
			ws.ctrl.BeginEdit(id)
			if err := ws.ctrl.Submit(text); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", id)
			return nil
		},
	}
}

func newToggleCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between active and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := o.open(promptConfirm(cmd, false))
			if err != nil {
				return err
			}
			defer ws.Close()

			id, err := resolveID(ws.ctrl.Tasks(), args[0])
			if err != nil {
				return err
			}
			if err := ws.ctrl.Dispatch(app.Event{Kind: app.ActionToggle, TaskID: id}); err != nil {
				return err
			}
			for _, t := range ws.ctrl.Tasks() {
				if t.ID == id {
					state := "active"
					if t.Completed {
						state = "completed"
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%s is %s\n", id, state)
				}
			}
			return nil
		},
	}
}

func newRmCmd(o *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := o.open(promptConfirm(cmd, yes))
			if err != nil {
				return err
			}
			defer ws.Close()

			id, err := resolveID(ws.ctrl.Tasks(), args[0])
			if err != nil {
				return err
			}
			before := len(ws.ctrl.Tasks())
			if err := ws.ctrl.Dispatch(app.Event{Kind: app.ActionDelete, TaskID: id}); err != nil {
				return err
			}
			if len(ws.ctrl.Tasks()) == before {
				fmt.Fprintln(cmd.OutOrStdout(), "Kept")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newClearCmd(o *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every task",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := o.open(promptConfirm(cmd, yes))
			if err != nil {
				return err
			}
			defer ws.Close()

			if len(ws.ctrl.Tasks()) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to clear")
				return nil
			}
			if err := ws.ctrl.ClearAll(); err != nil {
				return err
			}
			if len(ws.ctrl.Tasks()) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Kept")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Cleared")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")
	return cmd
}

func newThemeCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "theme",
		Short: "Toggle between the light and dark theme",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := o.open(promptConfirm(cmd, false))
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.ctrl.ToggleTheme(); err != nil {
				return err
			}
			mode := "light"
			if ws.ctrl.DarkMode() {
				mode = "dark"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Theme: %s\n", mode)
			return nil
		},
	}
}
