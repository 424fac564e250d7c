package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"tasklite/internal/ambient"
	"tasklite/internal/app"
	"tasklite/internal/config"
	"tasklite/internal/storage"
	"tasklite/internal/task"
	"tasklite/internal/ui"
)

type options struct {
	configPath string
	cfg        config.Config
}

// workspace is one opened task list. Callers must Close it.
type workspace struct {
	kv      storage.KV
	adapter *storage.Adapter
	frame   *app.Frame
	ctrl    *app.Controller
}

func (o *options) open(confirm app.Confirmer) (*workspace, error) {
	kv, err := o.cfg.OpenKV()
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	adapter := storage.NewAdapter(kv, o.cfg.TasksKey, o.cfg.ThemeKey)
	frame := &app.Frame{}
	return &workspace{
		kv:      kv,
		adapter: adapter,
		frame:   frame,
		ctrl:    app.New(task.NewStore(adapter), adapter, frame, confirm),
	}, nil
}

func (w *workspace) Close() error {
	return w.kv.Close()
}

func newField(cfg config.Config) *ambient.Field {
	now := time.Now()
	return ambient.NewField(cfg.Ambient.Field(), uint64(now.UnixNano()), now)
}

// NewRootCmd builds the command tree. Running it without a subcommand opens
// the terminal UI.
func NewRootCmd() *cobra.Command {
	o := &options{}
	root := &cobra.Command{
		Use:   "tasklite",
		Short: "A small task list for the terminal and the browser",
		Long: `tasklite keeps one list of tasks. Run it without arguments for the
interactive terminal UI, use the subcommands for scripting, or serve the
same list over HTTP with "tasklite serve".`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if o.configPath == "" {
				o.configPath = config.ResolveConfigPath()
			}
			cfg, err := config.LoadOrCreate(o.configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			o.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			gate := &app.Gate{}
			ws, err := o.open(gate)
			if err != nil {
				return err
			}
			defer ws.Close()
			return ui.Run(ui.New(ws.ctrl, ws.frame, gate, newField(o.cfg), o.cfg))
		},
	}

	root.PersistentFlags().StringVarP(&o.configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+" or the user config dir)")

	root.AddCommand(newAddCmd(o))
	root.AddCommand(newEditCmd(o))
	root.AddCommand(newListCmd(o))
	root.AddCommand(newToggleCmd(o))
	root.AddCommand(newRmCmd(o))
	root.AddCommand(newClearCmd(o))
	root.AddCommand(newThemeCmd(o))
	root.AddCommand(newServeCmd(o))
	return root
}

// Execute runs the root command
func Execute(version string) error {
	root := NewRootCmd()
	root.Version = version
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}
