package cli

import (
	"fmt"
	"runtime"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/lu-zhengda/devdash/internal/config"
	"github.com/lu-zhengda/devdash/internal/port"
	"github.com/lu-zhengda/devdash/internal/proc"
	"github.com/lu-zhengda/devdash/internal/runner"
	"github.com/lu-zhengda/devdash/internal/store"
	"github.com/lu-zhengda/devdash/internal/tui"
	"github.com/spf13/cobra"
)

var (
	// Set via ldflags at build time.
	version = "dev"

	// Global flags.
	jsonOutput bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "devdash",
	Short: "Dev-server dashboard",
	Long: `devdash keeps a list of your projects, starts and supervises their
dev servers, captures their output, and watches which local ports are
in use. Launch without subcommands for the interactive dashboard.`,
	Version: version,
	RunE: func(cmd *cobra.Command, args []string) error {
		env, err := newEnv()
		if err != nil {
			return err
		}
		defer env.Close()

		p := tea.NewProgram(tui.New(env.Store, env.MachineID, env.Manager, env.Scanner, env.Config, version), tea.WithAltScreen())
		_, err = p.Run()

		// Spawned dev servers do not outlive the dashboard.
		env.Manager.StopAll()
		return err
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf("devdash %s\n", version))
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file path")

	rootCmd.AddCommand(portsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(runCmd)
}

// env bundles the long-lived components a command needs.
type env struct {
	Config    *config.Config
	Store     *store.Store
	MachineID string
	Manager   *proc.Manager
	Scanner   *port.Scanner
}

func newEnv() (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(store.DefaultPath())
	if err != nil {
		return nil, err
	}

	machineID, err := store.EnsureMachineID(store.DefaultMachineIDPath())
	if err != nil {
		st.Close()
		return nil, err
	}

	resolver := port.ResolverFor(runtime.GOOS, &runner.Real{})

	return &env{
		Config:    cfg,
		Store:     st,
		MachineID: machineID,
		Manager:   proc.NewManager(cfg.GracePeriod()),
		Scanner:   port.NewScanner(resolver, cfg.ProbeTimeout()),
	}, nil
}

func (e *env) Close() {
	e.Store.Close()
}
