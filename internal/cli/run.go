package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/lu-zhengda/devdash/internal/detect"
	"github.com/spf13/cobra"
)

var runPort int

var runCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a project's dev server in the foreground",
	Long: `Start the project's dev server and stream its output until the
process exits or you interrupt with Ctrl-C, which stops the server
gracefully. The run command comes from the project's stored location,
falling back to detection from the checkout.`,
	Args: cobra.ExactArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().IntVar(&runPort, "port", 0, "Set PORT in the server's environment")
}

func runRun(cmd *cobra.Command, args []string) error {
	name := args[0]

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	p, err := env.Store.ProjectByName(ctx, name)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no project named %q", name)
	}

	loc, err := env.Store.Location(ctx, p.ID, env.MachineID)
	if err != nil {
		return err
	}
	if loc == nil {
		return fmt.Errorf("%s has no checkout on this machine", name)
	}

	command := loc.RunCommand
	if command == "" {
		det, err := detect.Detect(loc.Path)
		if err != nil || det.RunCommand == "" {
			return fmt.Errorf("no run command for %s; set one with 'devdash projects add --run'", name)
		}
		command = det.RunCommand
	}

	if err := env.Manager.StartWithPort(name, loc.Path, command, runPort); err != nil {
		return err
	}
	fmt.Printf("Started %s (pid %d): %s\n", name, env.Manager.PID(name), command)

	// Stream output by tailing the capture buffer with a cursor; the
	// cursor survives eviction, and the final tail is complete because
	// the manager reports the process done only after both pipes have
	// been drained.
	cursor := 0
	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			var lines []string
			lines, cursor, _ = env.Manager.TailOutput(name, cursor)
			for _, line := range lines {
				fmt.Println(line)
			}
			fmt.Printf("\nStopping %s...\n", name)
			env.Manager.Stop(name)
			return nil
		case <-ticker.C:
			lines, next, live := env.Manager.TailOutput(name, cursor)
			cursor = next
			for _, line := range lines {
				fmt.Println(line)
			}
			if !live {
				return nil
			}
		}
	}
}
