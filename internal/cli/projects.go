package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/lu-zhengda/devdash/internal/detect"
	"github.com/spf13/cobra"
)

var (
	addRepoURL string
	addRunCmd  string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage the project list",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tracked projects",
	RunE:  runProjectsList,
}

var projectsAddCmd = &cobra.Command{
	Use:   "add <name> <path>",
	Short: "Track a project checkout",
	Long: `Add a project and record its checkout path on this machine. Unless
--run is given, the run command is detected from the checkout
(package.json scripts, Cargo.toml, go.mod, manage.py).`,
	Args: cobra.ExactArgs(2),
	RunE: runProjectsAdd,
}

var projectsRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Stop tracking a project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectsRemove,
}

func init() {
	projectsAddCmd.Flags().StringVar(&addRepoURL, "repo", "", "Repository URL")
	projectsAddCmd.Flags().StringVar(&addRunCmd, "run", "", "Run command (skips detection)")

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsAddCmd)
	projectsCmd.AddCommand(projectsRemoveCmd)
}

func runProjectsList(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	projects, err := env.Store.ListProjects(ctx)
	if err != nil {
		return err
	}

	type row struct {
		Name       string `json:"name"`
		RepoURL    string `json:"repo_url,omitempty"`
		Path       string `json:"path,omitempty"`
		RunCommand string `json:"run_command,omitempty"`
	}

	rows := make([]row, 0, len(projects))
	for _, p := range projects {
		r := row{Name: p.Name, RepoURL: p.RepoURL}
		loc, err := env.Store.Location(ctx, p.ID, env.MachineID)
		if err != nil {
			return err
		}
		if loc != nil {
			r.Path = loc.Path
			r.RunCommand = loc.RunCommand
		}
		rows = append(rows, r)
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	if len(rows) == 0 {
		fmt.Println("No projects tracked. Use 'devdash projects add' or 'devdash import'.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPATH\tRUN COMMAND\tREPO")
	for _, r := range rows {
		path, run, repo := r.Path, r.RunCommand, r.RepoURL
		if path == "" {
			path = "-"
		}
		if run == "" {
			run = "-"
		}
		if repo == "" {
			repo = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Name, path, run, repo)
	}
	return w.Flush()
}

func runProjectsAdd(cmd *cobra.Command, args []string) error {
	name, path := args[0], args[1]

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	id, err := env.Store.AddProject(ctx, name, addRepoURL)
	if err != nil {
		return err
	}
	if err := env.Store.SetLocation(ctx, id, env.MachineID, abs); err != nil {
		return err
	}

	runCommand := addRunCmd
	if runCommand == "" {
		if det, err := detect.Detect(abs); err == nil {
			runCommand = det.RunCommand
		}
	}
	if runCommand != "" {
		if err := env.Store.SetRunCommand(ctx, id, env.MachineID, runCommand); err != nil {
			return err
		}
	}

	fmt.Printf("Added %s (%s)\n", name, abs)
	if runCommand != "" {
		fmt.Printf("Run command: %s\n", runCommand)
	}
	return nil
}

func runProjectsRemove(cmd *cobra.Command, args []string) error {
	name := args[0]

	env, err := newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	p, err := env.Store.ProjectByName(ctx, name)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no project named %q", name)
	}

	if err := env.Store.DeleteProject(ctx, p.ID); err != nil {
		return err
	}
	fmt.Printf("Removed %s\n", name)
	return nil
}
