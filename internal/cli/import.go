package cli

import (
	"context"
	"fmt"

	"github.com/lu-zhengda/devdash/internal/detect"
	"github.com/lu-zhengda/devdash/internal/discover"
	"github.com/lu-zhengda/devdash/internal/runner"
	"github.com/spf13/cobra"
)

var importDir string

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import git checkouts as projects",
	Long: `Scan the usual project directories under your home directory (or a
single directory given with --dir) and track every git checkout found.
Already-tracked projects are skipped.`,
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVar(&importDir, "dir", "", "Scan a single directory instead of the defaults")
}

func runImport(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	ctx := context.Background()
	r := &runner.Real{}

	var repos []discover.Repo
	if importDir != "" {
		repos, err = discover.ScanDir(ctx, r, importDir)
		if err != nil {
			return fmt.Errorf("failed to scan %s: %w", importDir, err)
		}
	} else {
		repos = discover.Scan(ctx, r)
	}

	if len(repos) == 0 {
		fmt.Println("No git repositories found.")
		return nil
	}

	added := 0
	for _, repo := range repos {
		existing, err := env.Store.ProjectByName(ctx, repo.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		id, err := env.Store.AddProject(ctx, repo.Name, repo.RemoteURL)
		if err != nil {
			return err
		}
		if err := env.Store.SetLocation(ctx, id, env.MachineID, repo.Path); err != nil {
			return err
		}
		if det, err := detect.Detect(repo.Path); err == nil && det.RunCommand != "" {
			if err := env.Store.SetRunCommand(ctx, id, env.MachineID, det.RunCommand); err != nil {
				return err
			}
		}

		fmt.Printf("Imported %s (%s)\n", repo.Name, repo.Path)
		added++
	}

	fmt.Printf("%d imported, %d already tracked.\n", added, len(repos)-added)
	return nil
}
