package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/lu-zhengda/devdash/internal/port"
	"github.com/spf13/cobra"
)

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "Scan the candidate ports",
	Long: `Probe the configured candidate ports and show which are in use,
with the owning process where it can be resolved.`,
	RunE: runPorts,
}

func runPorts(cmd *cobra.Command, args []string) error {
	env, err := newEnv()
	if err != nil {
		return err
	}
	defer env.Close()

	candidates, err := env.Config.Ports()
	if err != nil {
		return fmt.Errorf("invalid candidate ports: %w", err)
	}

	records := env.Scanner.Scan(context.Background(), candidates)

	if jsonOutput {
		return printPortsJSON(records)
	}
	return printPortsTable(records)
}

func printPortsTable(records []port.Record) error {
	if len(records) == 0 {
		fmt.Println("No candidate ports in use.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PORT\tPID\tPROCESS")
	for _, r := range records {
		pid, name := "-", "-"
		if r.OwnerKnown() {
			pid = fmt.Sprintf("%d", r.PID)
			if r.Process != "" {
				name = r.Process
			}
		}
		fmt.Fprintf(w, "%d\t%s\t%s\n", r.Port, pid, name)
	}
	return w.Flush()
}

func printPortsJSON(records []port.Record) error {
	type jsonRecord struct {
		Port     int    `json:"port"`
		PID      int    `json:"pid,omitempty"`
		Process  string `json:"process,omitempty"`
		Observed string `json:"observed"`
	}

	out := make([]jsonRecord, len(records))
	for i, r := range records {
		out[i] = jsonRecord{
			Port:     r.Port,
			PID:      r.PID,
			Process:  r.Process,
			Observed: r.Observed.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
