package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cctakt/cctakt/internal/plan"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current plan's task status",
	Long:  "Display the tasks recorded in .cctakt/plan.json and their status.",
	RunE:  runStatus,
}

var statusJSON bool

func init() {
	rootCmd.AddCommand(statusCmd)
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "output as JSON")
}

func runStatus(_ *cobra.Command, _ []string) error {
	_, loader, err := loadConfig()
	if err != nil {
		return err
	}

	store := plan.New(loader.ProjectDir())
	p, err := store.Load()
	if err != nil {
		return fmt.Errorf("loading plan: %w", err)
	}
	if p == nil {
		if statusJSON {
			return outputJSON(map[string]any{"tasks": []any{}})
		}
		fmt.Println("No plan file found")
		return nil
	}

	if statusJSON {
		return outputJSON(p)
	}

	fmt.Printf("Plan version %d, %d task(s)\n", p.Version, len(p.Tasks))
	if p.Description != "" {
		fmt.Println(p.Description)
	}
	fmt.Println()

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TASK\tACTION\tSTATUS\tERROR")
	fmt.Fprintln(w, "----\t------\t------\t-----")
	for _, t := range p.Tasks {
		errMsg := t.Error
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", t.ID, t.Action.Type(), t.Status, errMsg)
	}
	return w.Flush()
}

func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
