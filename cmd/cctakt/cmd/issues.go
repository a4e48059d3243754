package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cctakt/cctakt/internal/adapters/github"
)

var issuesCmd = &cobra.Command{
	Use:   "issues",
	Short: "List GitHub issues for seeding worker tasks",
	Long: `Fetch issues from the configured GitHub remote, the same source the
terminal UI's issue picker (Ctrl+I) reads from.`,
	RunE: runIssues,
}

var (
	issuesLabels string
	issuesState  string
	issuesJSON   bool
)

func init() {
	rootCmd.AddCommand(issuesCmd)
	issuesCmd.Flags().StringVar(&issuesLabels, "labels", "", "comma-separated label filter")
	issuesCmd.Flags().StringVar(&issuesState, "state", "open", "issue state: open, closed, all")
	issuesCmd.Flags().BoolVar(&issuesJSON, "json", false, "output as JSON")
}

func runIssues(cmd *cobra.Command, _ []string) error {
	cfg, loader, err := loadConfig()
	if err != nil {
		return err
	}

	client, err := github.NewFromRemote(loader.ProjectDir(), cfg.GitHub.Remote, cfg.GitHub.Token)
	if err != nil {
		return fmt.Errorf("connecting to GitHub: %w", err)
	}

	var labels []string
	if issuesLabels != "" {
		labels = strings.Split(issuesLabels, ",")
	}

	found, err := client.FetchIssues(cmd.Context(), labels, issuesState)
	if err != nil {
		return fmt.Errorf("fetching issues: %w", err)
	}

	if issuesJSON {
		return outputJSON(found)
	}

	if len(found) == 0 {
		fmt.Println("No issues found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tTITLE\tSTATE\tLABELS")
	for _, iss := range found {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", iss.Number, iss.Title, iss.State, strings.Join(iss.Labels, ","))
	}
	return w.Flush()
}
