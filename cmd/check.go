package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/kattalitextile/sitekit/internal/config"
	"github.com/kattalitextile/sitekit/internal/hooks"
	"github.com/kattalitextile/sitekit/internal/routes"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify that every routed page has a well-formed fragment",
	Long: `Check walks the route table and verifies each page fragment:

- the fragment file exists in the partials directory
- the fragment is non-empty
- the markup parses as an HTML fragment

Exits non-zero if any route fails.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().String("partials-dir", "", "Directory holding page fragments (defaults to the configured one)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	dir, _ := cmd.Flags().GetString("partials-dir")
	if dir == "" {
		dir = cfg.Server.PartialsDir
	}

	table := routes.DefaultSite()
	failed := 0

	for _, route := range table.All() {
		if problem := checkFragment(dir, route.PageID); problem != "" {
			fmt.Printf("FAIL  %-16s %s\n", route.PageID, problem)
			failed++
			continue
		}
		fmt.Printf("ok    %s\n", route.PageID)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fragments failed validation", failed, table.Count())
	}

	fmt.Printf("All %d fragments are valid.\n", table.Count())
	return nil
}

func checkFragment(dir, pageID string) string {
	path := filepath.Join(dir, pageID+".html")

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Sprintf("missing fragment file %s", path)
	}
	if len(data) == 0 {
		return "fragment file is empty"
	}

	if _, err := hooks.ParseRegion(string(data)); err != nil {
		return fmt.Sprintf("fragment does not parse: %v", err)
	}

	return ""
}
