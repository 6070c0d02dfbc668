package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kattalitextile/sitekit/internal/routes"
)

var routesFormat string

var routesCmd = &cobra.Command{
	Use:   "routes",
	Short: "Print the site route table",
	Long: `Print every route the site serves: the hash path, the page id of
the fragment it loads, and the document title.

Examples:
  sitekit routes                  # Table as text
  sitekit routes --format json    # Machine-readable JSON
  sitekit routes --format yaml    # YAML`,
	RunE: runRoutes,
}

func init() {
	rootCmd.AddCommand(routesCmd)

	routesCmd.Flags().StringVarP(&routesFormat, "format", "f", "text", "Output format (text, json, yaml)")
}

func runRoutes(cmd *cobra.Command, args []string) error {
	table := routes.DefaultSite()

	switch routesFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table.All())
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(table.All())
	case "text":
		fmt.Printf("%-16s %-16s %s\n", "PATH", "PAGE", "TITLE")
		for _, r := range table.All() {
			fmt.Printf("#%-15s %-16s %s\n", r.Path, r.PageID, r.Title)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (supported: text, json, yaml)", routesFormat)
	}
}
