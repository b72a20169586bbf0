// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/modulegen/internal/catalog"
)

var sectionsCmd = &cobra.Command{
	Use:   "sections",
	Short: "List the section catalogue",
	Long: `Sections prints every task the generate and review commands can run, in
document order. Tasks marked with * are selected when --sections is omitted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		printCatalog(out, "generate", catalog.Module())
		fmt.Fprintln(out)
		printCatalog(out, "review", catalog.Review())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sectionsCmd)
}

func printCatalog(w io.Writer, heading string, cat *catalog.Catalog) {
	fmt.Fprintln(w, okStyle.Render(heading))
	for _, d := range cat.All() {
		mark := " "
		if d.DefaultEnabled {
			mark = "*"
		}
		fmt.Fprintf(w, "  %s %d  %-14s %s\n", mark, d.Order, d.ID, dimStyle.Render(d.Title))
	}
}
