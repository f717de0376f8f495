// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/source"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Register and list source documents",
	Long: `Source manages the documents the pipeline analyzes. Register takes a
plain-text file of extracted paper text, derives a slug (from the DOI when
one appears in the text, else from the title), and stores the text with
its metadata. The slug identifies the entry in every other command.`,
}

var sourceRegisterCmd = &cobra.Command{
	Use:   "register [text-file]",
	Short: "Register a source document from an extracted-text file",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRegister,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered source documents",
	RunE:  runSourceList,
}

func init() {
	sourceCmd.PersistentFlags().String("sources-dir", "", "sources directory (default \"sources\")")
	sourceRegisterCmd.Flags().String("title", "", "document title (default: first non-blank line)")
	sourceRegisterCmd.Flags().String("authors", "", "author line, e.g. \"A. Smith, B. Lee\"")

	sourceCmd.AddCommand(sourceRegisterCmd, sourceListCmd)
	rootCmd.AddCommand(sourceCmd)
}

func openSources(cmd *cobra.Command) (*source.Register, error) {
	dir, _ := cmd.Flags().GetString("sources-dir")
	if dir == "" {
		dir = viper.GetString("sources.sources_dir")
	}
	if dir == "" {
		dir = "sources"
	}
	return source.NewRegister(types.SourceConfig{SourcesDir: dir})
}

func runSourceRegister(cmd *cobra.Command, args []string) error {
	reg, err := openSources(cmd)
	if err != nil {
		return err
	}

	text, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading %s: %w", args[0], err)
	}

	title, _ := cmd.Flags().GetString("title")
	authors, _ := cmd.Flags().GetString("authors")

	ref, err := reg.Add(title, authors, string(text))
	if err != nil {
		return err
	}

	fmt.Printf("registered %s\n", ref.Slug)
	if ref.DOI != "" {
		fmt.Printf("  doi: %s\n", ref.DOI)
	}
	return nil
}

func runSourceList(cmd *cobra.Command, args []string) error {
	reg, err := openSources(cmd)
	if err != nil {
		return err
	}

	refs, err := reg.List()
	if err != nil {
		return err
	}
	if len(refs) == 0 {
		fmt.Println("No source documents registered.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-28s  %-40s  %s\n", "Slug", "Title", "DOI")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, ref := range refs {
		title := ref.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		doi := ref.DOI
		if doi == "" {
			doi = "-"
		}
		fmt.Fprintf(os.Stdout, "%-28s  %-40s  %s\n", ref.Slug, title, doi)
	}
	return nil
}
