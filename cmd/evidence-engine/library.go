// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/evidence-engine/internal/library"
	"github.com/pdiddy/evidence-engine/pkg/types"
)

var libraryCmd = &cobra.Command{
	Use:   "library",
	Short: "Inspect and manage the entry library",
	Long: `Library manages the bounded local store of pipeline entries. Use
subcommands to list entries, show one entry's accumulated stage outputs,
delete an entry, or export the whole library to YAML.`,
}

var libraryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library entries in insertion order",
	RunE:  runLibraryList,
}

var libraryShowCmd = &cobra.Command{
	Use:   "show [entry]",
	Short: "Print one entry's accumulated stage outputs as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryShow,
}

var libraryDeleteCmd = &cobra.Command{
	Use:   "delete [entry]",
	Short: "Remove an entry from the library",
	Args:  cobra.ExactArgs(1),
	RunE:  runLibraryDelete,
}

var libraryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole library to export.yaml",
	RunE:  runLibraryExport,
}

func init() {
	libraryCmd.PersistentFlags().String("library-dir", "", "library directory (default \"library\")")
	libraryListCmd.Flags().Bool("json", false, "output entries as JSON")

	libraryCmd.AddCommand(libraryListCmd, libraryShowCmd, libraryDeleteCmd, libraryExportCmd)
	rootCmd.AddCommand(libraryCmd)
}

func openLibrary(cmd *cobra.Command) (*library.Store, error) {
	dir, _ := cmd.Flags().GetString("library-dir")
	if dir == "" {
		dir = viper.GetString("library.library_dir")
	}
	if dir == "" {
		dir = "library"
	}
	return library.NewStore(types.LibraryConfig{
		LibraryDir: dir,
		Capacity:   viper.GetInt("library.capacity"),
	})
}

func runLibraryList(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(context.Background())
	if err != nil {
		return err
	}

	if jsonOutput, _ := cmd.Flags().GetBool("json"); jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Println("Library is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-28s  %-20s  %-40s  %s\n", "Entry", "State", "Title", "Claims")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 100))
	for _, e := range entries {
		title := e.Source.Title
		if len(title) > 40 {
			title = title[:37] + "..."
		}
		claims := "-"
		if n := e.StructuredCount(types.StageClaims); n >= 0 {
			claims = fmt.Sprintf("%d", n)
		}
		fmt.Fprintf(os.Stdout, "%-28s  %-20s  %-40s  %s\n", e.ID, e.State, title, claims)
	}
	return nil
}

func runLibraryShow(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	entry, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entry)
}

func runLibraryDelete(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("deleted %s\n", args[0])
	return nil
}

func runLibraryExport(cmd *cobra.Command, args []string) error {
	store, err := openLibrary(cmd)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ExportYAML(context.Background()); err != nil {
		return err
	}
	fmt.Println("wrote export.yaml")
	return nil
}
