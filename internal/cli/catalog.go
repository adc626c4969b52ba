// Package cli provides catalog inspection commands.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/opencode-ai/pipebuilder/internal/catalog"
	"github.com/opencode-ai/pipebuilder/internal/models"
)

var catalogListSearch string

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd)
	catalogCmd.AddCommand(catalogShowCmd)

	catalogListCmd.Flags().StringVarP(&catalogListSearch, "search", "s", "", "rank blocks against a query")
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Inspect the block catalog",
	Long: `Inspect the block catalog.

The catalog is resolved from catalog.source: project, user and system
catalog.yaml files in that order, the builtin catalog, a single file, or a
running daemon.`,
}

var catalogListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog blocks",
	Example: `  # All blocks grouped by category
  pipebuilder catalog list

  # Blocks matching a query, best first
  pipebuilder catalog list --search csv`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		b, err := newBackend(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer b.Close()
		return runCatalogList(ctx, os.Stdout, b.Catalog, catalogListSearch)
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one block",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := commandContext(cmd)
		b, err := newBackend(ctx, GetConfig())
		if err != nil {
			return err
		}
		defer b.Close()
		return runCatalogShow(ctx, os.Stdout, b.Catalog, args[0])
	},
}

// CatalogEntry is one block in `catalog list` JSON output.
type CatalogEntry struct {
	Category    string `json:"category"`
	ID          string `json:"id"`
	Label       string `json:"label"`
	Description string `json:"description,omitempty"`
	Distance    *int   `json:"distance,omitempty"`
}

func loadCatalog(ctx context.Context, loader catalog.Loader) (*models.CatalogMap, error) {
	step := startProgress("Loading catalog")
	c, err := loader.Load(ctx)
	if err != nil {
		step.Fail(err)
		return nil, &PreflightError{
			Message:  fmt.Sprintf("block catalog unavailable: %v", err),
			Hint:     "Check catalog.source and catalog.path, or that the daemon is running",
			NextStep: "pipebuilder catalog list --log-level debug",
		}
	}
	step.Done()
	return c, nil
}

func runCatalogList(ctx context.Context, out io.Writer, loader catalog.Loader, query string) error {
	c, err := loadCatalog(ctx, loader)
	if err != nil {
		return err
	}

	matches := catalog.Search(c, query)
	entries := make([]CatalogEntry, 0, len(matches))
	for _, m := range matches {
		entry := CatalogEntry{
			Category:    m.Category,
			ID:          m.Descriptor.ID,
			Label:       m.Descriptor.Label,
			Description: m.Descriptor.Description,
		}
		if strings.TrimSpace(query) != "" {
			distance := m.Distance
			entry.Distance = &distance
		}
		entries = append(entries, entry)
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, entries)
	}

	if len(entries) == 0 {
		if query != "" {
			fmt.Fprintf(out, "No blocks match %q.\n", query)
		} else {
			fmt.Fprintln(out, "No blocks found.")
		}
		return nil
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{e.Category, e.ID, e.Label})
	}
	if err := writeTable(out, []string{"CATEGORY", "ID", "LABEL"}, rows); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d blocks in %d categories (source: %s)\n", c.BlockCount(), c.Len(), formatCatalogSource(c.Source))
	return nil
}

func runCatalogShow(ctx context.Context, out io.Writer, loader catalog.Loader, id string) error {
	c, err := loadCatalog(ctx, loader)
	if err != nil {
		return err
	}

	desc, ok := c.Lookup(id)
	if !ok {
		hint := "List blocks with: pipebuilder catalog list"
		if matches := catalog.Search(c, id); len(matches) > 0 {
			hint = fmt.Sprintf("Did you mean %q?", matches[0].Descriptor.ID)
		}
		return &PreflightError{
			Message:  fmt.Sprintf("block %q not found", id),
			Hint:     hint,
			NextStep: "pipebuilder catalog list --search " + id,
		}
	}

	category := ""
	for _, cat := range c.Categories {
		if _, found := findBlock(cat, desc.ID); found {
			category = cat.Name
			break
		}
	}

	if IsJSONOutput() || IsJSONLOutput() {
		return WriteOutput(out, struct {
			Category string `json:"category"`
			*models.BlockDescriptor
		}{Category: category, BlockDescriptor: desc})
	}

	fmt.Fprintf(out, "ID:       %s\n", desc.ID)
	fmt.Fprintf(out, "Label:    %s\n", desc.Label)
	fmt.Fprintf(out, "Category: %s\n", category)
	if desc.Description != "" {
		fmt.Fprintln(out, "\nDescription:")
		for _, line := range strings.Split(desc.Description, "\n") {
			fmt.Fprintf(out, "  %s\n", line)
		}
	}
	fmt.Fprintln(out, "\nCode:")
	if desc.CodeTemplate == "" {
		fmt.Fprintln(out, "  (none)")
		return nil
	}
	for _, line := range strings.Split(desc.CodeTemplate, "\n") {
		fmt.Fprintf(out, "  %s\n", line)
	}
	return nil
}

func findBlock(category models.Category, id string) (models.BlockDescriptor, bool) {
	for _, block := range category.Blocks {
		if block.ID == id {
			return block, true
		}
	}
	return models.BlockDescriptor{}, false
}
