package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"kb-assistant-be/pkg/knowledge"

	"github.com/spf13/cobra"
)

var (
	exportSource string
	exportJSON   bool
	exportFull   bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the knowledge base and list its documents",
	Long: `Reads every configured kintone app (or one, with --source) and prints the
tagged documents the assistant would search.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportSource, "source", "s", "", "only export this source (meeting_minutes, schedule, rulebook)")
	exportCmd.Flags().BoolVar(&exportJSON, "json", false, "print documents as JSON")
	exportCmd.Flags().BoolVar(&exportFull, "full", false, "print full document bodies")
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, core := loadCore(ctx)
	defer core.Close()

	var (
		docs []knowledge.TaggedDocument
		err  error
	)
	if exportSource != "" {
		docs, err = core.Exporter.ExportSource(ctx, exportSource)
	} else {
		docs, err = core.Exporter.Export(ctx)
	}
	if err != nil {
		if len(docs) == 0 {
			return err
		}
		warnColor.Fprintln(os.Stderr, "Partial export:", err)
	}

	if exportJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(docs)
	}

	counts := map[string]int{}
	for _, d := range docs {
		counts[d.Source]++
		titleColor.Printf("%s ", d.ID)
		dimColor.Println(d.SourceURL)
		body := d.Body
		if !exportFull {
			body = truncate(strings.ReplaceAll(body, "\n", " / "), 160)
		}
		fmt.Println("  " + body)
	}

	fmt.Println()
	for _, name := range core.Exporter.SourceNames() {
		if exportSource != "" && name != exportSource {
			continue
		}
		printKV(name, counts[name])
	}
	okColor.Printf("%d documents\n", len(docs))
	return nil
}
