package main

import (
	"fmt"
	"strings"

	"kb-assistant-be/pkg/rag/ranker"

	"github.com/spf13/cobra"
)

var rankTop int

var rankCmd = &cobra.Command{
	Use:   "rank <question>",
	Short: "Rank the knowledge base against a question",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRank,
}

func init() {
	rankCmd.Flags().IntVarP(&rankTop, "top", "n", 0, "show at most n documents (0 = all ranked)")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, core := loadCore(ctx)
	defer core.Close()

	question := strings.Join(args, " ")
	kws := core.Extractor.Extract(question)

	docs, err := core.Exporter.Export(ctx)
	if err != nil {
		if len(docs) == 0 {
			return err
		}
		warnColor.Println("Partial export:", err)
	}

	ranked := ranker.Rank(docs, kws)
	printKV("keywords", strings.Join(kws, ", "))
	printKV("documents", len(docs))
	printKV("ranked", len(ranked))
	printKV("max score", ranked.MaxScore())
	fmt.Println()

	for i, d := range ranked {
		if rankTop > 0 && i >= rankTop {
			break
		}
		titleColor.Printf("%3d  %5d  %s\n", i+1, d.Score, d.ID)
		dimColor.Printf("            %s\n", d.SourceURL)
	}
	return nil
}
