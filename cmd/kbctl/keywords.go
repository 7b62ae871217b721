package main

import (
	"fmt"
	"strings"

	"kb-assistant-be/internal/config"
	"kb-assistant-be/pkg/rag/keyword"

	"github.com/spf13/cobra"
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords <question>",
	Short: "Show the keywords extracted from a question",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Load()
		ext := keyword.NewExtractor(cfg.Chatwork.BotName)

		question := strings.Join(args, " ")
		kws := ext.Extract(question)

		printKV("cleaned", ext.Clean(question))
		if keyword.IsSentinel(kws) {
			warnColor.Println("no specific keyword, falling back to the first documents")
		}
		for i, kw := range kws {
			fmt.Printf("%3d  %s\n", i+1, kw)
		}
		return nil
	},
}
