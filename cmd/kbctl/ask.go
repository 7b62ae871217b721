package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Run the full answer pipeline without posting to chat",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runAsk,
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	_, core := loadCore(ctx)
	defer core.Close()

	res, err := core.Pipeline.Execute(ctx, strings.Join(args, " "))
	if err != nil {
		return err
	}

	fmt.Println(res.Answer.Text)
	fmt.Println()

	switch {
	case res.Answer.Empty:
		warnColor.Println("mode: empty (no document matched)")
	case res.Answer.Degraded:
		warnColor.Printf("mode: degraded (%v)\n", res.Answer.BackendErr)
	default:
		okColor.Println("mode: grounded")
	}
	printKV("keywords", strings.Join(res.Keywords, ", "))
	printKV("ranked", len(res.Ranked))
	printKV("cited", strings.Join(res.CitedIDs(), ", "))
	if len(res.Answer.InvalidCitations) > 0 {
		errColor.Println("invalid citations:", strings.Join(res.Answer.InvalidCitations, ", "))
	}
	printKV("tokens", res.Answer.PromptTokens)
	printKV("fetch", res.FetchDuration)
	printKV("generation", res.GenerationDuration)
	printKV("total", res.TotalDuration)
	return nil
}
