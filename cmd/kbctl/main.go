// Command kbctl inspects the knowledge base and the answer pipeline from a
// terminal, without going through the chat platform.
package main

import (
	"context"
	"fmt"
	"os"

	"kb-assistant-be/internal/bootstrap"
	"kb-assistant-be/internal/config"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/metrics"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"
)

var (
	verbose bool

	titleColor = color.New(color.FgCyan, color.Bold)
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
	dimColor   = color.New(color.Faint)
)

var rootCmd = &cobra.Command{
	Use:           "kbctl",
	Short:         "Inspect the knowledge base assistant",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log pipeline details to stderr")

	rootCmd.AddCommand(exportCmd, keywordsCmd, rankCmd, askCmd, migrateCmd, eventsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		errColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func cliLogger() logger.ILogger {
	if verbose {
		return logger.NewConsoleLogger(zapcore.DebugLevel)
	}
	return logger.NewNopLogger()
}

// loadCore builds the pipeline from the environment. The caller closes it.
func loadCore(ctx context.Context) (*config.Config, *bootstrap.Core) {
	cfg := config.Load()
	return cfg, bootstrap.NewCore(ctx, cfg, cliLogger(), metrics.New())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

func printKV(key string, value interface{}) {
	fmt.Printf("%s %v\n", dimColor.Sprintf("%-12s", key+":"), value)
}
