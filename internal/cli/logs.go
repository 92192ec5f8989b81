package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/fbiville/markdown-table-formatter/pkg/markdown"
	"github.com/spf13/cobra"

	"github.com/vietddude/httpguard/internal/control"
	"github.com/vietddude/httpguard/internal/core/domain"
	"github.com/vietddude/httpguard/internal/logbuffer"
)

var (
	logsLevel    string
	logsMinLevel string
	logsClear    bool
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Show or clear the stored log history",
	Run:   runLogs,
}

func init() {
	logsCmd.Flags().StringVar(&logsLevel, "level", "all", "only entries of this level (error, warn, info, debug, all)")
	logsCmd.Flags().StringVar(&logsMinLevel, "min-level", "", "only entries at least this severe")
	logsCmd.Flags().BoolVar(&logsClear, "clear", false, "clear the stored history")
	rootCmd.AddCommand(logsCmd)
}

func runLogs(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	ctx := context.Background()

	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize httpguard", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	if logsClear {
		app.Logs().ClearStoredLogs(ctx)
		fmt.Println("Stored logs cleared")
		return
	}

	entries := logbuffer.Filter(app.Logs().GetStoredLogs(ctx), logsLevel)
	if logsMinLevel != "" {
		lvl, err := domain.ParseLogLevel(logsMinLevel)
		if err != nil {
			slog.Error("Invalid --min-level", "error", err)
			os.Exit(1)
		}
		entries = logbuffer.AtLeast(entries, lvl)
	}

	if len(entries) == 0 {
		fmt.Println("No stored logs")
		return
	}

	table, err := renderLogs(entries)
	if err != nil {
		slog.Error("Failed to render logs", "error", err)
		os.Exit(1)
	}
	fmt.Print(table)
}

func renderLogs(entries []domain.LogEntry) (string, error) {
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		ctxJSON := ""
		if len(e.Context) > 0 {
			if b, err := json.Marshal(e.Context); err == nil {
				ctxJSON = string(b)
			}
		}
		rows = append(rows, []string{e.Timestamp, string(e.Level), e.Message, e.URL, ctxJSON})
	}

	return markdown.NewTableFormatterBuilder().
		WithPrettyPrint().
		Build("TIMESTAMP", "LEVEL", "MESSAGE", "URL", "CONTEXT").
		Format(rows)
}
