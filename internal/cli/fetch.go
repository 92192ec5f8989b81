package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vietddude/httpguard/internal/control"
)

var (
	fetchMethod string
	fetchData   string
)

var fetchCmd = &cobra.Command{
	Use:   "fetch [path]",
	Short: "Send one guarded request to the upstream API and print the JSON response",
	Args:  cobra.ExactArgs(1),
	Run:   runFetch,
}

func init() {
	fetchCmd.Flags().StringVarP(&fetchMethod, "method", "X", http.MethodGet, "HTTP method")
	fetchCmd.Flags().StringVarP(&fetchData, "data", "d", "", "JSON request body")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) {
	cfg := loadConfig(cmd)
	ctx := context.Background()

	app, err := control.NewApp(ctx, cfg)
	if err != nil {
		slog.Error("Failed to initialize httpguard", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	var body any
	if fetchData != "" {
		if !json.Valid([]byte(fetchData)) {
			slog.Error("Request body is not valid JSON")
			os.Exit(1)
		}
		body = json.RawMessage(fetchData)
	}

	var out json.RawMessage
	if err := app.Client().Do(ctx, strings.ToUpper(fetchMethod), args[0], body, &out); err != nil {
		if apiErr := app.State().Error(); apiErr != nil {
			printJSON(os.Stderr, apiErr)
		}
		app.Close()
		os.Exit(1)
	}

	if len(out) == 0 {
		fmt.Println("(empty response)")
		return
	}
	printJSON(os.Stdout, out)
}

func printJSON(w io.Writer, v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		_, _ = fmt.Fprintln(w, v)
		return
	}
	_, _ = fmt.Fprintln(w, string(data))
}
