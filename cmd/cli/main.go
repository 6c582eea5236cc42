package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	c := &client{}

	rootCmd := &cobra.Command{
		Use:           "ledger-cli",
		Short:         "SecureBank ledger CLI",
		Long:          `A command line interface for the SecureBank ledger API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the ledger API")
	rootCmd.PersistentFlags().DurationVar(&c.timeout, "timeout", 10*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&c.raw, "json", false, "Print raw JSON responses")
	rootCmd.PersistentFlags().StringVar(&c.idempotencyKey, "idempotency-key", "", "Idempotency-Key sent with mutating requests")

	rootCmd.AddCommand(
		accountsCmd(c),
		depositCmd(c),
		withdrawCmd(c),
		transferCmd(c),
		historyCmd(c),
		ledgerCmd(c),
	)

	return rootCmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

func printOK(w io.Writer, format string, args ...any) {
	color.New(color.FgGreen).Fprintf(w, format+"\n", args...)
}

func printWarn(w io.Writer, format string, args ...any) {
	color.New(color.FgYellow).Fprintf(w, format+"\n", args...)
}

func printFail(w io.Writer, format string, args ...any) {
	color.New(color.FgRed).Fprintf(w, format+"\n", args...)
}

func statusColor(status string) func(a ...any) string {
	switch status {
	case "COMPLETED":
		return color.New(color.FgGreen).SprintFunc()
	case "FAILED":
		return color.New(color.FgRed).SprintFunc()
	default:
		return fmt.Sprint
	}
}
