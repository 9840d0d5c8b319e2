package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ticketgate/backend/internal/review"
)

var reviewCmd = &cobra.Command{
	Use:   "review [file.json]",
	Short: "Review one ticket from a JSON file (or stdin) and print the verdict",
	Long: `Reads {"title","category","content","metadata"} and prints the verdict as JSON.
Exits 2 when the instructions are rejected.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runReview,
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	var req review.Request
	if err := json.NewDecoder(in).Decode(&req); err != nil {
		return fmt.Errorf("decode request: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.LLMTimeout+5*time.Second)
	defer cancel()
	verdict, err := review.NewGate(newGenerator(cfg), logger).Review(ctx, req)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(verdict); err != nil {
		return err
	}
	if !verdict.OK() {
		return errRejected
	}
	return nil
}
