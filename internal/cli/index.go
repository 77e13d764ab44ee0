package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

type syncResult struct {
	Status    string `json:"status"`
	Documents int    `json:"documents"`
}

type modelList struct {
	Models []string `json:"models"`
}

type pullResult struct {
	Model  string `json:"model"`
	Status string `json:"status"`
}

func init() {
	statsCmd := &cobra.Command{
		Use:   "stats",
		Short: "Show corpus statistics",
		Args:  cobra.NoArgs,
		RunE:  runStats,
	}

	reindexCmd := &cobra.Command{
		Use:   "reindex",
		Short: "Push stored vectors to the external vector index",
		Args:  cobra.NoArgs,
		RunE:  runReindex,
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "List the models the generation backend serves",
		Args:  cobra.NoArgs,
		RunE:  runModels,
	}

	pullCmd := &cobra.Command{
		Use:   "pull [model]",
		Short: "Pull a model into Ollama (default: the configured model)",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPull,
	}

	RootCmd.AddCommand(statsCmd, reindexCmd, modelsCmd, pullCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	stats, err := a.Pipeline.Stats(cmd.Context())
	if err != nil {
		return fmt.Errorf("stats: %w", err)
	}

	return render(cmd, stats, func(w io.Writer) {
		fmt.Fprintf(w, "%s %d (%d without chunks)\n", headingStyle.Render("Documents:"), stats.Documents, stats.DocumentsNoChunks)
		fmt.Fprintf(w, "%s %d\n", headingStyle.Render("Chunks:"), stats.Chunks)
		fmt.Fprintf(w, "%s %d\n", headingStyle.Render("Concepts:"), stats.Concepts)
		l := stats.ChunkLength
		fmt.Fprintf(w, "%s min %d, max %d, mean %.1f, p50 %d, p95 %d\n", headingStyle.Render("Chunk length:"), l.Min, l.Max, l.Mean, l.P50, l.P95)
		fmt.Fprintf(w, "%s %.1f\n", headingStyle.Render("Tokens per chunk:"), stats.EstimatedTokensMean)
		fmt.Fprintf(w, "%s %s (chunker %s)\n", headingStyle.Render("Index version:"), stats.IndexVersion, stats.ChunkerVersion)
	})
}

func runReindex(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	n, err := a.Pipeline.SyncIndex(cmd.Context())
	if err != nil {
		return fmt.Errorf("reindex: %w", err)
	}

	res := syncResult{Status: "completed", Documents: n}
	return render(cmd, res, func(w io.Writer) {
		fmt.Fprintf(w, "synced %s\n", plural(n, "document"))
	})
}

func runModels(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	models, err := a.Backend.ListModels(cmd.Context())
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	if models == nil {
		models = []string{}
	}

	return render(cmd, modelList{Models: models}, func(w io.Writer) {
		for _, m := range models {
			if m == a.Config.LLMModel {
				fmt.Fprintf(w, "%s %s\n", m, okStyle.Render("(configured)"))
				continue
			}
			fmt.Fprintln(w, m)
		}
	})
}

func runPull(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.Ollama == nil {
		return errors.New("pull requires LLM_PROVIDER=ollama")
	}
	model := a.Config.LLMModel
	if len(args) == 1 {
		model = args[0]
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "pulling %s...\n", model)
	if err := a.Ollama.PullModel(cmd.Context(), model); err != nil {
		return fmt.Errorf("pull %s: %w", model, err)
	}

	res := pullResult{Model: model, Status: "success"}
	return render(cmd, res, func(w io.Writer) {
		fmt.Fprintf(w, "%s is available\n", model)
	})
}
