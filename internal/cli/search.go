package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"learnloop/internal/rag"
)

func init() {
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Find the chunks most similar to a query",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runSearch,
	}
	searchCmd.Flags().IntP("top-k", "k", rag.DefaultTopK, "Max results")

	askCmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer a question from the ingested documents",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}

	RootCmd.AddCommand(searchCmd, askCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	topK, _ := cmd.Flags().GetInt("top-k")
	query := strings.Join(args, " ")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	results, err := a.Engine.Search(cmd.Context(), query, topK)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}
	if results == nil {
		results = []rag.ScoredChunk{}
	}

	return render(cmd, results, func(w io.Writer) {
		if len(results) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("no matching chunks"))
			return
		}
		printSources(w, results)
	})
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	resp, err := a.Engine.Ask(cmd.Context(), question)
	if err != nil {
		return fmt.Errorf("ask: %w", err)
	}

	return render(cmd, resp, func(w io.Writer) {
		fmt.Fprintln(w, resp.Answer)
		if len(resp.Sources) > 0 {
			fmt.Fprintln(w)
			fmt.Fprintln(w, headingStyle.Render("Sources"))
			printSources(w, resp.Sources)
		}
	})
}

func printSources(w io.Writer, chunks []rag.ScoredChunk) {
	for _, c := range chunks {
		fmt.Fprintf(w, "%.3f  %s #%d  %s\n",
			c.Similarity, headingStyle.Render(c.Filename), c.ChunkIndex, mutedStyle.Render(preview(c.Text, 80)))
	}
}
