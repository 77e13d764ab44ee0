package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"learnloop/internal/indexer"
	"learnloop/internal/storage"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ingest <paths...>",
		Short: "Ingest files or directories",
		Long:  "Extract, chunk and embed every supported file. Directories are scanned recursively and duplicates are skipped.",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runIngest,
	}

	cmd.Flags().Bool("concepts", false, "Extract concepts from each newly processed document")

	RootCmd.AddCommand(cmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	extractConcepts, _ := cmd.Flags().GetBool("concepts")

	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	results, err := a.Pipeline.IngestPaths(ctx, args)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}

	if extractConcepts {
		for _, res := range results {
			if res.Status != storage.StatusProcessed {
				continue
			}
			if _, err := a.Learning.ExtractAndStoreConcepts(ctx, res.DocumentID); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: concept extraction failed for %s: %v\n", res.Filename, err)
			}
		}
	}

	return render(cmd, results, func(w io.Writer) {
		printIngestResults(w, results)
	})
}

func printIngestResults(w io.Writer, results []indexer.IngestResult) {
	if len(results) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("no supported files found"))
		return
	}
	for _, r := range results {
		switch r.Status {
		case storage.StatusProcessed:
			fmt.Fprintf(w, "%s  %s  %s (%s)\n", status(r.Status), r.Filename, r.DocumentID, plural(r.ChunkCount, "chunk"))
		case storage.StatusError:
			fmt.Fprintf(w, "%s  %s  %s\n", status(r.Status), r.Filename, r.Error)
		default:
			fmt.Fprintf(w, "%s  %s\n", status(r.Status), r.Filename)
		}
	}
}
