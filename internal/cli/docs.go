package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

// document is the printable form of a stored document.
type document struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ContentHash string    `json:"content_hash"`
	FileSize    int64     `json:"file_size"`
	ChunkCount  int       `json:"chunk_count"`
	Status      string    `json:"status"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

type chunk struct {
	ChunkIndex int    `json:"chunk_index"`
	Text       string `json:"text"`
}

func init() {
	docsCmd := &cobra.Command{
		Use:   "docs",
		Short: "List ingested documents",
		Args:  cobra.NoArgs,
		RunE:  runDocs,
	}

	chunksCmd := &cobra.Command{
		Use:   "chunks <document-id>",
		Short: "Show a document's chunks in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runChunks,
	}

	rmCmd := &cobra.Command{
		Use:   "rm <document-id>",
		Short: "Delete a document with its chunks, vectors and concepts",
		Args:  cobra.ExactArgs(1),
		RunE:  runRm,
	}

	RootCmd.AddCommand(docsCmd, chunksCmd, rmCmd)
}

func runDocs(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.Pipeline.ListDocuments(cmd.Context())
	if err != nil {
		return fmt.Errorf("list documents: %w", err)
	}

	docs := make([]document, len(records))
	for i, d := range records {
		docs[i] = document{
			ID:          d.ID,
			Filename:    d.Filename,
			ContentHash: d.ContentHash,
			FileSize:    d.FileSize,
			ChunkCount:  d.ChunkCount,
			Status:      d.Status,
			UploadedAt:  d.UploadedAt,
		}
	}

	return render(cmd, docs, func(w io.Writer) {
		if len(docs) == 0 {
			fmt.Fprintln(w, mutedStyle.Render("no documents"))
			return
		}
		for _, d := range docs {
			fmt.Fprintf(w, "%s  %s  %s  %s  %s\n",
				d.ID, headingStyle.Render(d.Filename), status(d.Status),
				plural(d.ChunkCount, "chunk"), mutedStyle.Render(d.UploadedAt.Format(time.DateTime)))
		}
	})
}

func runChunks(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.Pipeline.GetDocumentChunks(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("get chunks: %w", err)
	}

	chunks := make([]chunk, len(records))
	for i, c := range records {
		chunks[i] = chunk{ChunkIndex: c.ChunkIndex, Text: c.Text}
	}

	return render(cmd, chunks, func(w io.Writer) {
		for _, c := range chunks {
			fmt.Fprintln(w, headingStyle.Render(fmt.Sprintf("[%d]", c.ChunkIndex)))
			fmt.Fprintln(w, c.Text)
			fmt.Fprintln(w)
		}
	})
}

func runRm(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.Pipeline.Delete(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("rm: %w", err)
	}

	return render(cmd, res, func(w io.Writer) {
		fmt.Fprintf(w, "deleted %s (%s)\n", res.Filename, res.DocumentID)
		for _, warning := range res.Warnings {
			fmt.Fprintf(w, "%s %s\n", errStyle.Render("warning:"), warning)
		}
	})
}
