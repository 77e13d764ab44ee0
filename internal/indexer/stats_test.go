package indexer

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/mock/gomock"

	"learnloop/internal/extract"
	llmmocks "learnloop/internal/llm/mocks"
	"learnloop/internal/storage"
	storagemocks "learnloop/internal/storage/mocks"
)

func TestComputeLengthStats(t *testing.T) {
	tests := []struct {
		name    string
		lengths []int
		want    ChunkLengthStats
	}{
		{name: "empty", lengths: nil, want: ChunkLengthStats{}},
		{name: "single", lengths: []int{7}, want: ChunkLengthStats{Min: 7, Max: 7, Mean: 7, P50: 7, P95: 7}},
		{
			name:    "unsorted",
			lengths: []int{40, 10, 30, 20},
			want:    ChunkLengthStats{Min: 10, Max: 40, Mean: 25, P50: 20, P95: 40},
		},
		{
			name:    "rounded mean",
			lengths: []int{1, 1, 2},
			want:    ChunkLengthStats{Min: 1, Max: 2, Mean: 1.33, P50: 1, P95: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := computeLengthStats(tt.lengths); got != tt.want {
				t.Errorf("computeLengthStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeLengthStats_DoesNotMutate(t *testing.T) {
	lengths := []int{3, 1, 2}
	computeLengthStats(lengths)
	if lengths[0] != 3 || lengths[1] != 1 || lengths[2] != 2 {
		t.Errorf("input was reordered: %v", lengths)
	}
}

func TestPipeline_Stats(t *testing.T) {
	ctrl := gomock.NewController(t)
	env := newTestEnv(t, ctrl, nil, 1000, 200)
	ctx := context.Background()

	env.embedder.EXPECT().EmbedTexts(gomock.Any(), gomock.Any()).DoAndReturn(fakeEmbed).Times(2)

	if _, err := env.pipeline.Ingest(ctx, []byte("abcdefgh"), "a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := env.pipeline.Ingest(ctx, []byte("abcd"), "b.txt"); err != nil {
		t.Fatal(err)
	}

	stats, err := env.pipeline.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.Documents != 2 || stats.Chunks != 2 || stats.DocumentsNoChunks != 0 {
		t.Errorf("Stats() counts = %+v", stats)
	}
	if stats.ChunkLength.Min != 4 || stats.ChunkLength.Max != 8 || stats.ChunkLength.Mean != 6 {
		t.Errorf("ChunkLength = %+v", stats.ChunkLength)
	}
	if stats.EstimatedTokensMean != 1.5 {
		t.Errorf("EstimatedTokensMean = %v, want 1.5", stats.EstimatedTokensMean)
	}
	if stats.ChunkerVersion != ChunkerVersion {
		t.Errorf("ChunkerVersion = %q", stats.ChunkerVersion)
	}
	if len(stats.IndexVersion) != 16 {
		t.Errorf("IndexVersion = %q, want 16 hex chars", stats.IndexVersion)
	}
}

func TestPipeline_IndexVersion(t *testing.T) {
	newPipeline := func(model string, size int) *Pipeline {
		p, err := NewPipeline(nil, nil, nil, extract.Default(nil), nil, nil,
			Config{ChunkSize: size, ChunkOverlap: 10, EmbeddingModel: model})
		if err != nil {
			t.Fatal(err)
		}
		return p
	}

	base := newPipeline("nomic-embed-text", 1000).IndexVersion()
	if again := newPipeline("nomic-embed-text", 1000).IndexVersion(); again != base {
		t.Errorf("IndexVersion() not stable: %q vs %q", base, again)
	}
	if other := newPipeline("bge-small", 1000).IndexVersion(); other == base {
		t.Error("IndexVersion() should change with the embedding model")
	}
	if other := newPipeline("nomic-embed-text", 500).IndexVersion(); other == base {
		t.Error("IndexVersion() should change with the chunk size")
	}
}

func TestPipeline_Stats_CountFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	docs := storagemocks.NewMockDocumentStore(ctrl)
	chunks := storagemocks.NewMockChunkStore(ctrl)

	docs.EXPECT().Counts(gomock.Any()).Return(nil, storage.ErrStorageFailure)

	p, err := NewPipeline(docs, chunks, nil, extract.Default(nil), llmmocks.NewMockEmbedder(ctrl), nil,
		Config{ChunkSize: 100, ChunkOverlap: 10})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := p.Stats(context.Background()); !errors.Is(err, storage.ErrStorageFailure) {
		t.Errorf("Stats() error = %v, want ErrStorageFailure", err)
	}
}
