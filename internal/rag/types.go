package rag

import "errors"

// ErrEmptyQuery is returned when a search query or question is blank.
var ErrEmptyQuery = errors.New("query must not be empty")

// ScoredChunk is one chunk matched by a search.
type ScoredChunk struct {
	// DocumentID is the id of the document the chunk belongs to.
	DocumentID string `json:"document_id"`
	// Filename is the document's upload name.
	Filename string `json:"filename"`
	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int `json:"chunk_index"`
	// Text is the chunk text.
	Text string `json:"text"`
	// Similarity is the dot product of the query and chunk vectors.
	Similarity float32 `json:"similarity"`
}

// AskResponse represents the response from a grounded question.
type AskResponse struct {
	// Answer is the generated answer, or a canned reply when nothing matched.
	Answer string `json:"answer"`
	// Sources are the chunks the answer was grounded on, best first.
	Sources []ScoredChunk `json:"sources"`
}
