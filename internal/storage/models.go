package storage

import "time"

// Document statuses.
const (
	StatusUploaded      = "uploaded"
	StatusProcessed     = "processed"
	StatusAlreadyExists = "already_exists"
	StatusError         = "error"
)

// DocumentRecord represents an ingested document in the database.
type DocumentRecord struct {
	ID          string // UUID
	Filename    string // Original upload name
	ContentHash string // SHA256 hex string of the raw bytes
	FilePath    string // Where the raw bytes were saved
	FileSize    int64
	ChunkCount  int
	Status      string
	UploadedAt  time.Time
}

// ChunkRecord is one window of a document's extracted text.
type ChunkRecord struct {
	DocumentID string
	ChunkIndex int // Dense, starts at 0
	Text       string
}

// ConceptRecord is an extracted concept together with its mastery state.
type ConceptRecord struct {
	ID           string // UUID
	DocumentID   string // Empty when the concept has no originating document
	Main         string
	Sub          string
	Description  string
	MasteryLevel int
	Progress     int
	UpdatedAt    time.Time
}
