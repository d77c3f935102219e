package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata contains bookkeeping about an ingested document
type Metadata struct {
	Timestamp  string `json:"timestamp"`            // RFC3339 format
	Hash       string `json:"hash"`                 // SHA256 hex digest of the normalized text
	PageCount  int    `json:"page_count,omitempty"` // PDF only
	TextLength int    `json:"text_length"`
}

// NewMetadata creates a new Metadata instance with current timestamp
func NewMetadata(content string, pageCount int) *Metadata {
	return &Metadata{
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Hash:       ComputeHash(content),
		PageCount:  pageCount,
		TextLength: len(content),
	}
}

// ComputeHash computes SHA256 hash of content and returns hex string
func ComputeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
