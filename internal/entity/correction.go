package entity

import "time"

// Correction is an append-only audit record of a reviewer supplying a
// corrected value for a token. Original and corrected text are both
// recorded even when they are equal. Never mutated or deleted.
type Correction struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	TokenID       string    `json:"token_id"`
	OriginalText  string    `json:"original_text"`
	CorrectedText string    `json:"corrected_text"`
	ConfirmedAt   time.Time `json:"confirmed_at"`
}
