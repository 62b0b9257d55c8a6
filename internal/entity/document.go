package entity

import (
	"time"

	"github.com/veradocs/vera/constants"
)

// Document is the root aggregate. ValidatedText is produced only by the
// validation state machine; StructuredFields only by the extraction
// engine.
type Document struct {
	ID               string                   `json:"id"`
	ImagePath        string                   `json:"image_path"`
	ImageURL         string                   `json:"image_url"`
	ImageWidth       int                      `json:"image_width"`
	ImageHeight      int                      `json:"image_height"`
	Status           constants.DocumentStatus `json:"status"`
	ValidatedText    string                   `json:"validated_text,omitempty"`
	StructuredFields map[string]string        `json:"structured_fields,omitempty"`
	CreatedAt        time.Time                `json:"created_at"`
	UpdatedAt        time.Time                `json:"updated_at"`
	ValidatedAt      *time.Time               `json:"validated_at,omitempty"`
}
