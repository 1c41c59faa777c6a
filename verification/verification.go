// Package verification holds the client-side types for the document
// verification contract. The scoring itself (Verhoeff checksum, layout,
// OCR text, copy-move, metadata, error-level analysis) is owned by the
// backend ML pipeline; the client only submits documents and renders the
// returned scores.
package verification

import (
	"io"
	"time"

	"github.com/pkg/errors"

	clienterrors "github.com/authdoc/go-authdoc-client/internal/errors"
)

// Classification labels assigned by the backend.
const (
	ClassificationAuthentic  = "Authentic"
	ClassificationSuspicious = "Suspicious"
	ClassificationForged     = "Forged"
)

const aadhaarNumberLength = 12

// Scores are the individual verification metrics, served on a 0-100 scale.
type Scores struct {
	Verhoeff float64 `json:"verhoeff"`
	Layout   float64 `json:"layout"`
	Text     float64 `json:"text"`
	CopyMove float64 `json:"copy_move"`
	Metadata float64 `json:"metadata"`
	ELA      float64 `json:"ela"`
}

// Result is the response of a verification run.
type Result struct {
	AadhaarNumber  string  `json:"aadhaar_number"`
	Scores         Scores  `json:"scores"`
	FinalScore     float64 `json:"final_score"`
	Classification string  `json:"classification"`
	Status         string  `json:"status"`
}

// Record is a stored verification, as returned by the results endpoint.
// Score fields are pointers because records that errored before scoring
// have no values.
type Record struct {
	ID            int64    `json:"id"`
	User          string   `json:"user"`
	AadhaarNumber string   `json:"aadhaar_number"`
	Document      string   `json:"document"`
	Template      string   `json:"template"`
	VerhoeffScore *float64 `json:"verhoeff_score"`
	LayoutScore   *float64 `json:"layout_score"`
	TextScore     *float64 `json:"text_score"`
	CopyMoveScore *float64 `json:"copy_move_score"`
	MetadataScore *float64 `json:"metadata_score"`
	ELAScore      *float64 `json:"ela_score"`
	FinalScore    *float64 `json:"final_score"`
	Result        string   `json:"result"`
	Status        string   `json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Request is a verification submission. Document is required; Template is
// the optional official layout the backend compares against.
type Request struct {
	AadhaarNumber string
	Document      io.Reader
	DocumentName  string
	Template      io.Reader
	TemplateName  string
}

// Validate checks the request before any network call is attempted.
func (r Request) Validate() error {
	if !validAadhaarNumber(r.AadhaarNumber) {
		return errors.Wrap(clienterrors.ErrValidation, "aadhaar number must be 12 digits")
	}
	if r.Document == nil {
		return errors.Wrap(clienterrors.ErrValidation, "document is required")
	}
	return nil
}

func validAadhaarNumber(number string) bool {
	if len(number) != aadhaarNumberLength {
		return false
	}
	for _, r := range number {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
