package api

import (
	"time"

	"claim-eval/internal/store"
)

// LoadSampleResponse reports whether the bundled sample policy was stored.
type LoadSampleResponse struct {
	OK      bool   `json:"ok"`
	Indexed string `json:"indexed,omitempty"`
	Error   string `json:"error,omitempty"`
}

// UploadPolicyResponse reports the stored upload.
type UploadPolicyResponse struct {
	OK      bool   `json:"ok"`
	DocID   string `json:"doc_id,omitempty"`
	Clauses int    `json:"clauses,omitempty"`
	Error   string `json:"error,omitempty"`
}

// PolicyDocumentDTO is the API representation of a stored policy document.
type PolicyDocumentDTO struct {
	DocID       string    `json:"doc_id"`
	Source      string    `json:"source"`
	ClauseCount int       `json:"clause_count"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// PolicyListResponse holds stored policy documents.
type PolicyListResponse struct {
	Items []PolicyDocumentDTO `json:"items"`
	Total int                 `json:"total"`
}

// FromPolicyDocument converts a store model into its DTO.
func FromPolicyDocument(doc store.PolicyDocument) PolicyDocumentDTO {
	return PolicyDocumentDTO{
		DocID:       doc.DocID,
		Source:      doc.Source,
		ClauseCount: doc.ClauseCount,
		UpdatedAt:   doc.UpdatedAt,
	}
}
