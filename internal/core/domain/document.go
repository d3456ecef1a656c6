package domain

import "strings"

// DocumentType classifies a SearchDocument by the entity kind it came from.
type DocumentType string

// Document types, in result tie-break priority order.
const (
	DocumentTypeUnit      DocumentType = "unit"
	DocumentTypeMember    DocumentType = "member"
	DocumentTypePloy      DocumentType = "ploy"
	DocumentTypeEquipment DocumentType = "equipment"
	DocumentTypeRule      DocumentType = "rule"
	DocumentTypeAction    DocumentType = "action"
	DocumentTypeOperation DocumentType = "operation"
	DocumentTypeItem      DocumentType = "item"
	DocumentTypeArticle   DocumentType = "article"
)

var documentTypeOrder = []DocumentType{
	DocumentTypeUnit,
	DocumentTypeMember,
	DocumentTypePloy,
	DocumentTypeEquipment,
	DocumentTypeRule,
	DocumentTypeAction,
	DocumentTypeOperation,
	DocumentTypeItem,
	DocumentTypeArticle,
}

// AllDocumentTypes returns every document type in priority order.
func AllDocumentTypes() []DocumentType {
	out := make([]DocumentType, len(documentTypeOrder))
	copy(out, documentTypeOrder)
	return out
}

// Priority returns the tie-break rank of the type. Lower ranks sort first.
func (t DocumentType) Priority() int {
	for i, dt := range documentTypeOrder {
		if dt == t {
			return i
		}
	}
	return len(documentTypeOrder)
}

// IsValid returns true if the type is recognised.
func (t DocumentType) IsValid() bool {
	return t.Priority() < len(documentTypeOrder)
}

// SearchDocument is the canonical normalised shape consumed by the index.
type SearchDocument struct {
	// ID is unique across the whole document set.
	ID string `json:"id"`

	// Title is the display name.
	Title string `json:"title"`

	// Type is the entity kind the document came from.
	Type DocumentType `json:"type"`

	// Tags holds keywords, scopes and other labels.
	Tags []string `json:"tags,omitempty"`

	// Body is the flattened free text.
	Body string `json:"body,omitempty"`

	// Abbr is an abbreviation searchable alongside the title.
	Abbr string `json:"abbr,omitempty"`

	// GroupID identifies the owning unit, when any.
	GroupID string `json:"groupId,omitempty"`

	// GroupName is the owning unit's display name.
	GroupName string `json:"groupName,omitempty"`

	// Anchor locates the document within its owner's page.
	Anchor string `json:"anchor,omitempty"`
}

// DocumentID derives a stable document identifier from the entity kind,
// the owning entity and the entity's own identifier.
func DocumentID(kind DocumentType, ownerID, localID string) string {
	if ownerID == "" {
		return string(kind) + ":" + localID
	}
	return string(kind) + ":" + ownerID + ":" + localID
}

// Anchor derives a URL fragment from a document title.
func Anchor(title string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
