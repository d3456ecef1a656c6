package normalisers

import "github.com/custodia-labs/rulebook/internal/core/domain"

// ruleDocument normalises a standalone rule, or a unit rule when owner is set.
func ruleDocument(r domain.Rule, owner *domain.Unit) domain.SearchDocument {
	doc := domain.SearchDocument{
		ID:     domain.DocumentID(domain.DocumentTypeRule, "", r.ID),
		Title:  r.Name,
		Type:   domain.DocumentTypeRule,
		Tags:   tags(r.Tags...),
		Body:   r.Body.Flatten(),
		Anchor: domain.Anchor(r.Name),
	}
	if owner != nil {
		doc.ID = domain.DocumentID(domain.DocumentTypeRule, owner.ID, r.ID)
		doc.GroupID = owner.ID
		doc.GroupName = owner.Name
	}
	return doc
}
