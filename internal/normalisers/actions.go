package normalisers

import "github.com/custodia-labs/rulebook/internal/core/domain"

// actionDocument normalises an action definition. Catalog and inline
// definitions share one id per action, so an inline override replaces the
// catalog entry when it is emitted later.
func actionDocument(a domain.Action) domain.SearchDocument {
	scope := string(a.Scope)
	if scope == "" {
		scope = string(domain.ActionScopeUniversal)
	}
	return domain.SearchDocument{
		ID:     domain.DocumentID(domain.DocumentTypeAction, "", a.ID),
		Title:  a.Name,
		Type:   domain.DocumentTypeAction,
		Tags:   tags(append([]string{scope, a.Cost}, a.Tags...)...),
		Body:   a.Body.Flatten(),
		Anchor: domain.Anchor(a.Name),
	}
}

// placeholderDocument stands in for an action reference missing from the catalog.
func placeholderDocument(ref string) domain.SearchDocument {
	return domain.SearchDocument{
		ID:    ref,
		Title: ref,
		Type:  domain.DocumentTypeAction,
		Tags:  []string{"unresolved"},
	}
}
