package normalisers

import "github.com/custodia-labs/rulebook/internal/core/domain"

func articleDocument(a domain.Article) domain.SearchDocument {
	return domain.SearchDocument{
		ID:     domain.DocumentID(domain.DocumentTypeArticle, "", a.ID),
		Title:  a.Title,
		Type:   domain.DocumentTypeArticle,
		Tags:   tags(a.Section),
		Body:   a.Body.Flatten(),
		Anchor: domain.Anchor(a.Title),
	}
}
