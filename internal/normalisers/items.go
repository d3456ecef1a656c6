package normalisers

import "github.com/custodia-labs/rulebook/internal/core/domain"

func (n *Normaliser) item(set documentSet, item domain.UniversalItem) {
	names := n.resolveActions(set, item.Actions)
	set.put(domain.SearchDocument{
		ID:     domain.DocumentID(domain.DocumentTypeItem, "", item.ID),
		Title:  item.Name,
		Type:   domain.DocumentTypeItem,
		Tags:   tags(item.Cost),
		Body:   joinBody(item.Body.Flatten(), body(section("Actions", namesText(names)))),
		Anchor: domain.Anchor(item.Name),
	})
}
