package normalisers

import "github.com/custodia-labs/rulebook/internal/core/domain"

func (n *Normaliser) operation(set documentSet, op domain.Operation) {
	names := n.resolveActions(set, op.Actions)
	set.put(domain.SearchDocument{
		ID:    domain.DocumentID(domain.DocumentTypeOperation, "", op.ID),
		Title: op.Name,
		Type:  domain.DocumentTypeOperation,
		Tags:  tags(op.Kind),
		Body: body(
			section("Objective", op.Objective),
			section("Briefing", op.Briefing),
			section("Reveal", op.Reveal),
			section("Rules", op.Rules),
			section("Victory", op.Victory),
			section("Actions", namesText(names)),
		),
		Anchor: domain.Anchor(op.Name),
	})
}
