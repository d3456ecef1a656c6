package normalisers

import "github.com/custodia-labs/rulebook/internal/core/domain"

// unit emits the unit itself and one document per member, ploy,
// equipment option and unit rule, all grouped under the unit.
func (n *Normaliser) unit(set documentSet, u domain.Unit) {
	grouped := func(doc domain.SearchDocument) domain.SearchDocument {
		doc.GroupID = u.ID
		doc.GroupName = u.Name
		if doc.Anchor == "" {
			doc.Anchor = domain.Anchor(doc.Title)
		}
		return doc
	}

	set.put(domain.SearchDocument{
		ID:        domain.DocumentID(domain.DocumentTypeUnit, "", u.ID),
		Title:     u.Name,
		Type:      domain.DocumentTypeUnit,
		Tags:      tags(append([]string{u.Faction}, u.Keywords...)...),
		Body:      u.Description.Flatten(),
		Abbr:      u.Abbr,
		GroupID:   u.ID,
		GroupName: u.Name,
	})

	for _, m := range u.Members {
		names := n.resolveActions(set, m.Actions)
		set.put(grouped(domain.SearchDocument{
			ID:    domain.DocumentID(domain.DocumentTypeMember, u.ID, m.ID),
			Title: m.Name,
			Type:  domain.DocumentTypeMember,
			Tags:  tags(m.Keywords...),
			Body: joinBody(
				statsLine(m.Stats),
				m.Abilities.Flatten(),
				body(section("Actions", namesText(names))),
			),
		}))
	}

	for _, p := range u.Ploys {
		set.put(grouped(domain.SearchDocument{
			ID:    domain.DocumentID(domain.DocumentTypePloy, u.ID, p.ID),
			Title: p.Name,
			Type:  domain.DocumentTypePloy,
			Tags:  tags(p.Kind, p.Cost),
			Body:  p.Body.Flatten(),
		}))
	}

	for _, e := range u.Equipment {
		names := n.resolveActions(set, e.Actions)
		set.put(grouped(domain.SearchDocument{
			ID:    domain.DocumentID(domain.DocumentTypeEquipment, u.ID, e.ID),
			Title: e.Name,
			Type:  domain.DocumentTypeEquipment,
			Tags:  tags(e.Cost),
			Body:  joinBody(e.Body.Flatten(), body(section("Actions", namesText(names)))),
		}))
	}

	for _, r := range u.Rules {
		set.put(ruleDocument(r, &u))
	}
}
