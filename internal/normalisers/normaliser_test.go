package normalisers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

func sampleBatch() *domain.EntityBatch {
	return &domain.EntityBatch{
		Actions: []domain.Action{
			{ID: "dash", Name: "Dash", Cost: "1AP", Body: domain.Plain("Move 3.")},
			{ID: "shoot", Name: "Shoot", Scope: domain.ActionScopeUniversal, Body: domain.Plain("Make a shooting attack.")},
		},
		Rules: []domain.Rule{{ID: "cover", Name: "Cover", Body: domain.List(domain.Plain("Light"), domain.Plain("Heavy"))}},
		Operations: []domain.Operation{{
			ID:        "recover",
			Name:      "Recover Intel",
			Kind:      "tac-op",
			Objective: domain.Plain("Hold the objective."),
			Victory:   domain.Keyed(domain.Entry("end", domain.Plain("Score 2VP."))),
			Actions:   []domain.ActionRef{domain.RefTo("dash"), domain.RefTo("pick-up")},
		}},
		Items: []domain.UniversalItem{{
			ID:      "frag",
			Name:    "Frag Grenade",
			Cost:    "2EP",
			Body:    domain.Plain("Blast 2."),
			Actions: []domain.ActionRef{domain.RefTo("shoot")},
		}},
		Units: []domain.Unit{{
			ID:          "vet",
			Name:        "Veteran Guard",
			Abbr:        "VG",
			Faction:     "imperium",
			Keywords:    []string{"infantry", "imperium"},
			Description: domain.Plain("Hardened soldiers."),
			Members: []domain.Member{{
				ID:        "sgt",
				Name:      "Sergeant",
				Stats:     map[string]string{"M": "3", "APL": "2"},
				Abilities: domain.Plain("Lead."),
				Actions:   []domain.ActionRef{domain.RefTo("dash")},
			}},
			Ploys: []domain.Ploy{{ID: "hold", Name: "Hold the Line", Kind: "strategy", Cost: "1CP", Body: domain.Plain("Stand firm.")}},
			Equipment: []domain.Equipment{{
				ID:   "bayonet",
				Name: "Bayonet",
				Body: domain.Plain("Sharp."),
				Actions: []domain.ActionRef{domain.InlineAction(domain.Action{
					ID: "dash", Name: "Dash (Bayonet)", Scope: domain.ActionScopeEquipment, Body: domain.Plain("Move 2."),
				})},
			}},
			Rules: []domain.Rule{{ID: "orders", Name: "Orders", Body: domain.Plain("Issue orders.")}},
		}},
		Articles: []domain.Article{{ID: "init", Title: "Initiative Phase", Order: 1, Section: "sequence", Body: domain.Plain("Roll off.")}},
	}
}

func byID(docs []domain.SearchDocument) map[string]domain.SearchDocument {
	out := make(map[string]domain.SearchDocument, len(docs))
	for _, d := range docs {
		out[d.ID] = d
	}
	return out
}

func TestNormalise_ExpandsUnit(t *testing.T) {
	docs := New(nil).Normalise(sampleBatch())
	m := byID(docs)

	unit := m["unit:vet"]
	assert.Equal(t, domain.DocumentTypeUnit, unit.Type)
	assert.Equal(t, "VG", unit.Abbr)
	assert.Equal(t, []string{"imperium", "infantry"}, unit.Tags)

	member := m["member:vet:sgt"]
	assert.Equal(t, "vet", member.GroupID)
	assert.Equal(t, "Veteran Guard", member.GroupName)
	assert.Equal(t, "sergeant", member.Anchor)
	assert.Equal(t, "APL 2 · M 3\n\nLead.\n\nACTIONS\n\nDash", member.Body)

	assert.Contains(t, m, "ploy:vet:hold")
	assert.Equal(t, []string{"strategy", "1CP"}, m["ploy:vet:hold"].Tags)
	assert.Contains(t, m, "equipment:vet:bayonet")
	assert.Contains(t, m, "rule:vet:orders")
	assert.Equal(t, "Veteran Guard", m["rule:vet:orders"].GroupName)
}

func TestNormalise_AllKinds(t *testing.T) {
	docs := New(nil).Normalise(sampleBatch())
	m := byID(docs)

	assert.Equal(t, "Light\n\nHeavy", m["rule:cover"].Body)
	assert.Equal(t, "Initiative Phase", m["article:init"].Title)
	assert.Equal(t, []string{"sequence"}, m["article:init"].Tags)
	assert.Equal(t, "Blast 2.\n\nACTIONS\n\nShoot", m["item:frag"].Body)
	assert.Equal(t,
		"OBJECTIVE\n\nHold the objective.\n\nVICTORY\n\nEND\n\nScore 2VP.\n\nACTIONS\n\nDash\n\npick-up",
		m["operation:recover"].Body)

	for i := 1; i < len(docs); i++ {
		assert.Less(t, docs[i-1].ID, docs[i].ID, "documents sorted by unique id")
	}
}

func TestNormalise_LaterPassWins(t *testing.T) {
	docs := New(nil).Normalise(sampleBatch())
	m := byID(docs)

	dash := m["action:dash"]
	assert.Equal(t, "Dash (Bayonet)", dash.Title)
	assert.Equal(t, "Move 2.", dash.Body)
	assert.Contains(t, dash.Tags, "equipment")
}

func TestNormalise_UnresolvedReferenceBecomesPlaceholder(t *testing.T) {
	n := New(nil)
	docs := n.Normalise(sampleBatch())
	m := byID(docs)

	placeholder, ok := m["pick-up"]
	require.True(t, ok)
	assert.Equal(t, domain.DocumentTypeAction, placeholder.Type)
	assert.Equal(t, "pick-up", placeholder.Title)
	assert.Equal(t, 1, n.Context().Unresolved())
}

func TestNormalise_Idempotent(t *testing.T) {
	n := New(nil)

	first := n.Normalise(sampleBatch())
	second := n.Normalise(sampleBatch())

	assert.Equal(t, first, second)
	assert.Equal(t, 1, n.Context().Unresolved())
}

func TestNormalise_NilAndEmpty(t *testing.T) {
	n := New(nil)
	assert.Nil(t, n.Normalise(nil))
	assert.Empty(t, n.Normalise(&domain.EntityBatch{}))
}

func TestContext_Reset(t *testing.T) {
	ictx := NewContext()
	n := New(ictx)
	n.Normalise(sampleBatch())

	assert.Equal(t, 2, ictx.CatalogSize())
	_, ok := ictx.Lookup("shoot")
	assert.True(t, ok)

	n.Reset()

	assert.Equal(t, 0, ictx.CatalogSize())
	assert.Equal(t, 0, ictx.Unresolved())
	_, ok = ictx.Lookup("shoot")
	assert.False(t, ok)
}
