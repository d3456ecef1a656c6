package normalisers

import (
	"sort"

	"github.com/custodia-labs/rulebook/internal/core/domain"
	"github.com/custodia-labs/rulebook/internal/core/ports/driven"
	"github.com/custodia-labs/rulebook/internal/logger"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser converts entity batches into search documents.
type Normaliser struct {
	ictx *Context
}

// New creates a normaliser bound to ictx. A nil ictx gets a private context.
func New(ictx *Context) *Normaliser {
	if ictx == nil {
		ictx = NewContext()
	}
	return &Normaliser{ictx: ictx}
}

// Context returns the normaliser's indexing context.
func (n *Normaliser) Context() *Context {
	return n.ictx
}

// Reset clears the indexing context.
func (n *Normaliser) Reset() {
	n.ictx.Reset()
}

// documentSet collects documents by id; a later put replaces an earlier one.
type documentSet map[string]domain.SearchDocument

func (s documentSet) put(doc domain.SearchDocument) {
	s[doc.ID] = doc
}

// Normalise emits documents for every entity in batch, sorted by id.
// Passes run in a fixed order so overrides are deterministic: the action
// catalog first, then rules, operations, universal items, units and articles.
func (n *Normaliser) Normalise(batch *domain.EntityBatch) []domain.SearchDocument {
	if batch == nil {
		return nil
	}
	n.ictx.loadCatalog(batch.Actions)

	set := make(documentSet, batch.Len())
	for _, a := range batch.Actions {
		set.put(actionDocument(a))
	}
	for _, r := range batch.Rules {
		set.put(ruleDocument(r, nil))
	}
	for _, op := range batch.Operations {
		n.operation(set, op)
	}
	for _, item := range batch.Items {
		n.item(set, item)
	}
	for _, u := range batch.Units {
		n.unit(set, u)
	}
	for _, a := range batch.Articles {
		set.put(articleDocument(a))
	}

	docs := make([]domain.SearchDocument, 0, len(set))
	for _, d := range set {
		docs = append(docs, d)
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].ID < docs[j].ID })

	if u := n.ictx.Unresolved(); u > 0 {
		logger.Warn("normalise: %d unresolved action references", u)
	}
	logger.Debug("normalise: %d entities -> %d documents", batch.Len(), len(docs))
	return docs
}

// resolveActions emits a document for every inline action and a placeholder
// for every unresolved reference. It returns the display names of refs in order.
func (n *Normaliser) resolveActions(set documentSet, refs []domain.ActionRef) []string {
	names := make([]string, 0, len(refs))
	for _, ref := range refs {
		switch {
		case ref.Inline != nil:
			set.put(actionDocument(*ref.Inline))
			names = append(names, ref.Inline.Name)
		case ref.Ref == "":
			continue
		default:
			if a, ok := n.ictx.Lookup(ref.Ref); ok {
				names = append(names, a.Name)
				continue
			}
			n.ictx.markUnresolved()
			set.put(placeholderDocument(ref.Ref))
			names = append(names, ref.Ref)
		}
	}
	return names
}
