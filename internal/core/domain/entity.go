package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ActionScope classifies where an action definition applies.
type ActionScope string

// Action scopes.
const (
	ActionScopeUniversal ActionScope = "universal"
	ActionScopeMission   ActionScope = "mission"
	ActionScopeEquipment ActionScope = "equipment"
)

// Action is an action definition from the catalog or inlined on an entity.
type Action struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Cost  string      `json:"cost,omitempty"`
	Scope ActionScope `json:"scope,omitempty"`
	Body  Text        `json:"body"`
	Tags  []string    `json:"tags,omitempty"`
}

// ActionRef references an action either inline or by catalog identifier.
// Exactly one of Inline and Ref is set.
type ActionRef struct {
	Inline *Action
	Ref    string
}

// RefTo returns a reference to a catalog action.
func RefTo(id string) ActionRef {
	return ActionRef{Ref: id}
}

// InlineAction returns a reference holding an inline definition.
func InlineAction(a Action) ActionRef {
	return ActionRef{Inline: &a}
}

// UnmarshalJSON accepts either a string identifier or an action object.
func (r *ActionRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var id string
		if err := json.Unmarshal(data, &id); err != nil {
			return fmt.Errorf("%w: action ref: %v", ErrParse, err)
		}
		*r = RefTo(id)
		return nil
	}
	var a Action
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("%w: action ref: %v", ErrParse, err)
	}
	*r = InlineAction(a)
	return nil
}

// MarshalJSON writes the reference back as a string or an object.
func (r ActionRef) MarshalJSON() ([]byte, error) {
	if r.Inline != nil {
		return json.Marshal(r.Inline)
	}
	return json.Marshal(r.Ref)
}

// Rule is a standalone or unit-scoped rule text.
type Rule struct {
	ID   string   `json:"id"`
	Name string   `json:"name"`
	Body Text     `json:"body"`
	Tags []string `json:"tags,omitempty"`
}

// Member is a member type within a composite unit.
type Member struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Keywords  []string          `json:"keywords,omitempty"`
	Stats     map[string]string `json:"stats,omitempty"`
	Abilities Text              `json:"abilities"`
	Actions   []ActionRef       `json:"actions,omitempty"`
}

// Ploy is a unit-specific stratagem.
type Ploy struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind string `json:"kind,omitempty"`
	Cost string `json:"cost,omitempty"`
	Body Text   `json:"body"`
}

// Equipment is a unit-specific equipment option.
type Equipment struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Cost    string      `json:"cost,omitempty"`
	Body    Text        `json:"body"`
	Actions []ActionRef `json:"actions,omitempty"`
}

// Unit is a composite unit with its members, ploys, equipment and local rules.
type Unit struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Abbr        string      `json:"abbr,omitempty"`
	Faction     string      `json:"faction,omitempty"`
	Keywords    []string    `json:"keywords,omitempty"`
	Description Text        `json:"description"`
	Members     []Member    `json:"members,omitempty"`
	Ploys       []Ploy      `json:"ploys,omitempty"`
	Equipment   []Equipment `json:"equipment,omitempty"`
	Rules       []Rule      `json:"rules,omitempty"`
}

// UniversalItem is equipment available to every unit.
type UniversalItem struct {
	ID      string      `json:"id"`
	Name    string      `json:"name"`
	Cost    string      `json:"cost,omitempty"`
	Body    Text        `json:"body"`
	Actions []ActionRef `json:"actions,omitempty"`
}

// Operation is a mission card with its objective text and ordered actions.
type Operation struct {
	ID        string      `json:"id"`
	Name      string      `json:"name"`
	Kind      string      `json:"kind,omitempty"`
	Objective Text        `json:"objective"`
	Briefing  Text        `json:"briefing"`
	Reveal    Text        `json:"reveal"`
	Rules     Text        `json:"rules"`
	Victory   Text        `json:"victory"`
	Actions   []ActionRef `json:"actions,omitempty"`
}

// Article is one step of the turn sequence or a free-standing rules article.
type Article struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Order   int    `json:"order"`
	Section string `json:"section,omitempty"`
	Body    Text   `json:"body"`
}

// CoreBundle is the payload shape of every manifest-listed file.
type CoreBundle struct {
	Rules      []Rule      `json:"rules"`
	Actions    []Action    `json:"actions"`
	Operations []Operation `json:"operations"`
}

// EntityBatch is every persisted entity, as read back for normalisation.
type EntityBatch struct {
	Units      []Unit
	Items      []UniversalItem
	Rules      []Rule
	Actions    []Action
	Operations []Operation
	Articles   []Article
}

// Len returns the total number of top-level entities in the batch.
func (b *EntityBatch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Units) + len(b.Items) + len(b.Rules) + len(b.Actions) + len(b.Operations) + len(b.Articles)
}
