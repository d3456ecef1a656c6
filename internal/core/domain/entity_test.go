package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionRef_UnmarshalBothForms(t *testing.T) {
	var refs []ActionRef
	require.NoError(t, json.Unmarshal([]byte(`["dash", {"id": "overwatch", "name": "Overwatch", "body": "Shoot."}]`), &refs))

	require.Len(t, refs, 2)
	assert.Equal(t, "dash", refs[0].Ref)
	assert.Nil(t, refs[0].Inline)

	require.NotNil(t, refs[1].Inline)
	assert.Equal(t, "overwatch", refs[1].Inline.ID)
	assert.Equal(t, "Shoot.", refs[1].Inline.Body.Flatten())
}

func TestActionRef_MarshalRoundTrip(t *testing.T) {
	refs := []ActionRef{RefTo("dash"), InlineAction(Action{ID: "a1", Name: "Charge", Body: Plain("Move.")})}

	out, err := json.Marshal(refs)
	require.NoError(t, err)

	var back []ActionRef
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, "dash", back[0].Ref)
	assert.Equal(t, "Charge", back[1].Inline.Name)
}

func TestActionRef_InvalidShape(t *testing.T) {
	var ref ActionRef
	err := ref.UnmarshalJSON([]byte(`[1, 2]`))
	assert.ErrorIs(t, err, ErrParse)
}

func TestUnit_UnmarshalNestedText(t *testing.T) {
	payload := `{
		"id": "vet-guard",
		"name": "Veteran Guard",
		"abbr": "VG",
		"description": ["Elite", {"lore": "Old soldiers."}],
		"members": [{"id": "sgt", "name": "Sergeant", "abilities": "Lead.", "actions": ["dash"]}],
		"ploys": [{"id": "p1", "name": "Hold", "kind": "strategy", "body": "Stand firm."}]
	}`
	var u Unit
	require.NoError(t, json.Unmarshal([]byte(payload), &u))

	assert.Equal(t, "Elite\n\nLORE\n\nOld soldiers.", u.Description.Flatten())
	require.Len(t, u.Members, 1)
	assert.Equal(t, "dash", u.Members[0].Actions[0].Ref)
	assert.Equal(t, "strategy", u.Ploys[0].Kind)
}

func TestEntityBatch_Len(t *testing.T) {
	var nilBatch *EntityBatch
	assert.Equal(t, 0, nilBatch.Len())

	b := &EntityBatch{Units: make([]Unit, 2), Rules: make([]Rule, 1), Articles: make([]Article, 3)}
	assert.Equal(t, 6, b.Len())
}
