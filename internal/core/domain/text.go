package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// TextKind identifies the variant held by a Text value.
type TextKind int

// Text variants.
const (
	// TextNull is the zero value: absent or JSON null.
	TextNull TextKind = iota

	// TextPlain holds a single string.
	TextPlain

	// TextList holds an ordered list of nested texts.
	TextList

	// TextKeyed holds ordered key/value pairs whose keys act as headings.
	TextKeyed
)

// KeyedEntry is one heading and its nested text within a keyed Text.
type KeyedEntry struct {
	Key   string
	Value Text
}

// Text is free text that upstream content ships as a string, a list,
// or a nested key/value object. It is a closed sum type: exactly one
// variant is populated, selected by Kind.
type Text struct {
	kind    TextKind
	plain   string
	items   []Text
	entries []KeyedEntry
}

// Plain returns a plain string Text.
func Plain(s string) Text {
	return Text{kind: TextPlain, plain: s}
}

// List returns a list Text.
func List(items ...Text) Text {
	return Text{kind: TextList, items: items}
}

// Keyed returns a keyed Text. Entry order is preserved.
func Keyed(entries ...KeyedEntry) Text {
	return Text{kind: TextKeyed, entries: entries}
}

// Entry is shorthand for building a KeyedEntry.
func Entry(key string, value Text) KeyedEntry {
	return KeyedEntry{Key: key, Value: value}
}

// Kind returns the populated variant.
func (t Text) Kind() TextKind {
	return t.kind
}

// IsZero reports whether the text is null.
func (t Text) IsZero() bool {
	return t.kind == TextNull
}

// Flatten renders the text as searchable prose. List items and keyed entries
// are separated by blank lines and keys become upper-cased headings.
// Empty parts are skipped. Flatten never fails.
func (t Text) Flatten() string {
	switch t.kind {
	case TextPlain:
		return strings.TrimSpace(t.plain)
	case TextList:
		parts := make([]string, 0, len(t.items))
		for _, item := range t.items {
			if s := item.Flatten(); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "\n\n")
	case TextKeyed:
		parts := make([]string, 0, len(t.entries))
		for _, e := range t.entries {
			body := e.Value.Flatten()
			if body == "" {
				continue
			}
			heading := strings.ToUpper(strings.TrimSpace(e.Key))
			if heading == "" {
				parts = append(parts, body)
				continue
			}
			parts = append(parts, heading+"\n\n"+body)
		}
		return strings.Join(parts, "\n\n")
	default:
		return ""
	}
}

// String implements fmt.Stringer.
func (t Text) String() string {
	return t.Flatten()
}

// UnmarshalJSON accepts any JSON value. Scalars become plain text,
// arrays become lists and objects become keyed text in document order.
func (t *Text) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeText(dec)
	if err != nil {
		return fmt.Errorf("%w: text: %v", ErrParse, err)
	}
	*t = v
	return nil
}

func decodeText(dec *json.Decoder) (Text, error) {
	tok, err := dec.Token()
	if err != nil {
		return Text{}, err
	}
	switch v := tok.(type) {
	case nil:
		return Text{}, nil
	case string:
		return Plain(v), nil
	case json.Number:
		return Plain(v.String()), nil
	case bool:
		return Plain(fmt.Sprint(v)), nil
	case json.Delim:
		switch v {
		case '[':
			var items []Text
			for dec.More() {
				item, err := decodeText(dec)
				if err != nil {
					return Text{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Text{}, err
			}
			return List(items...), nil
		case '{':
			var entries []KeyedEntry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Text{}, err
				}
				key, _ := keyTok.(string)
				value, err := decodeText(dec)
				if err != nil {
					return Text{}, err
				}
				entries = append(entries, Entry(key, value))
			}
			if _, err := dec.Token(); err != nil {
				return Text{}, err
			}
			return Keyed(entries...), nil
		}
	}
	return Text{}, fmt.Errorf("unexpected token %v", tok)
}

// MarshalJSON writes the text back in its original shape.
func (t Text) MarshalJSON() ([]byte, error) {
	switch t.kind {
	case TextPlain:
		return json.Marshal(t.plain)
	case TextList:
		if t.items == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(t.items)
	case TextKeyed:
		var buf bytes.Buffer
		buf.WriteByte('{')
		for i, e := range t.entries {
			if i > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(e.Key)
			if err != nil {
				return nil, err
			}
			val, err := e.Value.MarshalJSON()
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
		return buf.Bytes(), nil
	default:
		return []byte("null"), nil
	}
}
