package normalisers

import (
	"sort"
	"strings"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// section is shorthand for a keyed entry used to assemble document bodies.
func section(heading string, body domain.Text) domain.KeyedEntry {
	return domain.Entry(heading, body)
}

// body flattens sections into a document body, skipping empty ones.
func body(sections ...domain.KeyedEntry) string {
	return domain.Keyed(sections...).Flatten()
}

// joinBody joins non-empty parts with blank lines.
func joinBody(parts ...string) string {
	kept := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "\n\n")
}

// namesText renders action names as a list text.
func namesText(names []string) domain.Text {
	if len(names) == 0 {
		return domain.Text{}
	}
	items := make([]domain.Text, len(names))
	for i, name := range names {
		items[i] = domain.Plain(name)
	}
	return domain.List(items...)
}

// statsLine renders a stat block as "APL 2 · M 3" in key order.
func statsLine(stats map[string]string) string {
	if len(stats) == 0 {
		return ""
	}
	keys := make([]string, 0, len(stats))
	for k := range stats {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + " " + stats[k]
	}
	return strings.Join(parts, " · ")
}

// tags builds a tag list from values, dropping blanks and duplicates.
func tags(values ...string) []string {
	var out []string
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}
