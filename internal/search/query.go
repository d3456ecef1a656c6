package search

import (
	"math"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// Match weights by how a query token matched an indexed term.
const (
	weightExact  = 1.0
	weightPrefix = 0.6
	weightFuzzy  = 0.4
)

// Search runs query against the index. Each query token contributes the
// best weighted match per document field; documents matching any token are
// returned. When nothing matches, every document whose text contains the
// query as a substring is returned instead.
func (idx *Index) Search(query string, opts domain.SearchOptions) []domain.SearchResult {
	results := idx.tokenSearch(query, opts)
	if len(results) == 0 {
		results = idx.substringSearch(query, opts)
	}
	return paginate(results, opts)
}

func (idx *Index) tokenSearch(query string, opts domain.SearchOptions) []domain.SearchResult {
	tokens := Tokenize(query)
	if len(tokens) == 0 {
		return nil
	}

	scores := make(map[int]float64)
	for _, tok := range tokens {
		best := make(map[int]float64) // doc*fieldCount+field -> weighted score
		idx.matchTerms(tok, func(term string, weight float64) {
			for _, p := range idx.postings[term] {
				key := p.Doc*int(fieldCount) + int(p.Field)
				s := fieldBoost[p.Field] * weight * (1 + math.Log(float64(p.TF)))
				if s > best[key] {
					best[key] = s
				}
			}
		})
		keys := make([]int, 0, len(best))
		for key := range best {
			keys = append(keys, key)
		}
		sort.Ints(keys)
		for _, key := range keys {
			scores[key/int(fieldCount)] += best[key]
		}
	}

	results := make([]domain.SearchResult, 0, len(scores))
	for doc, score := range scores {
		d := idx.docs[doc]
		if !accept(d, opts) {
			continue
		}
		results = append(results, domain.SearchResult{Document: d, Score: score, Match: domain.MatchToken})
	}
	sortResults(results)
	return results
}

// matchTerms calls fn for every dictionary term matching tok, with the
// weight of its strongest match kind.
func (idx *Index) matchTerms(tok string, fn func(term string, weight float64)) {
	seen := make(map[string]bool)

	start := sort.SearchStrings(idx.terms, tok)
	for i := start; i < len(idx.terms) && strings.HasPrefix(idx.terms[i], tok); i++ {
		term := idx.terms[i]
		seen[term] = true
		if term == tok {
			fn(term, weightExact)
		} else {
			fn(term, weightPrefix)
		}
	}

	edits := maxEdits(tok)
	if edits == 0 {
		return
	}
	n := len([]rune(tok))
	for _, term := range idx.terms {
		if seen[term] {
			continue
		}
		if d := len([]rune(term)) - n; d > edits || d < -edits {
			continue
		}
		if levenshtein.ComputeDistance(tok, term) <= edits {
			fn(term, weightFuzzy)
		}
	}
}

func (idx *Index) substringSearch(query string, opts domain.SearchOptions) []domain.SearchResult {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return nil
	}
	var results []domain.SearchResult
	for i, hay := range idx.haystack {
		if !strings.Contains(hay, needle) || !accept(idx.docs[i], opts) {
			continue
		}
		results = append(results, domain.SearchResult{Document: idx.docs[i], Match: domain.MatchSubstring})
	}
	sortResults(results)
	return results
}

func accept(d domain.SearchDocument, opts domain.SearchOptions) bool {
	if opts.GroupID != "" && d.GroupID != opts.GroupID {
		return false
	}
	if len(opts.Types) == 0 {
		return true
	}
	for _, t := range opts.Types {
		if d.Type == t {
			return true
		}
	}
	return false
}

// sortResults orders by score, then type priority, then title, then id.
func sortResults(results []domain.SearchResult) {
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if pa, pb := a.Document.Type.Priority(), b.Document.Type.Priority(); pa != pb {
			return pa < pb
		}
		if a.Document.Title != b.Document.Title {
			return a.Document.Title < b.Document.Title
		}
		return a.Document.ID < b.Document.ID
	})
}

func paginate(results []domain.SearchResult, opts domain.SearchOptions) []domain.SearchResult {
	if opts.Offset > 0 {
		if opts.Offset >= len(results) {
			return nil
		}
		results = results[opts.Offset:]
	}
	if opts.Limit > 0 && len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results
}
