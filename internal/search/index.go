package search

import (
	"sort"
	"strings"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// field identifies an indexed document field.
type field uint8

const (
	fieldTitle field = iota
	fieldAbbr
	fieldTags
	fieldGroup
	fieldBody
	fieldCount
)

var fieldBoost = [fieldCount]float64{
	fieldTitle: 3,
	fieldAbbr:  3,
	fieldTags:  2,
	fieldGroup: 1.5,
	fieldBody:  1,
}

// posting records one term's occurrences in one field of one document.
type posting struct {
	Doc   int   `json:"d"`
	Field field `json:"f"`
	TF    int   `json:"n"`
}

// Index is an immutable inverted index over a document set.
type Index struct {
	docs     []domain.SearchDocument
	byID     map[string]int
	terms    []string
	postings map[string][]posting
	haystack []string
}

// Build constructs an index over docs. Documents are ordered by id and a
// later document replaces an earlier one with the same id.
func Build(docs []domain.SearchDocument) *Index {
	unique := make(map[string]domain.SearchDocument, len(docs))
	for _, d := range docs {
		unique[d.ID] = d
	}
	ordered := make([]domain.SearchDocument, 0, len(unique))
	for _, d := range unique {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	postings := make(map[string][]posting)
	for i, d := range ordered {
		for f, text := range fieldTexts(d) {
			counts := make(map[string]int)
			for _, tok := range Tokenize(text) {
				counts[tok]++
			}
			for term, n := range counts {
				postings[term] = append(postings[term], posting{Doc: i, Field: field(f), TF: n})
			}
		}
	}
	for term := range postings {
		ps := postings[term]
		sort.Slice(ps, func(i, j int) bool {
			if ps[i].Doc != ps[j].Doc {
				return ps[i].Doc < ps[j].Doc
			}
			return ps[i].Field < ps[j].Field
		})
	}
	return assemble(ordered, postings)
}

// assemble derives the lookup structures shared by Build and Decode.
func assemble(docs []domain.SearchDocument, postings map[string][]posting) *Index {
	idx := &Index{
		docs:     docs,
		byID:     make(map[string]int, len(docs)),
		terms:    make([]string, 0, len(postings)),
		postings: postings,
		haystack: make([]string, len(docs)),
	}
	for i, d := range docs {
		idx.byID[d.ID] = i
		texts := fieldTexts(d)
		idx.haystack[i] = strings.ToLower(strings.Join(texts[:], "\n"))
	}
	for term := range postings {
		idx.terms = append(idx.terms, term)
	}
	sort.Strings(idx.terms)
	return idx
}

func fieldTexts(d domain.SearchDocument) [fieldCount]string {
	return [fieldCount]string{
		fieldTitle: d.Title,
		fieldAbbr:  d.Abbr,
		fieldTags:  strings.Join(d.Tags, " "),
		fieldGroup: d.GroupName,
		fieldBody:  d.Body,
	}
}

// Len returns the number of indexed documents.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// Terms returns the number of distinct terms.
func (idx *Index) Terms() int {
	return len(idx.terms)
}

// Document returns a document by id.
func (idx *Index) Document(id string) (domain.SearchDocument, bool) {
	i, ok := idx.byID[id]
	if !ok {
		return domain.SearchDocument{}, false
	}
	return idx.docs[i], true
}

// Documents returns a copy of every document, ordered by id.
func (idx *Index) Documents() []domain.SearchDocument {
	out := make([]domain.SearchDocument, len(idx.docs))
	copy(out, idx.docs)
	return out
}
