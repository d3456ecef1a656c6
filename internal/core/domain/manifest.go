package domain

import (
	"path"
	"strings"
)

// ManifestFile is one content file listed by the manifest.
type ManifestFile struct {
	// Name is the file name relative to the locale content root.
	Name string `json:"name"`

	// SHA256 is the expected hex digest, when the release publishes one.
	SHA256 string `json:"sha256,omitempty"`
}

// Manifest is the top-level descriptor of a content release.
type Manifest struct {
	Version string `json:"version"`

	// Commit identifies the upstream revision the release was built from.
	Commit string `json:"commit,omitempty"`

	Files []ManifestFile `json:"files"`
}

// ListingEntry is one item returned by a directory listing backend.
type ListingEntry struct {
	// Name is the item's file name.
	Name string `json:"name"`

	// Kind is "file" or "dir".
	Kind string `json:"type"`
}

// Listing entry kinds.
const (
	ListingKindFile = "file"
	ListingKindDir  = "dir"
)

// IsContentFile reports whether the entry is a structured content file.
func (e ListingEntry) IsContentFile() bool {
	kind := e.Kind
	if kind == "" {
		kind = ListingKindFile
	}
	return kind == ListingKindFile && strings.EqualFold(path.Ext(e.Name), ".json")
}

// GroupItem is a fetched member of a listed group.
type GroupItem struct {
	Name    string
	Payload []byte
}
