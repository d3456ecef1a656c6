package domain

import (
	"strings"
	"time"
)

// Resource names tracked independently by the update check.
const (
	ResourceManifest = "manifest"
	ResourceSequence = "sequence"
	ResourceUnits    = "units"
	ResourceItems    = "items"
)

// ResourceOutcome is the result of fetching, hashing and persisting one resource.
type ResourceOutcome struct {
	// Resource is the resource name.
	Resource string

	// Changed is true when new content was persisted.
	Changed bool

	// Hash is the content hash of the fetched payload, when fetched.
	Hash string

	// Err is the per-resource failure, if any.
	Err error
}

// BatchOutcome collects the outcomes of one update pass.
type BatchOutcome struct {
	Outcomes []ResourceOutcome
}

// Add appends an outcome.
func (b *BatchOutcome) Add(o ResourceOutcome) {
	b.Outcomes = append(b.Outcomes, o)
}

// AnyChanged reports whether any resource persisted new content.
func (b *BatchOutcome) AnyChanged() bool {
	for _, o := range b.Outcomes {
		if o.Changed {
			return true
		}
	}
	return false
}

// Changed returns the names of resources that persisted new content.
func (b *BatchOutcome) Changed() []string {
	var names []string
	for _, o := range b.Outcomes {
		if o.Changed {
			names = append(names, o.Resource)
		}
	}
	return names
}

// Failed reports whether any resource failed.
func (b *BatchOutcome) Failed() bool {
	return b.FirstError() != nil
}

// FirstError returns the first recorded failure.
func (b *BatchOutcome) FirstError() error {
	for _, o := range b.Outcomes {
		if o.Err != nil {
			return o.Err
		}
	}
	return nil
}

// Lookup returns the outcome recorded for a resource.
func (b *BatchOutcome) Lookup(resource string) (ResourceOutcome, bool) {
	for _, o := range b.Outcomes {
		if o.Resource == resource {
			return o, true
		}
	}
	return ResourceOutcome{}, false
}

// Warning joins every failure as "resource: error" separated by "; ".
// It is empty when nothing failed.
func (b *BatchOutcome) Warning() string {
	var parts []string
	for _, o := range b.Outcomes {
		if o.Err != nil {
			parts = append(parts, o.Resource+": "+o.Err.Error())
		}
	}
	return strings.Join(parts, "; ")
}

// SyncResult is returned by a routine update check.
type SyncResult struct {
	// Updated is true when any resource changed.
	Updated bool `json:"updated"`

	// Version is the composed content version, empty when nothing is known.
	Version string `json:"version,omitempty"`

	// Warning describes per-resource failures.
	Warning string `json:"warning,omitempty"`

	// Changed lists the resources that changed.
	Changed []string `json:"changed,omitempty"`

	// RunID identifies the pass in logs and task history.
	RunID string `json:"runId,omitempty"`
}

// ForceResult is returned by a forced refresh.
type ForceResult struct {
	OK      bool   `json:"ok"`
	Version string `json:"version,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ContentUpdated is published when an update pass changed persisted content.
type ContentUpdated struct {
	Version string    `json:"version"`
	Locale  string    `json:"locale"`
	Changed []string  `json:"changed"`
	At      time.Time `json:"at"`
}
