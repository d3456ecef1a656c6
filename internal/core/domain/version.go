package domain

import (
	"strings"
	"time"
)

// MaxHistory bounds VersionRecord.History.
const MaxHistory = 10

// VersionDelimiter joins the components of a composed version string.
const VersionDelimiter = "+"

// versionHashPrefix is the number of hash characters kept per component.
const versionHashPrefix = 8

// VersionEntry is one superseded version.
type VersionEntry struct {
	Version   string    `json:"version"`
	Timestamp time.Time `json:"timestamp"`
	Commit    string    `json:"commit,omitempty"`
}

// VersionRecord is the persisted content version state.
type VersionRecord struct {
	CurrentVersion      string         `json:"currentVersion"`
	Commit              string         `json:"commit,omitempty"`
	LastUpdateTime      time.Time      `json:"lastUpdateTime"`
	LastCheckTime       time.Time      `json:"lastCheckTime"`
	History             []VersionEntry `json:"history"`
	AcknowledgedVersion string         `json:"acknowledgedVersion,omitempty"`
}

// Record overwrites the current version and update time. When the version
// differs from the previous one, the previous version is pushed onto the
// front of History, which is then truncated to MaxHistory entries.
// Each history entry keeps the commit recorded with its version. An empty
// commit keeps the current one, as the manifest it came from is unchanged.
// It returns the previous version.
func (r *VersionRecord) Record(version, commit string, now time.Time) string {
	previous, previousCommit := r.CurrentVersion, r.Commit
	r.CurrentVersion = version
	if commit != "" {
		r.Commit = commit
	}
	r.LastUpdateTime = now

	if previous == version || previous == "" {
		return previous
	}

	entry := VersionEntry{Version: previous, Timestamp: now, Commit: previousCommit}
	r.History = append([]VersionEntry{entry}, r.History...)
	if len(r.History) > MaxHistory {
		r.History = r.History[:MaxHistory]
	}
	return previous
}

// UnseenChanges counts version transitions since the acknowledged version.
// When the acknowledged version has fallen out of History the count is
// the number of versions still on record.
func (r *VersionRecord) UnseenChanges() int {
	if r.CurrentVersion == "" {
		return 0
	}
	versions := make([]string, 0, len(r.History)+1)
	versions = append(versions, r.CurrentVersion)
	for _, h := range r.History {
		versions = append(versions, h.Version)
	}
	for i, v := range versions {
		if v == r.AcknowledgedVersion {
			return i
		}
	}
	return len(versions)
}

// VersionInfo is the read model used by display surfaces.
type VersionInfo struct {
	CurrentVersion string         `json:"currentVersion"`
	Commit         string         `json:"commit,omitempty"`
	LastUpdateTime time.Time      `json:"lastUpdateTime"`
	LastCheckTime  time.Time      `json:"lastCheckTime"`
	History        []VersionEntry `json:"history"`
	UnseenChanges  int            `json:"unseenChanges"`
}

// Info derives the read model from the record.
func (r *VersionRecord) Info() VersionInfo {
	history := make([]VersionEntry, len(r.History))
	copy(history, r.History)
	return VersionInfo{
		CurrentVersion: r.CurrentVersion,
		Commit:         r.Commit,
		LastUpdateTime: r.LastUpdateTime,
		LastCheckTime:  r.LastCheckTime,
		History:        history,
		UnseenChanges:  r.UnseenChanges(),
	}
}

// ComposeVersion joins the manifest version with short prefixes of the
// units and items hashes. Empty components are omitted, so the result is
// empty only when every component is.
func ComposeVersion(manifestVersion, unitsHash, itemsHash string) string {
	parts := make([]string, 0, 3)
	for _, p := range []string{manifestVersion, shortHash(unitsHash), shortHash(itemsHash)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, VersionDelimiter)
}

func shortHash(h string) string {
	if len(h) > versionHashPrefix {
		return h[:versionHashPrefix]
	}
	return h
}
