// Package normalisers flattens persisted game content into the single
// search document shape consumed by the index.
//
// One file per entity kind emits that kind's documents into a shared,
// id-keyed set; when two passes emit the same id the later write wins.
// Action references are resolved against a catalog held by a Context,
// which is rebuilt on every Normalise call and reset on locale switches.
package normalisers
