package search

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/cespare/xxhash/v2"

	"github.com/custodia-labs/rulebook/internal/core/domain"
)

// Artifact layout: magic, format version (uint16), xxhash64 of the payload
// (uint64), then the JSON payload. All integers are big-endian.
const (
	artifactMagic   = "RBIX"
	artifactVersion = uint16(1)
	headerSize      = len(artifactMagic) + 2 + 8
)

type artifactPayload struct {
	Documents []domain.SearchDocument `json:"documents"`
	Postings  map[string][]posting    `json:"postings"`
}

// Encode serialises idx into a checksummed artifact.
func Encode(idx *Index) ([]byte, error) {
	payload, err := json.Marshal(artifactPayload{Documents: idx.docs, Postings: idx.postings})
	if err != nil {
		return nil, fmt.Errorf("encode index: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(payload))
	buf.WriteString(artifactMagic)
	_ = binary.Write(&buf, binary.BigEndian, artifactVersion)
	_ = binary.Write(&buf, binary.BigEndian, xxhash.Sum64(payload))
	buf.Write(payload)
	return buf.Bytes(), nil
}

// Decode restores an index from an artifact produced by Encode.
func Decode(data []byte) (*Index, error) {
	if len(data) < headerSize || string(data[:len(artifactMagic)]) != artifactMagic {
		return nil, fmt.Errorf("%w: missing header", domain.ErrIncompatibleArtifact)
	}
	rest := data[len(artifactMagic):]
	if v := binary.BigEndian.Uint16(rest[:2]); v != artifactVersion {
		return nil, fmt.Errorf("%w: format version %d, want %d", domain.ErrIncompatibleArtifact, v, artifactVersion)
	}
	sum := binary.BigEndian.Uint64(rest[2:10])
	payload := rest[10:]
	if xxhash.Sum64(payload) != sum {
		return nil, fmt.Errorf("%w: checksum mismatch", domain.ErrCorruptArtifact)
	}

	var p artifactPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptArtifact, err)
	}
	for term, ps := range p.Postings {
		for _, post := range ps {
			if post.Doc < 0 || post.Doc >= len(p.Documents) || post.Field >= fieldCount {
				return nil, fmt.Errorf("%w: posting for %q out of range", domain.ErrCorruptArtifact, term)
			}
		}
	}
	if p.Postings == nil {
		p.Postings = make(map[string][]posting)
	}
	if p.Documents == nil {
		p.Documents = []domain.SearchDocument{}
	}
	return assemble(p.Documents, p.Postings), nil
}
