package snapshot

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"
)

// ManifestVersion is the current manifest format version.
const ManifestVersion = 1

// RecordInfo is the integrity stamp of one persisted record.
type RecordInfo struct {
	// Path is the record's document path relative to the store root.
	Path string `json:"path" yaml:"path"`
	// Hash is the hex SHA-256 of the document bytes.
	Hash string `json:"hash" yaml:"hash"`
	// Size is the document size in bytes.
	Size int64 `json:"size" yaml:"size"`
	// ModTime is the document's modification time when stamped.
	ModTime time.Time `json:"mod_time" yaml:"mod_time"`
}

// Manifest records the integrity state of a catalog at snapshot time.
type Manifest struct {
	Version   int       `json:"version" yaml:"version"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
	// AggregateHash is the hex SHA-256 over the sorted name:hash lines of
	// Records. Any change to any record changes the aggregate.
	AggregateHash string `json:"aggregate_hash" yaml:"aggregate_hash"`
	// Records maps standard name to its integrity stamp.
	Records map[string]RecordInfo `json:"records" yaml:"records"`
}

// ComputeAggregate derives the aggregate hash from the record stamps.
func (m *Manifest) ComputeAggregate() string {
	names := make([]string, 0, len(m.Records))
	for name := range m.Records {
		names = append(names, name)
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{':'})
		h.Write([]byte(m.Records[name].Hash))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
