package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Key types, also used as the label of cache metrics.
const (
	KeyTypeSchema   = "schema"
	KeyTypeLayout   = "layout"
	KeyTypeArtifact = "artifact"
)

// Keyer builds cache keys. Every key starts with its key type followed by a
// colon, which [KeyType] relies on.
type Keyer interface {
	// SchemaKey identifies the raw records fetched from a source.
	SchemaKey(source string) string
	// LayoutKey identifies a serialized layout computed from a schema.
	LayoutKey(schemaHash string, opts LayoutKeyOpts) string
	// ArtifactKey identifies a rendered file computed from a layout.
	ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string
}

// LayoutKeyOpts holds every option that changes the computed layout.
type LayoutKeyOpts struct {
	RankDir string  `json:"rankdir"`
	RankSep float64 `json:"ranksep"`
	NodeSep float64 `json:"nodesep"`
	MarginX float64 `json:"marginx"`
	MarginY float64 `json:"marginy"`
	Passes  int     `json:"passes"`
	Filter  string  `json:"filter,omitempty"`
}

// ArtifactKeyOpts holds every option that changes a rendered artifact.
type ArtifactKeyOpts struct {
	Format string `json:"format"`
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// SchemaKey implements [Keyer].
func (DefaultKeyer) SchemaKey(source string) string { return hashKey(KeyTypeSchema, source) }

// LayoutKey implements [Keyer].
func (DefaultKeyer) LayoutKey(schemaHash string, opts LayoutKeyOpts) string {
	return hashKey(KeyTypeLayout, schemaHash, opts)
}

// ArtifactKey implements [Keyer].
func (DefaultKeyer) ArtifactKey(layoutHash string, opts ArtifactKeyOpts) string {
	return hashKey(KeyTypeArtifact, layoutHash, opts)
}

// KeyType returns the key type of a key built by a [Keyer], ignoring any
// scope prefix.
func KeyType(key string) string {
	for _, t := range []string{KeyTypeSchema, KeyTypeLayout, KeyTypeArtifact} {
		if strings.Contains(key, t+":") {
			return t
		}
	}
	return "unknown"
}

// hashKey generates a cache key by hashing the components.
// The key format is: prefix:hash(parts...)
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%s:%s", prefix, hex.EncodeToString(hash[:]))
}

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
