package adapter

import (
	"strings"

	"github.com/rigpool/rigpool/pkg/errors"
)

// KeyAdapter builds and parses metastore keys under a fixed prefix.
type KeyAdapter interface {
	// Encode joins the given fields under the adapter's prefix.
	Encode(keys ...string) string
	// Decode strips the prefix and splits the remaining fields.
	Decode(key string) ([]string, error)
	// Path returns the bare prefix, used for range scans.
	Path() string
}

// Metastore key spaces. Resource names may not contain '/', which the
// registry validates on load, so plain joining is unambiguous.
var (
	ResourceKeyAdapter = prefixKeyAdapter("/rigpool/resource/")
)

type prefixKeyAdapter string

func (p prefixKeyAdapter) Encode(keys ...string) string {
	return string(p) + strings.Join(keys, "/")
}

func (p prefixKeyAdapter) Decode(key string) ([]string, error) {
	if !strings.HasPrefix(key, string(p)) {
		return nil, errors.ErrMetaOpFail.GenWithStack("key %s is outside of prefix %s", key, string(p))
	}
	return strings.Split(strings.TrimPrefix(key, string(p)), "/"), nil
}

func (p prefixKeyAdapter) Path() string {
	return string(p)
}
