package cache

import (
	"reflect"

	"github.com/Konsultn-Engineering/rowmap/relpath"
	"github.com/Konsultn-Engineering/rowmap/utils"
)

// Key identifies a projection: the target type and the structure of the
// path it reads. Paths with the same table and columns share keys.
type Key struct {
	Type reflect.Type
	Path uint64
}

func NewKey(t reflect.Type, p relpath.Path) Key {
	return Key{Type: t, Path: PathFingerprint(p)}
}

// PathFingerprint hashes the table and the ordered columns of p.
func PathFingerprint(p relpath.Path) uint64 {
	h := p.Table().Fingerprint()
	for _, c := range p.Columns() {
		h = utils.Mix64(h, c.Fingerprint())
	}
	return h
}
