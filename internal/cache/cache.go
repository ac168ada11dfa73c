// Package cache stores field reports so unchanged packages are not analyzed twice.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"strconv"

	"github.com/johbar/docx-field-service/internal/fields"
	"github.com/johbar/docx-field-service/pkg/ooxmldate"
)

// Cache holds reports by key. Get returns nil and no error if there is no entry for key.
type Cache interface {
	Get(key string) (*fields.Report, error)
	Save(key string, rep *fields.Report) error
}

// NopCache never stores anything.
type NopCache struct{}

func (c *NopCache) Get(key string) (*fields.Report, error) {
	return nil, nil
}

func (c *NopCache) Save(key string, rep *fields.Report) error {
	return nil
}

// Key derives the cache key of a file on disk from its absolute path, size and
// modification time, so a changed file gets a new key.
func Key(path string, info os.FileInfo, unit ooxmldate.Unit) string {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	h := sha256.New()
	h.Write([]byte(path))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, info.Size(), 10))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, info.ModTime().UnixNano(), 10))
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, int64(unit), 10))
	return hex.EncodeToString(h.Sum(nil))
}

// KeyForData derives the cache key of an uploaded package from its content.
func KeyForData(data []byte, unit ooxmldate.Unit) string {
	h := sha256.New()
	h.Write(data)
	h.Write([]byte{0})
	h.Write(strconv.AppendInt(nil, int64(unit), 10))
	return hex.EncodeToString(h.Sum(nil))
}
