package view

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/rileyhilliard/lsview/internal/registry"
)

// RowID identifies a row across requests: the SHA-256 of "~value" for each
// id key of the data source, hex encoded.
func RowID(ds *registry.DataSource, row registry.Row) string {
	var key strings.Builder
	for _, col := range ds.IDKeys {
		key.WriteByte('~')
		key.WriteString(registry.ToString(row[col]))
	}
	sum := sha256.Sum256([]byte(key.String()))
	return hex.EncodeToString(sum[:])
}
