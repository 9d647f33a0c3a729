package assets

import (
	"embed"
)

//go:embed catalog.json
var FS embed.FS

// DefaultCatalog returns the embedded catalog document.
func DefaultCatalog() ([]byte, error) {
	return FS.ReadFile("catalog.json")
}
