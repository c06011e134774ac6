package panel

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

//go:embed web/index.html
var content embed.FS

const indexName = "index.html"

// Index returns the control panel document.
//
// When dir is non-empty and contains index.html, that file is returned
// (dev mode: edit the page without a rebuild). Otherwise the embedded copy
// is returned. Panics if the embedded page is missing (build error).
func Index(dir string) []byte {
	if dir != "" {
		if data, err := os.ReadFile(filepath.Join(dir, indexName)); err == nil {
			return data
		}
	}

	data, err := content.ReadFile("web/" + indexName)
	if err != nil {
		panic(fmt.Sprintf("panel: failed to load embedded index: %v", err))
	}
	return data
}
