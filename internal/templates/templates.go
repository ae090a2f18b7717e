// Package templates ships the project template: the option schema document
// and every file of the generated project skeleton, embedded at build time
// as a single txtar archive.
package templates

import (
	"strings"
	"sync"

	_ "embed"

	"golang.org/x/tools/txtar"
)

//go:embed templates.txtar
var archiveData []byte

// schemaPath is the archive member holding the option schema document. It
// is not part of the generated project.
const schemaPath = "template.yaml"

// File is one template file of the generated project skeleton.
type File struct {
	Path    string
	Content string
}

var (
	parseOnce sync.Once
	files     []File
	schemaSrc []byte
)

func parse() {
	archive := txtar.Parse(archiveData)
	for _, f := range archive.Files {
		name := strings.TrimSpace(f.Name)
		if name == schemaPath {
			schemaSrc = f.Data
			continue
		}
		files = append(files, File{Path: name, Content: string(f.Data)})
	}
}

// Files returns every project template file in archive order.
func Files() []File {
	parseOnce.Do(parse)
	return files
}

// SchemaSource returns the raw option schema document.
func SchemaSource() []byte {
	parseOnce.Do(parse)
	return schemaSrc
}

// Lookup returns the content of the named template file.
func Lookup(path string) (string, bool) {
	for _, f := range Files() {
		if f.Path == path {
			return f.Content, true
		}
	}
	return "", false
}
