// Package schemas embeds the JSON Schema documents shipped with the module.
package schemas

import "embed"

// Schema file names
const (
	SectionedDocument = "sectioned_document.schema.json"
	ExtractionEvent   = "extraction_event.schema.json"
)

//go:embed *.schema.json
var files embed.FS

// Read returns the contents of the named schema
func Read(name string) ([]byte, error) {
	return files.ReadFile(name)
}

// Names lists the embedded schema files
func Names() []string {
	entries, _ := files.ReadDir(".")
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}
