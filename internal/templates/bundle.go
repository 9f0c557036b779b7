package templates

import "fmt"

// Document names within a Bundle.
const (
	DocTemplates   = "templates"
	DocBindings    = "bindings"
	DocUserPrompts = "userPrompts"
	DocResources   = "resources"
)

// Bundle is one schema's raw template documents at one release version, as
// downloaded from the feed, read from the cache or embedded as a backup.
type Bundle struct {
	Schema    SchemaVersion
	Version   string
	Documents map[string][]byte
}

// DocumentNames lists the documents a bundle of the given schema carries.
// The templates document is always first.
func DocumentNames(schema SchemaVersion) []string {
	if schema == SchemaV2 {
		return []string{DocTemplates, DocUserPrompts, DocResources}
	}
	return []string{DocTemplates, DocBindings, DocResources}
}

// ParseBundle dispatches to the parser for the bundle's schema.
func ParseBundle(b *Bundle, opts ...ParseOption) (*TemplateSet, error) {
	if b == nil || len(b.Documents[DocTemplates]) == 0 {
		return nil, ErrNoTemplates
	}
	switch b.Schema {
	case SchemaV1:
		return ParseScriptTemplates(RawScriptBundle{
			Templates: b.Documents[DocTemplates],
			Bindings:  b.Documents[DocBindings],
			Resources: b.Documents[DocResources],
		}, opts...)
	case SchemaV2:
		return ParseJobTemplates(RawJobBundle{
			Templates:   b.Documents[DocTemplates],
			UserPrompts: b.Documents[DocUserPrompts],
			Resources:   b.Documents[DocResources],
		}, opts...)
	default:
		return nil, fmt.Errorf("unsupported template schema %q", b.Schema)
	}
}
