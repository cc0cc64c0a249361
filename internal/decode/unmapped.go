package decode

import (
	"strings"
)

// Unmapped diffs a document against the mapped-path set, returning the
// substructure the schema does not cover with nesting preserved. Returns
// nil when every key is mapped - the residual column is null for such
// rows.
//
// Three key classes:
//   - mapped: the key's path is in the set; skipped entirely
//   - parent of mapped: some mapped path is strictly underneath; recurse
//     so unknown siblings of known nested fields surface
//   - anything else: wholly unmapped, copied verbatim
func Unmapped(doc map[string]any, mapped map[string]struct{}) map[string]any {
	return unmappedAt(doc, "", mapped)
}

func unmappedAt(obj map[string]any, prefix string, mapped map[string]struct{}) map[string]any {
	var out map[string]any
	for key, value := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}

		if child, ok := value.(map[string]any); ok && hasMappedChild(path, mapped) {
			if residual := unmappedAt(child, path, mapped); residual != nil {
				if out == nil {
					out = make(map[string]any)
				}
				out[key] = residual
			}
			continue
		}
		if _, ok := mapped[path]; ok {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[key] = value
	}
	return out
}

// hasMappedChild reports whether any mapped path lies strictly under
// the given path.
func hasMappedChild(path string, mapped map[string]struct{}) bool {
	prefix := path + "."
	for p := range mapped {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}
