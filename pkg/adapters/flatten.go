package adapters

// Flatten collapses nested mappings into dotted key paths:
// {"display": {"size": "6.2 inch"}} becomes {"display.size": "6.2 inch"}.
// Lists and scalars are left in place.
func Flatten(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	flattenInto(out, "", m)
	return out
}

func flattenInto(out map[string]any, prefix string, m map[string]any) {
	for key, value := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok && len(nested) > 0 {
			flattenInto(out, path, nested)
			continue
		}
		out[path] = value
	}
}
