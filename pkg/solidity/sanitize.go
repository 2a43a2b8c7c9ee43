package solidity

// Sanitize returns a shallow copy of obj without the keys whose value is nil.
// The input map is left untouched.
func Sanitize(obj map[string]any) map[string]any {
	out := make(map[string]any, len(obj))
	for k, v := range obj {
		if v == nil {
			continue
		}
		out[k] = v
	}
	return out
}
