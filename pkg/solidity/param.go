package solidity

import (
	"strings"
)

// IsArrayType reports whether a declared ABI type is a dynamic (T[]) or
// fixed-size (T[N]) array.
func IsArrayType(declaredType string) bool {
	t := strings.TrimSpace(declaredType)
	if !strings.HasSuffix(t, "]") {
		return false
	}
	open := strings.LastIndex(t, "[")
	if open <= 0 {
		return false
	}
	size := t[open+1 : len(t)-1]
	for _, r := range size {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ElementType strips the outermost array suffix: "uint256[][]" -> "uint256[]".
// Non-array types are returned unchanged.
func ElementType(declaredType string) string {
	t := strings.TrimSpace(declaredType)
	if !IsArrayType(t) {
		return t
	}
	return t[:strings.LastIndex(t, "[")]
}

// ProcessMethodCallParam turns a raw string typed by a user into a call
// parameter. Array types produce an array of element literals; every other
// type is passed through untouched. It never fails: malformed array literals
// give a best-effort array and encoding errors surface later, at call time.
func ProcessMethodCallParam(raw string, declaredType string) Value {
	if !IsArrayType(declaredType) {
		return Scalar(raw)
	}

	body := strings.TrimSpace(raw)
	if strings.HasPrefix(body, "[") && strings.HasSuffix(body, "]") && len(body) >= 2 {
		body = body[1 : len(body)-1]
	}
	if strings.TrimSpace(body) == "" {
		return ArrayOf()
	}

	elemType := ElementType(declaredType)
	parts := splitTopLevel(body)
	items := make([]Value, 0, len(parts))
	for _, part := range parts {
		elem := unquote(strings.TrimSpace(part))
		if IsArrayType(elemType) {
			items = append(items, ProcessMethodCallParam(elem, elemType))
			continue
		}
		items = append(items, Scalar(elem))
	}
	return ArrayOf(items...)
}

// splitTopLevel splits on commas that are not nested inside brackets,
// parentheses, braces or quotes.
func splitTopLevel(s string) []string {
	var (
		parts []string
		depth int
		quote rune
		start int
	)
	for i, r := range s {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == '[' || r == '(' || r == '{':
			depth++
		case r == ']' || r == ')' || r == '}':
			if depth > 0 {
				depth--
			}
		case r == ',' && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

func unquote(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && first == last {
			return s[1 : len(s)-1]
		}
	}
	return s
}
