package reader

import "strings"

// SplitPath splits a dotted path string ("Root.Field.sub.sub2") into
// root type, root field, and instance-field steps. It is a convenience
// for command-line callers only; PathEvaluator itself always takes the
// already-split form.
func SplitPath(path string) (rootType, rootField string, steps []string) {
	parts := strings.Split(path, ".")
	switch len(parts) {
	case 0:
		return "", "", nil
	case 1:
		return parts[0], "", nil
	case 2:
		return parts[0], parts[1], nil
	default:
		return parts[0], parts[1], parts[2:]
	}
}
