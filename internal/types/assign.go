package types

import "fmt"

// RequireAssignable reports whether a value of type source may be stored
// where target is expected. It is the only compatibility rule: target Any
// accepts everything, identical types match, and Comparable accepts Integer,
// Decimal, Character and String.
func RequireAssignable(target, source *Type) error {
	switch {
	case target == Any:
		return nil
	case target == source:
		return nil
	case target == Comparable && isComparable(source):
		return nil
	}
	return fmt.Errorf("Type %s is not assignable to %s.", source, target)
}

func isComparable(t *Type) bool {
	return t == Integer || t == Decimal || t == Character || t == String
}
