package entities

import "fmt"

// Kind is the effect of a permission rule
type Kind string

const (
	KindAllow    Kind = "ALLOW"
	KindDeny     Kind = "DENY"
	KindAllowAll Kind = "ALLOW_ALL"
	KindDenyAll  Kind = "DENY_ALL"
)

// ParseKind converts a persisted kind name into a Kind
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown permission kind: %q", s)
	}
	return k, nil
}

// Valid reports whether k is one of the four known kinds
func (k Kind) Valid() bool {
	switch k {
	case KindAllow, KindDeny, KindAllowAll, KindDenyAll:
		return true
	}
	return false
}

// IsBlanket reports whether k belongs to the blanket family (ALLOW_ALL, DENY_ALL)
func (k Kind) IsBlanket() bool {
	return k == KindAllowAll || k == KindDenyAll
}

// Opposite returns the kind a rule flips to within its family
func (k Kind) Opposite() Kind {
	switch k {
	case KindAllow:
		return KindDeny
	case KindDeny:
		return KindAllow
	case KindAllowAll:
		return KindDenyAll
	case KindDenyAll:
		return KindAllowAll
	}
	return ""
}

// Allows reports whether k grants access
func (k Kind) Allows() bool {
	return k == KindAllow || k == KindAllowAll
}

// KindStrings converts kinds to their string form, e.g. for query parameters
func KindStrings(kinds []Kind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
