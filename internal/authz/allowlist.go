package authz

import (
	"regexp"
	"strings"
)

// IndexNumberPattern matches institution-issued index numbers:
// "UGR" followed by exactly 10 digits.
var IndexNumberPattern = regexp.MustCompile(`^UGR\d{10}$`)

// DefaultIndexNumbers is the set of index numbers authorized to submit
// projects. Overridable via AUTHORIZED_INDEX_NUMBERS in config.
var DefaultIndexNumbers = []string{
	"UGR0202110312", "UGR0202110315", "UGR0202110313", "UGR0202110334",
	"UGR0202110320", "UGR0202110333", "UGR0202120027", "UGR0202120028",
	"UGR0202120031", "UGR0202110006", "UGR0402210132", "UGR0402111248",
	"UGR0402111239", "UGR0202120017",
}

// IndexAllowlist is the single shared copy of the authorized index-number
// list. It is built once from config and injected into every component that
// needs a membership check (validator rules, sign-up, submission gate).
type IndexAllowlist struct {
	members map[string]struct{}
}

func NewIndexAllowlist(values []string) *IndexAllowlist {
	members := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		members[v] = struct{}{}
	}
	return &IndexAllowlist{members: members}
}

// NewDefaultIndexAllowlist builds the allowlist from DefaultIndexNumbers.
func NewDefaultIndexAllowlist() *IndexAllowlist {
	return NewIndexAllowlist(DefaultIndexNumbers)
}

// ValidFormat reports whether v matches the UGR+10-digit format.
func ValidFormat(v string) bool {
	return IndexNumberPattern.MatchString(v)
}

// Contains reports whether v is an authorized index number.
func (a *IndexAllowlist) Contains(v string) bool {
	_, ok := a.members[strings.TrimSpace(v)]
	return ok
}

func (a *IndexAllowlist) Len() int {
	return len(a.members)
}
