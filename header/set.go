package header

import "strings"

// Pair is a single header field.
type Pair struct {
	Name  string
	Value string
}

// Set is an ordered, case-insensitive multimap of header fields.
// The zero value is an empty set ready to use.
type Set []Pair

// Append returns a copy of s with (name, value) added at the end.
func (s Set) Append(name, value string) Set {
	return append(s, Pair{Name: name, Value: value})
}

// Add returns a copy of s with (name, value) prepended, so that
// subsequent lookups see it before any previously-added value for
// the same name.
func (s Set) Add(name, value string) Set {
	next := make(Set, 0, len(s)+1)
	next = append(next, Pair{Name: name, Value: value})
	return append(next, s...)
}

// AddIfMissing prepends (name, value) only if name is not already present.
func (s Set) AddIfMissing(name, value string) Set {
	if s.Contains(name) {
		return s
	}
	return s.Add(name, value)
}

// Contains reports whether any pair matches name, case-insensitively.
func (s Set) Contains(name string) bool {
	for _, p := range s {
		if strings.EqualFold(p.Name, name) {
			return true
		}
	}
	return false
}

// Find returns the value of the first pair matching name.
func (s Set) Find(name string) (string, bool) {
	for _, p := range s {
		if strings.EqualFold(p.Name, name) {
			return p.Value, true
		}
	}
	return "", false
}

// FindAll returns the values of every pair matching name, in order.
func (s Set) FindAll(name string) []string {
	var values []string
	for _, p := range s {
		if strings.EqualFold(p.Name, name) {
			values = append(values, p.Value)
		}
	}
	return values
}

// FindAllConcat joins every value for name with ", ", per RFC 7230 §3.2.2.
func (s Set) FindAllConcat(name string) (string, bool) {
	values := s.FindAll(name)
	if len(values) == 0 {
		return "", false
	}
	return strings.Join(values, ", "), true
}

// FindAllSplit splits every value for name on commas, trims ASCII
// space/tab from each token, and returns the flattened token list.
func (s Set) FindAllSplit(name string) []string {
	var tokens []string
	for _, value := range s.FindAll(name) {
		for _, tok := range strings.Split(value, ",") {
			tok = strings.Trim(tok, " \t")
			if tok != "" {
				tokens = append(tokens, tok)
			}
		}
	}
	return tokens
}

// FindTokenList is FindAllSplit with every token lowercased.
func (s Set) FindTokenList(name string) []string {
	tokens := s.FindAllSplit(name)
	for i, tok := range tokens {
		tokens[i] = strings.ToLower(tok)
	}
	return tokens
}

// Remove returns a copy of s with every pair matching any of names removed.
func (s Set) Remove(names ...string) Set {
	next := make(Set, 0, len(s))
	for _, p := range s {
		matched := false
		for _, name := range names {
			if strings.EqualFold(p.Name, name) {
				matched = true
				break
			}
		}
		if !matched {
			next = append(next, p)
		}
	}
	return next
}

// HasConnectionClose reports whether any Connection token equals
// "close", case-insensitively.
func (s Set) HasConnectionClose() bool {
	for _, tok := range s.FindTokenList("Connection") {
		if tok == "close" {
			return true
		}
	}
	return false
}

// TransferEncoding returns the Transfer-Encoding token list, in order.
func (s Set) TransferEncoding() []string {
	return s.FindTokenList("Transfer-Encoding")
}

// ContentEncoding returns the Content-Encoding token list, in order.
func (s Set) ContentEncoding() []string {
	return s.FindTokenList("Content-Encoding")
}
