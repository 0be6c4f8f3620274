package netrc

import (
	"bufio"
	"io"
	"log/slog"
	"strconv"
	"strings"
)

// Entry is a single .netrc credential entry.
type Entry struct {
	User         string
	Password     string
	PortOverride int // 0 means "no override"
}

// Store is a parsed .netrc file, keyed by machine name.
type Store struct {
	entries map[string]Entry
}

// Parse reads a .netrc-formatted stream and returns a Store. Unknown
// tokens are ignored, matching the historical .netrc parsers'
// tolerance for extra fields (e.g. "macdef", "account").
func Parse(r io.Reader) (*Store, error) {
	s := &Store{entries: make(map[string]Entry)}

	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)

	var tokens []string
	for scanner.Scan() {
		tokens = append(tokens, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	var machine string
	var entry Entry
	var havePending bool

	flush := func() {
		if havePending && machine != "" {
			s.entries[machine] = entry
		}
		machine = ""
		entry = Entry{}
		havePending = false
	}

	for i := 0; i < len(tokens); i++ {
		key := tokens[i]
		if i+1 >= len(tokens) {
			break
		}
		value := tokens[i+1]

		switch key {
		case "machine":
			flush()
			machine = value
			havePending = true
			i++
		case "login":
			entry.User = value
			i++
		case "password":
			entry.Password = value
			i++
		case "port":
			// spec.md §9: only "http" and "https" are recognized as
			// textual ports here; any other non-numeric value is
			// logged and the URI port is used instead. This is a
			// deliberately preserved quirk, not reinterpreted.
			if n, err := strconv.Atoi(value); err == nil {
				entry.PortOverride = n
			} else {
				switch strings.ToLower(value) {
				case "http":
					entry.PortOverride = 80
				case "https":
					entry.PortOverride = 443
				default:
					slog.Default().Warn("netrc: unrecognized textual port, falling back to URI port",
						"machine", machine, "port", value)
				}
			}
			i++
		default:
			// Unknown token (default, macdef, account, ...); skip its value.
			i++
		}
	}
	flush()

	return s, nil
}

// Lookup returns the credential entry for host, if any.
func (s *Store) Lookup(host string) (Entry, bool) {
	if s == nil {
		return Entry{}, false
	}
	e, ok := s.entries[host]
	return e, ok
}
