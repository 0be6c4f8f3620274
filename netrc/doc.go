// Package netrc parses the classic .netrc machine/login/password/port
// grammar and looks up per-host credentials for the pool's credential
// store collaborator (spec.md §1).
package netrc
