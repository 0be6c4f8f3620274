package netrc_test

import (
	"strings"
	"testing"

	"github.com/mhttpgo/mhttp/netrc"
)

func TestParse_LookupBasic(t *testing.T) {
	src := `
machine api.example.invalid
login alice
password s3cr3t

machine other.invalid
login bob
password hunter2
port 8443
`
	store, err := netrc.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	e, ok := store.Lookup("api.example.invalid")
	if !ok || e.User != "alice" || e.Password != "s3cr3t" {
		t.Fatalf("entry = %+v, ok = %v", e, ok)
	}

	e2, ok := store.Lookup("other.invalid")
	if !ok || e2.PortOverride != 8443 {
		t.Fatalf("entry = %+v, ok = %v", e2, ok)
	}
}

func TestParse_TextualPortHTTPS(t *testing.T) {
	src := `machine host.invalid
login u
password p
port https
`
	store, err := netrc.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	e, ok := store.Lookup("host.invalid")
	if !ok || e.PortOverride != 443 {
		t.Fatalf("entry = %+v", e)
	}
}

func TestParse_UnrecognizedTextualPortFallsBack(t *testing.T) {
	src := `machine host.invalid
login u
password p
port ftp
`
	store, err := netrc.Parse(strings.NewReader(src))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	e, ok := store.Lookup("host.invalid")
	if !ok || e.PortOverride != 0 {
		t.Fatalf("entry = %+v, want PortOverride 0 (fallback to URI port)", e)
	}
}

func TestLookup_MissingHost(t *testing.T) {
	store, err := netrc.Parse(strings.NewReader("machine a.invalid\nlogin x\npassword y\n"))
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if _, ok := store.Lookup("b.invalid"); ok {
		t.Fatal("expected no entry for unknown host")
	}
}

func TestLookup_NilStore(t *testing.T) {
	var store *netrc.Store
	if _, ok := store.Lookup("anything"); ok {
		t.Fatal("expected nil store to report no entry")
	}
}
