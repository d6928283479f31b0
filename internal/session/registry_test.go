package session

import "testing"

func TestResolve(t *testing.T) {
	if got := Resolve("client-kept-this"); got != "client-kept-this" {
		t.Errorf("Resolve() must pass a client-supplied id through verbatim, got %q", got)
	}

	minted := Resolve("")
	if minted == "" {
		t.Fatalf("Resolve(\"\") must mint an identifier")
	}
	if minted == Resolve("") {
		t.Errorf("minted identifiers must be unique")
	}
}

func TestBindLookupRelease(t *testing.T) {
	r := NewRegistry()

	r.Bind("sid-1", "match-a", 1)
	r.Bind("sid-2", "match-a", 2)
	r.Bind("sid-3", "match-b", 1)

	e, ok := r.Lookup("sid-2")
	if !ok || e.MatchID != "match-a" || e.Role != 2 {
		t.Errorf("Lookup(sid-2) = %+v, %v", e, ok)
	}

	r.ReleaseMatch("match-a")

	if _, ok := r.Lookup("sid-1"); ok {
		t.Errorf("ReleaseMatch left sid-1 bound")
	}
	if _, ok := r.Lookup("sid-2"); ok {
		t.Errorf("ReleaseMatch left sid-2 bound")
	}
	if _, ok := r.Lookup("sid-3"); !ok {
		t.Errorf("ReleaseMatch dropped a binding of another match")
	}
	if r.Len() != 1 {
		t.Errorf("Len() = %d, want 1", r.Len())
	}
}
