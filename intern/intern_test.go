package intern

import "testing"

func TestInternStableIds(t *testing.T) {
	in := New()
	a := in.Intern("Property")
	b := in.Intern("Expression")
	a2 := in.Intern("Property")
	if a != a2 {
		t.Fatalf("Intern not stable: %d != %d", a, a2)
	}
	if a == b {
		t.Fatalf("distinct strings got the same id")
	}
	if got := in.String(a); got != "Property" {
		t.Fatalf("String(%d) = %q, want Property", a, got)
	}
	if in.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", in.Len())
	}
}

func TestLookupNotFound(t *testing.T) {
	in := New()
	in.Intern("x")
	if got := in.Lookup("y"); got != NotFound {
		t.Fatalf("Lookup(y) = %d, want NotFound", got)
	}
	if got := in.Lookup("x"); got != 0 {
		t.Fatalf("Lookup(x) = %d, want 0", got)
	}
}

func TestInternDenseMonotonic(t *testing.T) {
	in := New()
	for i, s := range []string{"a", "b", "c", "d"} {
		if id := in.Intern(s); id != i {
			t.Fatalf("Intern(%q) = %d, want %d", s, id, i)
		}
	}
}
