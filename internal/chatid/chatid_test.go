package chatid

import "testing"

func TestCommutative(t *testing.T) {
	pairs := [][2]string{
		{"a@x.com", "b@x.com"},
		{"alice@example.com", "bob@example.com"},
		{"z", "a"},
		{"user_one@x.com", "user.two@x.com"},
	}
	for _, p := range pairs {
		ab, err := Resolve(p[0], p[1])
		if err != nil {
			t.Fatalf("Resolve(%q, %q): %v", p[0], p[1], err)
		}
		ba, err := Resolve(p[1], p[0])
		if err != nil {
			t.Fatalf("Resolve(%q, %q): %v", p[1], p[0], err)
		}
		if ab != ba {
			t.Fatalf("Resolve not commutative: %q vs %q", ab, ba)
		}
	}
}

func TestStable(t *testing.T) {
	first, err := Resolve("a@x.com", "b@x.com")
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		id, _ := Resolve("a@x.com", "b@x.com")
		if id != first {
			t.Fatalf("Resolve not stable: %q vs %q", id, first)
		}
	}
}

// Distinct pairs whose identifiers contain delimiter or reserved characters
// must not collide. A naive '.'->'_' substitution would map several of
// these onto the same ID.
func TestNoCollisions(t *testing.T) {
	pairs := [][2]string{
		{"a@x.com", "b@x.com"},
		{"a@x_com", "b@x.com"},
		{"a@x.com", "b@x_com"},
		{"a@x", "com_b@x.com"},
		{"a@x.com_b@x", "com"},
		{"a.b@x.com", "c@x.com"},
		{"a_b@x.com", "c@x.com"},
	}
	seen := make(map[string][2]string)
	for _, p := range pairs {
		id, err := Resolve(p[0], p[1])
		if err != nil {
			t.Fatalf("Resolve(%q, %q): %v", p[0], p[1], err)
		}
		if prev, ok := seen[id]; ok {
			t.Fatalf("collision: %v and %v both resolve to %q", prev, p, id)
		}
		seen[id] = p
	}
}

func TestSplitRoundTrip(t *testing.T) {
	pairs := [][2]string{
		{"a@x.com", "b@x.com"},
		{"user_one@x.com", "user.two@y.org"},
		{"100%@x.com", "b#1@x.com"},
		{"a$[b]/c", "plain"},
	}
	for _, p := range pairs {
		id, err := Resolve(p[0], p[1])
		if err != nil {
			t.Fatalf("Resolve(%q, %q): %v", p[0], p[1], err)
		}
		a, b, err := Split(id)
		if err != nil {
			t.Fatalf("Split(%q): %v", id, err)
		}
		lo, hi := p[0], p[1]
		if hi < lo {
			lo, hi = hi, lo
		}
		if a != lo || b != hi {
			t.Fatalf("Split(%q) = (%q, %q), want (%q, %q)", id, a, b, lo, hi)
		}
	}
}

func TestInvalidParticipants(t *testing.T) {
	cases := [][2]string{
		{"", "b@x.com"},
		{"a@x.com", ""},
		{"", ""},
		{"a@x.com", "a@x.com"}, // self-chat
	}
	for _, c := range cases {
		if _, err := Resolve(c[0], c[1]); err == nil {
			t.Fatalf("Resolve(%q, %q): expected error", c[0], c[1])
		}
	}
}

func TestSplitMalformed(t *testing.T) {
	for _, id := range []string{"", "nodelimiter", "_b", "a_", "a%2_b", "a%ZZ_b"} {
		if _, _, err := Split(id); err == nil {
			t.Fatalf("Split(%q): expected error", id)
		}
	}
}
