package match_test

import (
	"testing"
	"time"

	"github.com/arkcall/xmlmatch/match"
	"github.com/arkcall/xmlmatch/param"
)

func newParams(pairs ...string) *param.Map {
	m := param.New()
	for i := 0; i+1 < len(pairs); i += 2 {
		m.Add(pairs[i], pairs[i+1])
	}
	return m
}

// S5 from spec.md §8: List(match_all=true, [String(user=alice),
// Regexp(ip=^10\.)]) matches {user=alice, ip=10.0.0.1} and does not
// match {user=alice, ip=192.168.0.1}.
func TestS5ListAll(t *testing.T) {
	list := match.NewListItem("", true, []match.Matcher{
		match.NewStringItem("", "user", "alice", false, false, match.RunMatch),
		match.NewRegexpItem("", "ip", `^10\.`, false, false, false, match.RunMatch),
	}, false, match.RunMatch)

	ctx := match.NewContext(time.Unix(0, 0), nil)

	if m := list.Match(ctx, newParams("user", "alice", "ip", "10.0.0.1")); m == nil {
		t.Fatalf("expected match")
	}
	if m := list.Match(ctx, newParams("user", "alice", "ip", "192.168.0.1")); m != nil {
		t.Fatalf("expected no match, got %v", m)
	}
}

// S6 from spec.md §8: XPath(name="body", path="/msg/to/text()",
// inner=Regexp("^support@")) against {body=<msg><to>support@x.example</to></msg>} matches.
func TestS6XPathWithInner(t *testing.T) {
	inner := match.NewRegexpItem("", "", "^support@", false, false, false, match.RunMatch)
	item := match.NewXPathItem("", "body", "/msg/to/text()", inner, false, match.RunMatch)

	ctx := match.NewContext(time.Unix(0, 0), nil)
	params := newParams("body", "<msg><to>support@x.example</to></msg>")
	if m := item.Match(ctx, params); m == nil {
		t.Fatalf("expected match")
	}
}

// Invariant 7: match(negate(x), i) == not match(x, i) outside the
// missing-parameter short-circuit.
func TestNegationInvariant(t *testing.T) {
	ctx := match.NewContext(time.Unix(0, 0), nil)
	x := match.NewStringItem("", "k", "v", false, false, match.RunMatch)
	negated := match.NewStringItem("", "k", "v", false, true, match.RunMatch)

	present := newParams("k", "v")
	if (x.Match(ctx, present) != nil) == (negated.Match(ctx, present) != nil) {
		t.Fatalf("expected negated match to be the complement")
	}
	absent := newParams("other", "v")
	if (x.Match(ctx, absent) != nil) == (negated.Match(ctx, absent) != nil) {
		t.Fatalf("expected negated match to be the complement on absent key too (RunMatch policy)")
	}
}

// Invariant 8: missing-parameter policy.
func TestMissingParameterPolicy(t *testing.T) {
	ctx := match.NewContext(time.Unix(0, 0), nil)
	absent := newParams("other", "x")

	matchAlways := match.NewStringItem("", "k", "v", false, false, match.Match)
	if m := matchAlways.Match(ctx, absent); m == nil {
		t.Fatalf("expected missing_match=Match to short-circuit to matched")
	}

	noMatchAlways := match.NewStringItem("", "k", "v", false, false, match.NoMatch)
	if m := noMatchAlways.Match(ctx, absent); m != nil {
		t.Fatalf("expected missing_match=NoMatch to short-circuit to not-matched")
	}

	runMatch := match.NewStringItem("", "k", "", false, false, match.RunMatch)
	if m := runMatch.Match(ctx, absent); m == nil {
		t.Fatalf("expected RunMatch against empty string to match an empty-value String item")
	}
}

// Invariant 6: optimising a singleton list is equivalent to the list
// itself for every parameter map.
func TestSingletonListOptimise(t *testing.T) {
	child := match.NewStringItem("", "k", "v", false, false, match.RunMatch)
	list := match.NewListItem("", true, []match.Matcher{child}, true, match.RunMatch)

	ctx := match.NewContext(time.Unix(0, 0), nil)
	inputs := []*param.Map{newParams("k", "v"), newParams("k", "x"), newParams()}
	// Record the list's results before Optimize, which flips the shared
	// child's negated bit in place.
	wants := make([]bool, len(inputs))
	for i, p := range inputs {
		wants[i] = list.Match(ctx, p) != nil
	}
	optimised := match.Optimize(list)
	for i, p := range inputs {
		got := optimised.Match(ctx, p) != nil
		want := wants[i]
		if got != want {
			t.Fatalf("optimise changed result for %v: got %v want %v", p, got, want)
		}
	}
}

func TestEmptyListNeverMatches(t *testing.T) {
	ctx := match.NewContext(time.Unix(0, 0), nil)
	andList := match.NewListItem("", true, nil, false, match.RunMatch)
	orList := match.NewListItem("", false, nil, false, match.RunMatch)
	if andList.Match(ctx, newParams()) != nil {
		t.Fatalf("expected empty AND list to never match")
	}
	if orList.Match(ctx, newParams()) != nil {
		t.Fatalf("expected empty OR list to never match")
	}
}

func TestLoadFromParamsFlat(t *testing.T) {
	cfg := newParams(
		"rule:user", "alice",
		"rule:type:user", "string",
		"rule:ip", `^10\.`,
		"rule:type:ip", "regexp",
	)
	m, err := match.LoadFromParams(match.LoadOptions{Flags: match.ValidateRegex}, cfg, "rule")
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	ctx := match.NewContext(time.Unix(0, 0), nil)
	if got := m.Match(ctx, newParams("user", "alice", "ip", "10.0.0.1")); got == nil {
		t.Fatalf("expected loaded rule to match")
	}
}

func TestLoadFromXMLString(t *testing.T) {
	xml := `<list><string name="user">alice</string><regexp name="ip">^10\.</regexp></list>`
	m, err := match.LoadFromXMLString(match.LoadOptions{}, xml)
	if err != nil {
		t.Fatalf("load error: %v", err)
	}
	ctx := match.NewContext(time.Unix(0, 0), nil)
	if got := m.Match(ctx, newParams("user", "alice", "ip", "10.0.0.1")); got == nil {
		t.Fatalf("expected loaded rule to match")
	}
	if got := m.Match(ctx, newParams("user", "alice", "ip", "192.168.0.1")); got != nil {
		t.Fatalf("expected no match for non-matching ip")
	}
}

func TestDumpTextNonEmpty(t *testing.T) {
	item := match.NewStringItem("", "user", "alice", false, false, match.RunMatch)
	text := match.DumpText(item, match.DumpOptions{StringEnclose: "'"})
	if text == "" {
		t.Fatalf("expected non-empty dump text")
	}
}
