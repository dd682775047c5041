package xpath_test

import (
	"testing"

	"github.com/arkcall/xmlmatch/dom"
	"github.com/arkcall/xmlmatch/sax"
	"github.com/arkcall/xmlmatch/xpath"
)

func buildElement(t *testing.T, tag string, attrs map[string]string, children ...*dom.Element) *dom.Element {
	t.Helper()
	el, errc := dom.NewElement(tag)
	if errc != sax.NoError {
		t.Fatalf("NewElement(%q) failed: %v", tag, errc)
	}
	for k, v := range attrs {
		el.Attrs().Set(k, v)
	}
	for _, c := range children {
		el.AddChild(c)
	}
	el.SetCompleted(true)
	return el
}

// S3 from spec.md §8: against <r><a x="1"/><a x="2"/><a x="3"/></r>,
// /r/a[@x="2"] returns the second <a> only; /r/a[1]/@x returns "1".
func TestS3Positional(t *testing.T) {
	a1 := buildElement(t, "a", map[string]string{"x": "1"})
	a2 := buildElement(t, "a", map[string]string{"x": "2"})
	a3 := buildElement(t, "a", map[string]string{"x": "3"})
	r := buildElement(t, "r", nil, a1, a2, a3)

	path := xpath.Compile(`/r/a[@x="2"]`, 0)
	if path.Status() != xpath.NoError {
		t.Fatalf("compile error: %s", path.Error())
	}
	res, st := path.Eval(r, xpath.FindXml)
	if st != xpath.NoError {
		t.Fatalf("eval error: %v", st)
	}
	if len(res.Elements) != 1 || res.Elements[0] != a2 {
		t.Fatalf("expected only a2, got %v", res.Elements)
	}

	path2 := xpath.Compile(`/r/a[1]/@x`, 0)
	res2, st2 := path2.Eval(r, xpath.FindAttr)
	if st2 != xpath.NoError {
		t.Fatalf("eval error: %v", st2)
	}
	if len(res2.Attrs) != 1 || res2.Attrs[0].Value != "1" {
		t.Fatalf("expected x=1, got %v", res2.Attrs)
	}
}

// S4 from spec.md §8: against <r><v>foo</v><v>bar</v><v>fog</v></r>,
// /r/v[matches(text(),"^fo","")] returns the first and third <v>.
func TestS4Regex(t *testing.T) {
	v1 := buildElement(t, "v", nil)
	v1.AddText("foo")
	v2 := buildElement(t, "v", nil)
	v2.AddText("bar")
	v3 := buildElement(t, "v", nil)
	v3.AddText("fog")
	r := buildElement(t, "r", nil, v1, v2, v3)

	path := xpath.Compile(`/r/v[matches(text(),"^fo","")]`, 0)
	if path.Status() != xpath.NoError {
		t.Fatalf("compile error: %s", path.Error())
	}
	res, st := path.Eval(r, xpath.FindXml)
	if st != xpath.NoError {
		t.Fatalf("eval error: %v", st)
	}
	if len(res.Elements) != 2 || res.Elements[0] != v1 || res.Elements[1] != v3 {
		t.Fatalf("expected v1,v3, got %v", res.Elements)
	}
}

// Invariant 5: /a/b[3] on <a><b/><b/></a> returns none.
func TestPositionalOutOfRange(t *testing.T) {
	b1 := buildElement(t, "b", nil)
	b2 := buildElement(t, "b", nil)
	a := buildElement(t, "a", nil, b1, b2)

	path := xpath.Compile("/a/b[3]", 0)
	res, st := path.Eval(a, xpath.FindXml)
	if st != xpath.NoError {
		t.Fatalf("eval error: %v", st)
	}
	if len(res.Elements) != 0 {
		t.Fatalf("expected no match, got %v", res.Elements)
	}
}

func TestChildTextSelector(t *testing.T) {
	b1 := buildElement(t, "b", nil)
	b1.AddText("one")
	b2 := buildElement(t, "b", nil)
	b2.AddText("two")
	a := buildElement(t, "a", nil, b1, b2)

	path := xpath.Compile("/a/child::text()", 0)
	if path.Status() != xpath.NoError {
		t.Fatalf("compile error: %s", path.Error())
	}
	res, st := path.Eval(a, xpath.FindText)
	if st != xpath.NoError {
		t.Fatalf("eval error: %v", st)
	}
	if len(res.Texts) != 0 {
		// child::text() collects the text children of the elements the
		// previous step selected (here a itself); a's direct children are
		// all <b> elements, so nothing is collected.
		t.Fatalf("expected no direct text children of a, got %v", res.Texts)
	}
}

func TestEmptyResultRejectedAtParse(t *testing.T) {
	path := xpath.Compile("/a/@x/b", 0)
	if path.Status() != xpath.EEmptyResult {
		t.Fatalf("expected EEmptyResult, got %v", path.Status())
	}
}
