package dom_test

import (
	"bytes"
	"testing"

	"github.com/arkcall/xmlmatch/dom"
	"github.com/arkcall/xmlmatch/param"
	"github.com/arkcall/xmlmatch/sax"
)

func mustElement(t *testing.T, tag string) *dom.Element {
	t.Helper()
	el, errc := dom.NewElement(tag)
	if errc != sax.NoError {
		t.Fatalf("NewElement(%q): %v", tag, errc)
	}
	return el
}

func TestNamespaceLookupWalksAncestorsThenInherited(t *testing.T) {
	root := mustElement(t, "root")
	root.DeclareNamespace("", "urn:root")
	root.DeclareNamespace("p", "urn:prefixed")

	child := mustElement(t, "p:child")
	root.AddChild(child)

	if uri, ok := child.LookupNamespace("p"); !ok || uri != "urn:prefixed" {
		t.Fatalf("expected urn:prefixed, got %q %v", uri, ok)
	}
	if uri, ok := child.LookupNamespace(""); !ok || uri != "urn:root" {
		t.Fatalf("expected urn:root, got %q %v", uri, ok)
	}

	root.RemoveChild(child)
	if uri, ok := child.LookupNamespace("p"); !ok || uri != "urn:prefixed" {
		t.Fatalf("expected inherited lookup to still resolve after detach, got %q %v", uri, ok)
	}
}

func TestDocumentAddChildDispatch(t *testing.T) {
	doc := dom.NewDocument()

	if errc := doc.AddChild(dom.NewComment("before")); errc != sax.NoError {
		t.Fatalf("unexpected error adding leading comment: %v", errc)
	}
	if doc.BeforeRoot.Len() != 1 {
		t.Fatalf("expected comment in before_root")
	}

	root := mustElement(t, "root")
	if errc := doc.AddChild(root); errc != sax.NoError {
		t.Fatalf("unexpected error adding root: %v", errc)
	}
	if doc.Root != root {
		t.Fatalf("expected root to be set")
	}

	second := mustElement(t, "second")
	if errc := doc.AddChild(second); errc != sax.ElementParse {
		t.Fatalf("expected ElementParse rejecting second root element before completion, got %v", errc)
	}

	root.SetCompleted(true)
	if errc := doc.AddChild(second); errc != sax.NoError {
		t.Fatalf("expected second element to be appended to completed root, got %v", errc)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected second to become root's child")
	}

	if errc := doc.AddChild(dom.NewText("not blank")); errc != sax.NotWellFormed {
		t.Fatalf("expected non-blank text outside root to be rejected, got %v", errc)
	}
	if errc := doc.AddChild(dom.NewText("   \n")); errc != sax.NoError {
		t.Fatalf("expected blank text outside root to be accepted, got %v", errc)
	}
	if doc.AfterRoot.Len() != 1 {
		t.Fatalf("expected blank text to land in after_root")
	}
}

func TestElementTextAndParams(t *testing.T) {
	el := mustElement(t, "msg")
	el.AddText("hello")
	if got := el.Text(); got != "hello" {
		t.Fatalf("got %q", got)
	}
	replacement := "world"
	el.SetText(&replacement)
	if got := el.Text(); got != "world" {
		t.Fatalf("got %q", got)
	}
	el.SetText(nil)
	if got := el.Text(); got != "" {
		t.Fatalf("expected empty text after SetText(nil), got %q", got)
	}

	el.Attrs().Set("user", "alice")
	el.Attrs().Set("id", "7")
	out := param.New()
	el.ExportParams(out, "p.")
	if v, _ := out.Get("p.user"); v != "alice" {
		t.Fatalf("expected p.user=alice, got %q", v)
	}

	in := param.New()
	in.Add("p.host", "example.com")
	el.ImportParams(in, "p.")
	if v, ok := el.Attrs().Get("host"); !ok || v != "example.com" {
		t.Fatalf("expected host=example.com, got %q %v", v, ok)
	}
}

func TestReplaceParams(t *testing.T) {
	el := mustElement(t, "greeting")
	el.Attrs().Set("to", "${user}")
	el.AddText("Hello, ${user$stranger}!")

	p := param.New()
	p.Add("user", "alice")
	el.ReplaceParams(p)

	if v, _ := el.Attrs().Get("to"); v != "alice" {
		t.Fatalf("got %q", v)
	}
	if got := el.Text(); got != "Hello, alice!" {
		t.Fatalf("got %q", got)
	}

	el2 := mustElement(t, "greeting")
	el2.AddText("Hello, ${missing$stranger}!")
	el2.ReplaceParams(param.New())
	if got := el2.Text(); got != "Hello, stranger!" {
		t.Fatalf("got %q", got)
	}
}

func TestSAXRoundTripViaDocBuilder(t *testing.T) {
	input := []byte(`<?xml version="1.0"?><r a="1"><b/>hi</r>`)
	b := dom.NewDocBuilder()
	p := sax.New(b)
	if errc := p.Feed(input); errc != sax.NoError {
		t.Fatalf("feed error: %v", errc)
	}
	if errc := p.Finish(); errc != sax.NoError {
		t.Fatalf("finish error: %v", errc)
	}
	if b.Doc.Root == nil || b.Doc.Root.Tag() != "r" {
		t.Fatalf("expected root r, got %v", b.Doc.Root)
	}
	if v, ok := b.Doc.Root.Attrs().Get("a"); !ok || v != "1" {
		t.Fatalf("expected a=1, got %q %v", v, ok)
	}
	children := b.Doc.Root.Children()
	if len(children) != 2 {
		t.Fatalf("expected 2 children (b, text), got %d", len(children))
	}
	bEl, ok := children[0].(*dom.Element)
	if !ok || bEl.Tag() != "b" || !bEl.Completed() {
		t.Fatalf("expected completed empty b element, got %#v", children[0])
	}
	textNode, ok := children[1].(*dom.Text)
	if !ok || textNode.Value != "hi" {
		t.Fatalf("expected text 'hi', got %#v", children[1])
	}

	var buf bytes.Buffer
	b.Doc.Serialize(&buf, dom.SerializeOptions{})
	if buf.Len() == 0 {
		t.Fatalf("expected non-empty serialisation")
	}
}

func TestSerializeAuthMask(t *testing.T) {
	el := mustElement(t, "login")
	el.Attrs().Set("password", "hunter2")
	el.Attrs().Set("user", "alice")

	var buf bytes.Buffer
	el.SetCompleted(true)
	serializeElementForTest(t, el, &buf, dom.SerializeOptions{
		AuthMask: map[string]bool{"password": true},
	})
	out := buf.String()
	if !bytes.Contains([]byte(out), []byte("***")) {
		t.Fatalf("expected masked password, got %s", out)
	}
	if bytes.Contains([]byte(out), []byte("hunter2")) {
		t.Fatalf("secret leaked into serialisation: %s", out)
	}
}

func serializeElementForTest(t *testing.T, el *dom.Element, buf *bytes.Buffer, opts dom.SerializeOptions) {
	t.Helper()
	doc := dom.NewDocument()
	if errc := doc.AddChild(el); errc != sax.NoError {
		t.Fatalf("add root: %v", errc)
	}
	doc.Serialize(buf, opts)
}
