package sax_test

import (
	"testing"

	"github.com/arkcall/xmlmatch/sax"
)

// recorder captures every callback as a short tagged string, so two
// parses (one fed whole, one fed split across arbitrary boundaries) can
// be compared for an identical event sequence (spec.md §8 resumability
// property).
type recorder struct {
	events []string
}

func (r *recorder) OnDeclaration(attrs []sax.Attr) error {
	r.events = append(r.events, "decl:"+attrsString(attrs))
	return nil
}
func (r *recorder) OnProcessingInstruction(target, data string) error {
	r.events = append(r.events, "pi:"+target+":"+data)
	return nil
}
func (r *recorder) OnDoctype(text string) error {
	r.events = append(r.events, "doctype:"+text)
	return nil
}
func (r *recorder) OnElementStart(name string, attrs []sax.Attr, empty bool) error {
	tag := "start:" + name + ":" + attrsString(attrs)
	if empty {
		tag += ":empty"
	}
	r.events = append(r.events, tag)
	return nil
}
func (r *recorder) OnElementEnd(name string) error {
	r.events = append(r.events, "end:"+name)
	return nil
}
func (r *recorder) OnText(text string) error {
	r.events = append(r.events, "text:"+text)
	return nil
}
func (r *recorder) OnCData(data string) error {
	r.events = append(r.events, "cdata:"+data)
	return nil
}
func (r *recorder) OnComment(text string) error {
	r.events = append(r.events, "comment:"+text)
	return nil
}

func attrsString(attrs []sax.Attr) string {
	s := ""
	for _, a := range attrs {
		s += a.Name + "=" + a.Value + ";"
	}
	return s
}

// S1 from spec.md §8: a minimal document with a declaration, a root
// element with one attribute, and text content produces the expected
// declaration/start/text/end event sequence.
func TestS1DeclarationElementText(t *testing.T) {
	const doc = `<?xml version="1.0" encoding="UTF-8"?><root id="1">hello</root>`

	r := &recorder{}
	p := sax.New(r)
	if err := p.Feed([]byte(doc)); err != sax.NoError {
		t.Fatalf("Feed: %v", err)
	}
	if err := p.Finish(); err != sax.NoError {
		t.Fatalf("Finish: %v", err)
	}

	want := []string{
		"decl:version=1.0;encoding=UTF-8;",
		"start:root:id=1;",
		"text:hello",
		"end:root",
	}
	assertEvents(t, want, r.events)
}

// Resumability: feeding the same document split at every byte offset
// produces the identical event sequence as feeding it whole.
func TestResumabilityAcrossArbitrarySplits(t *testing.T) {
	const doc = `<?xml version="1.0"?><root a="1"><child>text &amp; more</child><!--c--><empty/></root>`

	whole := &recorder{}
	wp := sax.New(whole)
	if err := wp.Feed([]byte(doc)); err != sax.NoError {
		t.Fatalf("whole Feed: %v", err)
	}
	if err := wp.Finish(); err != sax.NoError {
		t.Fatalf("whole Finish: %v", err)
	}

	for split := 1; split < len(doc); split++ {
		r := &recorder{}
		p := sax.New(r)
		err := p.Feed([]byte(doc[:split]))
		if err != sax.NoError && err != sax.Incomplete {
			t.Fatalf("split %d: first Feed: %v", split, err)
		}
		if err := p.Feed([]byte(doc[split:])); err != sax.NoError {
			t.Fatalf("split %d: second Feed: %v", split, err)
		}
		if err := p.Finish(); err != sax.NoError {
			t.Fatalf("split %d: Finish: %v", split, err)
		}
		assertEvents(t, whole.events, r.events)
	}
}

func TestMismatchedEndTagReachesHandler(t *testing.T) {
	r := &recorder{}
	p := sax.New(r)
	p.Feed([]byte("<a>"))
	err := p.Feed([]byte("</b>"))
	if err != sax.NoError {
		t.Fatalf("Feed: %v", err)
	}
	// The tokeniser itself does not validate start/end tag matching;
	// that is dom.DocBuilder's job (spec.md §4.3). Confirm the raw
	// events are delivered symmetrically so the mismatch is visible to
	// the handler layer.
	assertEvents(t, []string{"start:a:", "end:b"}, r.events)
}

func TestUnterminatedMarkupAtFinishIsNotWellFormed(t *testing.T) {
	r := &recorder{}
	p := sax.New(r)
	p.Feed([]byte("<root"))
	if err := p.Finish(); err != sax.NotWellFormed {
		t.Fatalf("Finish: got %v, want NotWellFormed", err)
	}
}

func TestDuplicateAttributeNameRejected(t *testing.T) {
	r := &recorder{}
	p := sax.New(r)
	err := p.Feed([]byte(`<a x="1" x="2"/>`))
	if err != sax.ReadingAttributes {
		t.Fatalf("Feed: got %v, want ReadingAttributes", err)
	}
}

func assertEvents(t *testing.T, want, got []string) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("event count mismatch: want %v got %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Fatalf("event %d mismatch: want %q got %q\nfull want: %v\nfull got: %v", i, want[i], got[i], want, got)
		}
	}
}
