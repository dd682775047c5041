package dom

import (
	"github.com/arkcall/xmlmatch/sax"
)

// DocBuilder implements sax.Handler, pairing a SAX parser with a
// Document and a current-element pointer (spec.md §4.3 "A DOM parser
// variant pairs a SAX parser with a parent and a current-element
// pointer"). On element start it either sets the root or appends to the
// current element, pushing that element as the new current if it is not
// self-closing; on element end it verifies the name matches the current
// element, marks it completed, and pops. Text/CData/Comment events are
// routed to the current element if one exists, else to the Document.
type DocBuilder struct {
	Doc     *Document
	current *Element
	err     sax.Error
}

// NewDocBuilder returns a builder for a fresh Document.
func NewDocBuilder() *DocBuilder {
	return &DocBuilder{Doc: NewDocument()}
}

func (b *DocBuilder) fail(e sax.Error) error {
	if b.err == sax.NoError {
		b.err = e
	}
	return e
}

// Err returns the first structural error encountered, if any.
func (b *DocBuilder) Err() sax.Error { return b.err }

func (b *DocBuilder) OnDeclaration(attrs []sax.Attr) error {
	decl := NewDeclaration()
	for _, a := range attrs {
		decl.Attrs.Set(a.Name, a.Value)
	}
	return errOrNil(b.Doc.AddChild(decl))
}

func (b *DocBuilder) OnProcessingInstruction(target, data string) error {
	return nil
}

func (b *DocBuilder) OnDoctype(text string) error {
	return errOrNil(b.Doc.AddChild(NewDoctype(text)))
}

func (b *DocBuilder) OnElementStart(name string, attrs []sax.Attr, empty bool) error {
	el, errc := NewElement(name)
	if errc != sax.NoError {
		return b.fail(errc)
	}
	for _, a := range attrs {
		el.Attrs().Set(a.Name, a.Value)
	}
	el.SetEmpty(empty)

	if b.current != nil {
		b.current.AddChild(el)
	} else if errc := b.Doc.AddChild(el); errc != sax.NoError {
		return b.fail(errc)
	}

	if empty {
		el.SetCompleted(true)
	} else {
		b.current = el
	}
	return nil
}

func (b *DocBuilder) OnElementEnd(name string) error {
	if b.current == nil || b.current.Tag() != name {
		return b.fail(sax.ReadingEndTag)
	}
	b.current.SetCompleted(true)
	b.current = b.current.Parent()
	return nil
}

func (b *DocBuilder) OnText(text string) error {
	if b.current != nil {
		b.current.AddText(text)
		return nil
	}
	return errOrNil(b.Doc.AddChild(NewText(text)))
}

func (b *DocBuilder) OnCData(data string) error {
	if b.current != nil {
		b.current.AddChild(NewCData(data))
		return nil
	}
	return b.fail(sax.NotWellFormed)
}

func (b *DocBuilder) OnComment(text string) error {
	c := NewComment(text)
	if b.current != nil {
		b.current.AddChild(c)
		return nil
	}
	return errOrNil(b.Doc.AddChild(c))
}

func errOrNil(e sax.Error) error {
	if e == sax.NoError {
		return nil
	}
	return e
}

// Parse feeds data through a sax.Parser into d, the same option set
// sax.New itself accepts (spec.md §2's "construction-time option" for a
// logrus.FieldLogger) threaded straight down to the tokeniser. d should
// be empty; Parse does not reset it first.
func (d *Document) Parse(data []byte, opts ...sax.Option) error {
	builder := &DocBuilder{Doc: d}
	p := sax.New(builder, opts...)
	if errc := p.Feed(data); errc != sax.NoError && errc != sax.Incomplete {
		return errc
	}
	if errc := p.Finish(); errc != sax.NoError {
		return errc
	}
	if errc := builder.Err(); errc != sax.NoError {
		return errc
	}
	return nil
}
