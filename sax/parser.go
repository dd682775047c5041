// Package sax implements a pull-style, resumable XML 1.0 tokeniser. It
// owns no I/O: callers push bytes in via Feed and receive synchronous
// callbacks on a Handler. Architecture is grounded on parse/lex.go's
// Rob-Pike-style scanner (buffer + position counters + a "what state are
// we resuming into" marker) generalised from a single-call lexer to a
// cross-call resumable one, per spec.md §4.2/§9.
package sax

import (
	"bytes"

	"github.com/arkcall/xmlmatch/internal/charclass"
	"github.com/arkcall/xmlmatch/internal/escape"
	"github.com/arkcall/xmlmatch/internal/logging"
	"github.com/sirupsen/logrus"
)

// Attr is one name/value attribute pair, value already unescaped.
type Attr struct {
	Name  string
	Value string
}

// Handler receives tokeniser events. Every method may return an error,
// which aborts the parse with Unknown and becomes sticky (spec.md §4.2
// does not specify handler-failure behaviour; treating it as a hard
// parse error is the conservative reading: a handler that rejects a
// token is no more recoverable than a syntax error).
type Handler interface {
	OnDeclaration(attrs []Attr) error
	OnProcessingInstruction(target, data string) error
	OnDoctype(text string) error
	OnElementStart(name string, attrs []Attr, empty bool) error
	OnElementEnd(name string) error
	OnText(text string) error
	OnCData(data string) error
	OnComment(text string) error
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithLogger overrides the package default logrus logger (internal/logging.Default()).
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Parser) { p.log = l }
}

// Parser is a resumable SAX tokeniser. Zero value is not usable; use New.
type Parser struct {
	h   Handler
	log logrus.FieldLogger

	buf       []byte // unconsumed, not-yet-classified bytes (begins with '<' once we know we're in markup)
	textAccum []byte // accumulated, not-yet-flushed text run
	pos       Position

	kind   Kind
	sticky Error

	sawDeclaration bool
}

// New creates a Parser that reports events to h.
func New(h Handler, opts ...Option) *Parser {
	p := &Parser{h: h, log: logging.Default()}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Pos returns the row/column/offset of the last consumed byte.
func (p *Parser) Pos() Position { return p.pos }

// Reset clears all state, including any sticky error, so the parser can
// be reused from scratch.
func (p *Parser) Reset() {
	p.buf = nil
	p.textAccum = nil
	p.pos = Position{}
	p.kind = KindNone
	p.sticky = NoError
	p.sawDeclaration = false
}

// Feed appends b to the internal buffer and consumes as many complete
// productions as possible, invoking Handler callbacks for each. It
// returns NoError once all buffered input has been consumed, Incomplete
// if a production is only partially present (state is retained for the
// next Feed call), or a terminal error otherwise. After a terminal error
// the parser is unusable until Reset.
func (p *Parser) Feed(b []byte) Error {
	if p.sticky.Sticky() {
		return p.sticky
	}
	p.buf = append(p.buf, b...)
	for len(p.buf) > 0 {
		if p.buf[0] != '<' {
			idx := bytes.IndexByte(p.buf, '<')
			if idx < 0 {
				p.consumeText(p.buf)
				p.buf = p.buf[:0]
				p.kind = KindText
				return NoError
			}
			p.consumeText(p.buf[:idx])
			p.buf = p.buf[idx:]
			if err := p.flushText(); err != NoError {
				return p.fail(err)
			}
			continue
		}
		// A text run held back by an earlier Feed ends at this '<'.
		if err := p.flushText(); err != NoError {
			return p.fail(err)
		}

		n, err := p.dispatchMarkup(p.buf)
		if err == Incomplete {
			p.kind = p.classify(p.buf)
			return Incomplete
		}
		if err != NoError {
			return p.fail(err)
		}
		p.buf = p.consumed(p.buf, n)
		p.kind = KindNone
	}
	p.kind = KindNone
	return NoError
}

// Finish tells the parser no more input is coming. Any pending text run
// is flushed; any incomplete markup production left in the buffer is a
// hard NotWellFormed (it can never complete now).
func (p *Parser) Finish() Error {
	if p.sticky.Sticky() {
		return p.sticky
	}
	if len(p.buf) > 0 {
		return p.fail(NotWellFormed)
	}
	if err := p.flushText(); err != NoError {
		return p.fail(err)
	}
	return NoError
}

func (p *Parser) fail(e Error) Error {
	p.sticky = e
	p.log.WithFields(logging.Field{"error": e.String(), "pos": p.pos}).Debug("sax: parse failed")
	return e
}

func (p *Parser) consumed(buf []byte, n int) []byte {
	p.pos.advance(buf[:n])
	return buf[n:]
}

func (p *Parser) consumeText(b []byte) {
	p.textAccum = append(p.textAccum, b...)
}

func (p *Parser) flushText() Error {
	if len(p.textAccum) == 0 {
		return NoError
	}
	if bytes.IndexByte(p.textAccum, '>') >= 0 {
		return NotWellFormed
	}
	dec, _, err := escape.Unescape(nil, p.textAccum)
	if err != nil {
		return NotWellFormed
	}
	p.pos.advance(p.textAccum)
	p.textAccum = p.textAccum[:0]
	if herr := p.h.OnText(string(dec)); herr != nil {
		return Unknown
	}
	return NoError
}

func (p *Parser) classify(buf []byte) Kind {
	if len(buf) < 2 {
		return KindNone
	}
	switch buf[1] {
	case '?':
		return KindPI
	case '!':
		return KindSpecial
	case '/':
		return KindEndTag
	default:
		return KindElement
	}
}

// dispatchMarkup resumes into the sub-parser p.kind was left pointing at
// by a previous Incomplete Feed call, instead of re-deriving it from
// buf's leading bytes (spec.md §4.2/§9: "drive sub-parsers from a single
// dispatch on resume"). classify only ever produces KindElement,
// KindEndTag, KindPI (covering both a PI and a declaration, which share
// a sub-parser), KindSpecial (comment/CDATA/doctype, not yet
// distinguishable from the bytes classify saw) or KindNone (only the
// '<' itself has been seen); KindNone — including a markup production
// that has not been seen before — falls through to parseMarkup's own
// byte-by-byte classification.
func (p *Parser) dispatchMarkup(buf []byte) (int, Error) {
	switch p.kind {
	case KindElement:
		return p.parseStartTag(buf)
	case KindEndTag:
		return p.parseEndTag(buf)
	case KindPI:
		return p.parseDeclOrPI(buf)
	case KindSpecial:
		return p.parseBang(buf)
	default:
		return p.parseMarkup(buf)
	}
}

// parseMarkup dispatches on buf[1] (buf[0] is always '<'). It returns the
// number of bytes consumed by one complete production, or Incomplete if
// buf does not yet hold a whole production.
func (p *Parser) parseMarkup(buf []byte) (int, Error) {
	if len(buf) < 2 {
		return 0, Incomplete
	}
	switch buf[1] {
	case '?':
		return p.parseDeclOrPI(buf)
	case '!':
		return p.parseBang(buf)
	case '/':
		return p.parseEndTag(buf)
	default:
		return p.parseStartTag(buf)
	}
}

// parseBang disambiguates Comment / CDATA / Doctype as soon as the
// third byte ('-', '[' or 'D') is available, rather than waiting for a
// full fixed-length prefix: a short complete comment like "<!---->"
// must not be held back as Incomplete merely because it is shorter than
// "<!DOCTYPE".
func (p *Parser) parseBang(buf []byte) (int, Error) {
	if len(buf) < 3 {
		return 0, Incomplete
	}
	switch buf[2] {
	case '-':
		if len(buf) < 4 {
			return 0, Incomplete
		}
		if buf[3] != '-' {
			return 0, DefinitionParse
		}
		return p.parseComment(buf)
	case '[':
		const prefix = "<![CDATA["
		if len(buf) < len(prefix) {
			if hasPrefix(prefix, buf) {
				return 0, Incomplete
			}
			return 0, DefinitionParse
		}
		if !bytes.HasPrefix(buf, []byte(prefix)) {
			return 0, DefinitionParse
		}
		return p.parseCData(buf)
	case 'D':
		const prefix = "<!DOCTYPE"
		if len(buf) < len(prefix) {
			if hasPrefix(prefix, buf) {
				return 0, Incomplete
			}
			return 0, DefinitionParse
		}
		if !bytes.HasPrefix(buf, []byte(prefix)) {
			return 0, DefinitionParse
		}
		return p.parseDoctype(buf)
	default:
		return 0, DefinitionParse
	}
}

func hasPrefix(full string, got []byte) bool {
	n := len(got)
	if n > len(full) {
		n = len(full)
	}
	return string(got[:n]) == full[:n]
}

func (p *Parser) parseComment(buf []byte) (int, Error) {
	end := bytes.Index(buf[4:], []byte("-->"))
	if end < 0 {
		return 0, Incomplete
	}
	body := buf[4 : 4+end]
	if bytes.IndexByte(body, 0x0C) >= 0 {
		return 0, CommentParse
	}
	if bytes.Contains(body, []byte("--")) || bytes.HasSuffix(body, []byte("-")) {
		p.log.Debug("sax: comment contains '--' or ends in '-'")
	}
	if herr := p.h.OnComment(string(body)); herr != nil {
		return 0, Unknown
	}
	return 4 + end + 3, NoError
}

func (p *Parser) parseCData(buf []byte) (int, Error) {
	end := bytes.Index(buf[9:], []byte("]]>"))
	if end < 0 {
		return 0, Incomplete
	}
	body := buf[9 : 9+end]
	if herr := p.h.OnCData(string(body)); herr != nil {
		return 0, Unknown
	}
	return 9 + end + 3, NoError
}

func (p *Parser) parseDoctype(buf []byte) (int, Error) {
	// Opaque text; may contain a bracketed internal subset "[ ... ]"
	// before the terminating '>'. We must not stop at a '>' that is
	// inside the subset.
	depth := 0
	for i := 2; i < len(buf); i++ {
		switch buf[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth == 0 {
				text := string(buf[2:i])
				if herr := p.h.OnDoctype(text); herr != nil {
					return 0, Unknown
				}
				return i + 1, NoError
			}
		}
	}
	return 0, Incomplete
}

func (p *Parser) parseDeclOrPI(buf []byte) (int, Error) {
	end := bytes.Index(buf[2:], []byte("?>"))
	if end < 0 {
		return 0, Incomplete
	}
	body := buf[2 : 2+end]
	total := 2 + end + 2

	nameEnd := 0
	for nameEnd < len(body) && !charclass.IsBlank(body[nameEnd]) {
		nameEnd++
	}
	name := string(body[:nameEnd])
	rest := body[nameEnd:]

	if foldEqual(name, "xml") {
		if p.sawDeclaration {
			return 0, DeclarationParse
		}
		attrs, err := parseAttrs(rest)
		if err != NoError {
			return 0, DeclarationParse
		}
		ver, hasVer := attrVal(attrs, "version")
		if hasVer && !validVersion(ver) {
			return 0, UnsupportedVersion
		}
		if enc, hasEnc := attrVal(attrs, "encoding"); hasEnc && !foldEqual(enc, "utf-8") {
			return 0, UnsupportedEncoding
		}
		p.sawDeclaration = true
		if herr := p.h.OnDeclaration(attrs); herr != nil {
			return 0, Unknown
		}
		return total, NoError
	}
	if len(name) >= 3 && foldEqual(name[:3], "xml") {
		return 0, DeclarationParse
	}
	if !charclass.ValidName(name) {
		return 0, InvalidElementName
	}
	data := rest
	for len(data) > 0 && charclass.IsBlank(data[0]) {
		data = data[1:]
	}
	if herr := p.h.OnProcessingInstruction(name, string(data)); herr != nil {
		return 0, Unknown
	}
	return total, NoError
}

func (p *Parser) parseEndTag(buf []byte) (int, Error) {
	end := bytes.IndexByte(buf[2:], '>')
	if end < 0 {
		return 0, Incomplete
	}
	name := bytes.TrimSpace(buf[2 : 2+end])
	if len(name) == 0 || !charclass.ValidName(string(name)) {
		return 0, ReadingEndTag
	}
	if herr := p.h.OnElementEnd(string(name)); herr != nil {
		return 0, Unknown
	}
	return 2 + end + 1, NoError
}

func (p *Parser) parseStartTag(buf []byte) (int, Error) {
	// Scan for the unquoted terminator '>' (possibly preceded by '/').
	i := 1
	inQuote := byte(0)
	for i < len(buf) {
		c := buf[i]
		if inQuote != 0 {
			if c == inQuote {
				inQuote = 0
			}
			i++
			continue
		}
		if c == '\'' || c == '"' {
			inQuote = c
			i++
			continue
		}
		if c == '>' {
			break
		}
		i++
	}
	if i >= len(buf) {
		return 0, Incomplete
	}
	empty := i > 1 && buf[i-1] == '/'
	nameAndAttrs := buf[1:i]
	if empty {
		nameAndAttrs = nameAndAttrs[:len(nameAndAttrs)-1]
	}

	nameEnd := 0
	for nameEnd < len(nameAndAttrs) && !charclass.IsBlank(nameAndAttrs[nameEnd]) && nameAndAttrs[nameEnd] != '/' {
		nameEnd++
	}
	name := string(nameAndAttrs[:nameEnd])
	if !charclass.ValidName(name) {
		return 0, InvalidElementName
	}
	attrs, aerr := parseAttrs(nameAndAttrs[nameEnd:])
	if aerr != NoError {
		return 0, ReadingAttributes
	}
	if herr := p.h.OnElementStart(name, attrs, empty); herr != nil {
		return 0, Unknown
	}
	return i + 1, NoError
}

// parseAttrs parses a run of "name='value'" or "name=\"value\"" pairs
// separated by blanks, rejecting duplicate names. It is used for both
// declaration attributes and element start-tag attributes, matching
// spec.md §4.2's "Attribute assembly ... rejects duplicate names".
func parseAttrs(b []byte) ([]Attr, Error) {
	var attrs []Attr
	seen := make(map[string]bool)
	i := 0
	for {
		for i < len(b) && charclass.IsBlank(b[i]) {
			i++
		}
		if i >= len(b) {
			break
		}
		start := i
		for i < len(b) && b[i] != '=' && !charclass.IsBlank(b[i]) {
			i++
		}
		name := string(b[start:i])
		if !charclass.ValidName(name) {
			return nil, InvalidElementName
		}
		for i < len(b) && charclass.IsBlank(b[i]) {
			i++
		}
		if i >= len(b) || b[i] != '=' {
			return nil, ReadingAttributes
		}
		i++
		for i < len(b) && charclass.IsBlank(b[i]) {
			i++
		}
		if i >= len(b) || (b[i] != '\'' && b[i] != '"') {
			return nil, ReadingAttributes
		}
		quote := b[i]
		i++
		vstart := i
		for i < len(b) && b[i] != quote {
			i++
		}
		if i >= len(b) {
			return nil, ReadingAttributes
		}
		raw := b[vstart:i]
		i++
		if bytes.IndexByte(raw, '<') >= 0 {
			return nil, ReadingAttributes
		}
		val, _, err := escape.Unescape(nil, raw)
		if err != nil {
			return nil, ReadingAttributes
		}
		if seen[name] {
			return nil, ReadingAttributes
		}
		seen[name] = true
		attrs = append(attrs, Attr{Name: name, Value: string(val)})
	}
	return attrs, NoError
}

func attrVal(attrs []Attr, name string) (string, bool) {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

func foldEqual(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := 0; i < len(a); i++ {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

func validVersion(v string) bool {
	return len(v) == 3 && v[0] == '1' && v[1] == '.' && v[2] >= '0' && v[2] <= '9'
}
