package xpath

import (
	"github.com/arkcall/xmlmatch/internal/logging"
	"github.com/sirupsen/logrus"
)

// Status is the XPath error taxonomy of spec.md §4.4/§7.
type Status int

const (
	NoError Status = iota
	EEmptyItem
	ESyntax
	ESemantic
	ERange
	EEmptyResult
	NotParsed
)

var statusNames = [...]string{
	NoError:      "NoError",
	EEmptyItem:   "EEmptyItem",
	ESyntax:      "ESyntax",
	ESemantic:    "ESemantic",
	ERange:       "ERange",
	EEmptyResult: "EEmptyResult",
	NotParsed:    "NotParsed",
}

func (s Status) String() string {
	if int(s) >= 0 && int(s) < len(statusNames) {
		return statusNames[s]
	}
	return "Status(?)"
}

// NodeType is the step selector kind.
type NodeType int

const (
	ElementNode NodeType = iota
	AttributeNode
	TextNode      // text()
	ChildTextNode // child::text()
)

// MaxPredicates bounds the predicate list per step (spec.md §3 "list<predicate
// of length ≤ MAX_PRED>"), grounded on the teacher's own fixed-size instruction
// operand arrays in xpath/inst.go.
const MaxPredicates = 8

// PredKind tags a predicate's variant (spec.md §3).
type PredKind int

const (
	IndexPred PredKind = iota
	AttributePred
	ChildPred
	TextPred
)

// Op is a predicate comparison operator.
type Op int

const (
	OpNone Op = iota
	OpEq
	OpNe
	OpMatches
	OpNotMatches
)

// Predicate is one `[ ... ]` filter on a step.
type Predicate struct {
	Kind  PredKind
	Index uint32 // valid when Kind == IndexPred, 1-based
	Name  string // attribute or child element name; "" means wildcard (@*) or text()
	Op    Op
	Value string // comparison literal, or regex source
	Flags string // regex flags: subset of "ib"
}

// Step is one `/`-separated path component.
type Step struct {
	NodeType   NodeType
	Name       string // tag or attribute name; "*" is the element wildcard
	Predicates []Predicate
}

// Flags are parser configuration bits (spec.md §4.4). StrictParse is
// accepted but has no effect: the lexer skips spaces and tabs between
// tokens whatever the flags.
type Flags uint

const (
	LateParse Flags = 1 << iota
	StrictParse
	IgnoreEmptyResult
	NoXmlNameCheck
)

// Path is an immutable compiled XPath (spec.md §3). Once parsed, Steps,
// status, and diagnostics never change; callers evaluate it any number
// of times against any dom.Element.
type Path struct {
	raw       string
	flags     Flags
	Absolute  bool
	Steps     []Step
	status    Status
	errorItem int
	errorText string
	warnings  []string
	log       logrus.FieldLogger
}

// Option configures a Path at Compile time, mirroring sax.Option.
type Option func(*Path)

// WithLogger overrides the package default logrus logger
// (internal/logging.Default()) for diagnostics emitted while parsing
// this Path — currently just unrecognised regex predicate flags,
// grounded on xpath/xutils/warning.go's accumulate-and-log pattern.
func WithLogger(l logrus.FieldLogger) Option {
	return func(p *Path) { p.log = l }
}

// Compile parses path text into a Path. If flags has LateParse set, the
// actual parse is deferred until the first call to Parse or Status.
func Compile(path string, flags Flags, opts ...Option) *Path {
	p := &Path{raw: path, flags: flags, status: NotParsed, log: logging.Default()}
	for _, o := range opts {
		o(p)
	}
	if flags&LateParse == 0 {
		p.Parse()
	}
	return p
}

// Parse runs (or re-runs) the parse if it has not already produced a
// terminal status; it is idempotent once parsed.
func (p *Path) Parse() Status {
	if p.status != NotParsed {
		return p.status
	}
	ps := newParser(p.raw, p.flags, p.log)
	abs, steps, st, item, text := ps.parsePath()
	p.Absolute = abs
	p.Steps = steps
	p.status = st
	p.errorItem = item
	p.errorText = text
	p.warnings = ps.warnings
	return p.status
}

// Status returns the path's compile status, parsing first if LateParse
// deferred it.
func (p *Path) Status() Status {
	if p.status == NotParsed {
		p.Parse()
	}
	return p.status
}

// Error returns a human-readable description of the compile failure, or
// "" if Status() == NoError.
func (p *Path) Error() string { return p.errorText }

// ErrorItem returns the 0-based index of the step that failed to parse,
// or -1 if parsing succeeded.
func (p *Path) ErrorItem() int { return p.errorItem }

// Warnings returns non-fatal diagnostics accumulated during parsing
// (e.g. an unrecognised regex flag letter), grounded on
// xpath/xutils/warning.go's accumulation pattern.
func (p *Path) Warnings() []string { return p.warnings }

// String returns the original path text.
func (p *Path) String() string { return p.raw }
