package xpath

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/arkcall/xmlmatch/internal/charclass"
	"github.com/sirupsen/logrus"
)

type parser struct {
	lex      *lexer
	flags    Flags
	tok      token
	peeked   *token
	stepIdx  int
	warnings []string
	log      logrus.FieldLogger
}

func newParser(input string, flags Flags, log logrus.FieldLogger) *parser {
	p := &parser{lex: newLexer(input), flags: flags, log: log}
	p.advance()
	return p
}

func (p *parser) advance() {
	if p.peeked != nil {
		p.tok = *p.peeked
		p.peeked = nil
		return
	}
	p.tok = p.lex.next()
}

// peek returns the token after p.tok without consuming it, buffering it
// for the next advance. Needed to tell a matches/notMatches function
// name apart from a plain child-element name of the same spelling
// before committing to either parse path.
func (p *parser) peek() token {
	if p.peeked == nil {
		t := p.lex.next()
		p.peeked = &t
	}
	return *p.peeked
}

func (p *parser) fail(st Status, format string, args ...any) (bool, []Step, Status, int, string) {
	return false, nil, st, p.stepIdx, fmt.Sprintf(format, args...)
}

// parsePath parses `'/'? step ('/' step)*`.
func (p *parser) parsePath() (absolute bool, steps []Step, status Status, errorItem int, errorText string) {
	if p.tok.kind == tokEOF {
		return p.fail(EEmptyItem, "empty path")
	}
	if p.tok.kind == tokSlash {
		absolute = true
		p.advance()
	}
	for {
		step, ok := p.parseStep()
		if !ok {
			return false, nil, ESyntax, p.stepIdx, p.lex.err
		}
		steps = append(steps, step)
		p.stepIdx++
		if p.tok.kind != tokSlash {
			break
		}
		p.advance()
	}
	if p.tok.kind != tokEOF {
		return p.fail(ESyntax, "unexpected trailing input")
	}
	if p.flags&IgnoreEmptyResult == 0 {
		if err := provablyEmpty(steps); err != "" {
			return false, nil, EEmptyResult, len(steps) - 1, err
		}
	}
	return absolute, steps, NoError, -1, ""
}

// provablyEmpty rejects syntactic forms that can never yield a result,
// per spec.md §4.4: "a non-element selector followed by further steps".
func provablyEmpty(steps []Step) string {
	for i, s := range steps {
		if i == len(steps)-1 {
			continue
		}
		if s.NodeType != ElementNode {
			return "non-element selector followed by further steps"
		}
	}
	return ""
}

// parseStep parses `selector predicate*`.
func (p *parser) parseStep() (Step, bool) {
	var step Step
	switch p.tok.kind {
	case tokAt:
		p.advance()
		if p.tok.kind != tokName {
			p.lex.err = "expected attribute name after '@'"
			return step, false
		}
		step.NodeType = AttributeNode
		step.Name = p.tok.text
		p.advance()
	case tokName:
		name := p.tok.text
		p.advance()
		if name == "child" && p.tok.kind == tokColonColon {
			p.advance()
			if p.tok.kind != tokName || p.tok.text != "text" {
				p.lex.err = "expected 'text' after 'child::'"
				return step, false
			}
			p.advance()
			if !p.expectCallParens() {
				return step, false
			}
			step.NodeType = ChildTextNode
		} else if name == "text" && p.tok.kind == tokLParen {
			if !p.expectCallParens() {
				return step, false
			}
			step.NodeType = TextNode
		} else {
			if p.flags&NoXmlNameCheck == 0 && name != "*" && !charclass.ValidName(name) {
				p.lex.err = "invalid element name " + name
				return step, false
			}
			step.NodeType = ElementNode
			step.Name = name
		}
	default:
		p.lex.err = "expected a selector"
		return step, false
	}

	for p.tok.kind == tokLBracket {
		pred, ok := p.parsePredicate()
		if !ok {
			return step, false
		}
		if len(step.Predicates) >= MaxPredicates {
			p.lex.err = "too many predicates"
			return step, false
		}
		step.Predicates = append(step.Predicates, pred)
	}
	return step, true
}

func (p *parser) expectCallParens() bool {
	if p.tok.kind != tokLParen {
		p.lex.err = "expected '('"
		return false
	}
	p.advance()
	if p.tok.kind != tokRParen {
		p.lex.err = "expected ')'"
		return false
	}
	p.advance()
	return true
}

// parsePredicate parses `'[' (INT | fn_call | xml_op cmp_op?) ']'`, where
// fn_call is `('matches'|'notMatches') '(' xml_op ',' STRING (',' STRING)? ')'`
// — the regex-predicate function name comes first, its XML selector is
// parsed as the function's own first argument, per
// original_source/engine/XML.cpp:3694-3751 ("Function first parameter
// MUST be an XML selector") and spec.md §8 scenario S4's
// `matches(text(),"^fo","")` form.
func (p *parser) parsePredicate() (Predicate, bool) {
	var pred Predicate
	p.advance() // consume '['

	if p.tok.kind == tokInt {
		n, err := strconv.ParseUint(p.tok.text, 10, 32)
		if err != nil || n == 0 {
			p.lex.err = "predicate index must be >= 1"
			return pred, false
		}
		pred.Kind = IndexPred
		pred.Index = uint32(n)
		p.advance()
		return pred, p.expectRBracket()
	}

	if p.tok.kind == tokName && (p.tok.text == "matches" || p.tok.text == "notMatches") && p.peek().kind == tokLParen {
		return p.parseMatchesCall()
	}

	kind, name, ok := p.parseOperand()
	if !ok {
		return pred, false
	}
	pred.Kind = kind
	pred.Name = name

	switch p.tok.kind {
	case tokRBracket:
		pred.Op = OpNone
		p.advance()
		return pred, true
	case tokEq, tokNe:
		op := OpEq
		if p.tok.kind == tokNe {
			op = OpNe
		}
		p.advance()
		if p.tok.kind != tokString {
			p.lex.err = "expected string literal after comparison operator"
			return pred, false
		}
		pred.Op = op
		pred.Value = p.tok.text
		p.advance()
		return pred, p.expectRBracket()
	default:
		p.lex.err = "malformed predicate"
		return pred, false
	}
}

// parseMatchesCall parses `('matches'|'notMatches') '(' xml_op ','
// STRING (',' STRING)? ')'` once the caller has confirmed the function
// name is followed by '('.
func (p *parser) parseMatchesCall() (Predicate, bool) {
	var pred Predicate
	fn := p.tok.text
	op := OpMatches
	if fn == "notMatches" {
		op = OpNotMatches
	}
	p.advance() // consume function name
	p.advance() // consume '('

	kind, name, ok := p.parseOperand()
	if !ok {
		return pred, false
	}
	pred.Kind = kind
	pred.Name = name
	pred.Op = op

	if p.tok.kind != tokComma {
		p.lex.err = "expected ',' after " + fn + "'s selector argument"
		return pred, false
	}
	p.advance()
	if p.tok.kind != tokString {
		p.lex.err = "expected regex literal"
		return pred, false
	}
	pred.Value = p.tok.text
	p.advance()

	if p.tok.kind == tokComma {
		p.advance()
		if p.tok.kind != tokString {
			p.lex.err = "expected flags literal"
			return pred, false
		}
		pred.Flags = p.tok.text
		p.validRegexFlags(pred.Flags)
		p.advance()
	}
	if p.tok.kind != tokRParen {
		p.lex.err = "expected ')'"
		return pred, false
	}
	p.advance()
	return pred, p.expectRBracket()
}

// parseOperand parses an xml_op: `@Name`, `@*`, `Name`, `text()`, or
// `child::text()`.
func (p *parser) parseOperand() (PredKind, string, bool) {
	switch p.tok.kind {
	case tokAt:
		p.advance()
		if p.tok.kind != tokName {
			p.lex.err = "expected attribute name after '@'"
			return 0, "", false
		}
		name := p.tok.text
		p.advance()
		if name == "*" {
			return AttributePred, "", true
		}
		return AttributePred, name, true
	case tokName:
		name := p.tok.text
		p.advance()
		if name == "text" && p.tok.kind == tokLParen {
			if !p.expectCallParens() {
				return 0, "", false
			}
			return TextPred, "", true
		}
		if name == "child" && p.tok.kind == tokColonColon {
			p.advance()
			if p.tok.kind != tokName || p.tok.text != "text" {
				p.lex.err = "expected 'text' after 'child::'"
				return 0, "", false
			}
			p.advance()
			if !p.expectCallParens() {
				return 0, "", false
			}
			return TextPred, "", true
		}
		if p.flags&NoXmlNameCheck == 0 && !charclass.ValidName(name) {
			p.lex.err = "invalid child name " + name
			return 0, "", false
		}
		return ChildPred, name, true
	default:
		p.lex.err = "expected a predicate operand"
		return 0, "", false
	}
}

func (p *parser) expectRBracket() bool {
	if p.tok.kind != tokRBracket {
		p.lex.err = "expected ']'"
		return false
	}
	p.advance()
	return true
}

func (p *parser) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.warnings = append(p.warnings, msg)
	if p.log != nil {
		p.log.Debug("xpath: " + msg)
	}
}

// validRegexFlags checks a flags literal is a subset of "ib", warning
// (not failing) on unrecognised letters per spec.md §9's open question.
func (p *parser) validRegexFlags(flags string) {
	for _, r := range flags {
		if !strings.ContainsRune("ib", r) {
			p.warnf("unrecognised regex flag %q", r)
		}
	}
}
