package labelset

import (
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports malformed label-set serialization.
type SyntaxError struct {
	Offset int
	Msg    string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// Parse decodes an ordered annotation group: one label set per annotator.
//
// Accepted forms are the literals written by the dataset construction
// scripts and plain JSON, for example
//
//	[{0, 3}, {3}, set()]
//	[["Github"], ["Github", "Assignments"]]
//
// The outer sequence may use [] or (); each set may use {}, [] or (), and
// set() denotes the empty set. Items are non-negative integers or quoted
// strings.
func Parse(raw string) ([]Set, error) {
	p := &parser{src: raw}
	p.skipSpace()

	var closer byte
	switch p.peek() {
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return nil, p.errorf("expected '[' or '(' to open the annotation group")
	}
	p.pos++

	var group []Set
	for {
		p.skipSpace()
		if p.peek() == closer {
			p.pos++
			break
		}
		s, err := p.parseSet()
		if err != nil {
			return nil, err
		}
		group = append(group, s)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
		default:
			return nil, p.errorf("expected ',' or %q after label set", closer)
		}
	}

	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected trailing input")
	}
	return group, nil
}

type parser struct {
	src string
	pos int
}

func (p *parser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *parser) skipSpace() {
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case ' ', '\t', '\n', '\r':
			p.pos++
		default:
			return
		}
	}
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) parseSet() (Set, error) {
	if strings.HasPrefix(p.src[p.pos:], "set()") {
		p.pos += len("set()")
		return Set{}, nil
	}

	var closer byte
	switch p.peek() {
	case '{':
		closer = '}'
	case '[':
		closer = ']'
	case '(':
		closer = ')'
	default:
		return Set{}, p.errorf("expected a label set")
	}
	p.pos++

	var labels []Label
	for {
		p.skipSpace()
		if p.peek() == closer {
			p.pos++
			return New(labels...), nil
		}
		l, err := p.parseLabel()
		if err != nil {
			return Set{}, err
		}
		labels = append(labels, l)

		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case closer:
		default:
			return Set{}, p.errorf("expected ',' or %q after label", closer)
		}
	}
}

func (p *parser) parseLabel() (Label, error) {
	c := p.peek()
	switch {
	case c == '\'' || c == '"':
		return p.parseQuoted(c)
	case c >= '0' && c <= '9':
		start := p.pos
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
		n, err := strconv.Atoi(p.src[start:p.pos])
		if err != nil {
			return "", &SyntaxError{Offset: start, Msg: fmt.Sprintf("invalid integer label: %v", err)}
		}
		return Label(strconv.Itoa(n)), nil
	case c == 0:
		return "", p.errorf("unexpected end of input")
	default:
		return "", p.errorf("unexpected character %q", c)
	}
}

func (p *parser) parseQuoted(quote byte) (Label, error) {
	start := p.pos
	p.pos++
	var b strings.Builder
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		switch c {
		case '\\':
			if p.pos+1 >= len(p.src) {
				return "", p.errorf("dangling escape")
			}
			b.WriteByte(p.src[p.pos+1])
			p.pos += 2
		case quote:
			p.pos++
			return Text(b.String()), nil
		default:
			b.WriteByte(c)
			p.pos++
		}
	}
	return "", &SyntaxError{Offset: start, Msg: "unterminated string"}
}
