package expect

import (
	"context"
	"fmt"
	"strings"
)

// ArgShape is one argument slot of an assertion pattern.
type ArgShape struct {
	Type     string
	Variadic bool // <string+>: one or more
}

func (a ArgShape) String() string {
	if a.Variadic {
		return "<" + a.Type + "+>"
	}
	return "<" + a.Type + ">"
}

// Assertion is a registered assertion definition. It is immutable once added
// to a Registry.
type Assertion struct {
	Pattern   string
	Subject   string
	Words     string // words without the optional "not"
	NotWords  string // words with "not" in place of [not]; empty unless Negatable
	Negatable bool
	Args      []ArgShape
	Check     CheckFunc
}

// CheckFunc implements an assertion. It returns nil when the assertion holds.
type CheckFunc func(ctx context.Context, x *Context) error

// parsePattern parses "<Subject> words [not] words <arg> <arg+>".
func parsePattern(pattern string) (*Assertion, error) {
	fields := strings.Fields(pattern)
	if len(fields) < 2 {
		return nil, fmt.Errorf("invalid assertion pattern %q: need a subject type and words", pattern)
	}

	subject, ok := typeToken(fields[0])
	if !ok || strings.HasSuffix(subject, "+") {
		return nil, fmt.Errorf("invalid assertion pattern %q: must start with <Type>", pattern)
	}

	a := &Assertion{
		Pattern: strings.Join(fields, " "),
		Subject: subject,
	}

	var words, notWords []string
	i := 1
	for ; i < len(fields); i++ {
		tok := fields[i]
		if _, isType := typeToken(tok); isType {
			break
		}
		if tok == "[not]" {
			if a.Negatable {
				return nil, fmt.Errorf("invalid assertion pattern %q: [not] given twice", pattern)
			}
			a.Negatable = true
			notWords = append(notWords, "not")
			continue
		}
		words = append(words, tok)
		notWords = append(notWords, tok)
	}
	if len(words) == 0 {
		return nil, fmt.Errorf("invalid assertion pattern %q: no assertion words", pattern)
	}
	a.Words = strings.Join(words, " ")
	if a.Negatable {
		a.NotWords = strings.Join(notWords, " ")
	}

	for ; i < len(fields); i++ {
		name, isType := typeToken(fields[i])
		if !isType {
			return nil, fmt.Errorf("invalid assertion pattern %q: word %q after arguments", pattern, fields[i])
		}
		shape := ArgShape{Type: name}
		if strings.HasSuffix(name, "+") {
			shape = ArgShape{Type: strings.TrimSuffix(name, "+"), Variadic: true}
			if i != len(fields)-1 {
				return nil, fmt.Errorf("invalid assertion pattern %q: only the last argument may be variadic", pattern)
			}
		}
		a.Args = append(a.Args, shape)
	}

	return a, nil
}

func typeToken(tok string) (string, bool) {
	if len(tok) < 3 || tok[0] != '<' || tok[len(tok)-1] != '>' {
		return "", false
	}
	return tok[1 : len(tok)-1], true
}

// normalizeAssertion collapses whitespace in an invoked assertion name.
func normalizeAssertion(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
