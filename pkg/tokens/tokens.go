// Package tokens models the lexical token stream a macro-expansion front
// end hands us: groups, identifiers, punctuation, and literals, each
// carrying an optional source span into the original source buffer. Spans
// are whatever the producer recorded; they routinely fail to nest with the
// token tree (synthesized spans, spans copied from unrelated call sites,
// spans missing entirely), which is exactly what the overlay engine exists
// to untangle.
package tokens

import (
	"encoding/json"
	"io"

	"github.com/hashicorp/go-multierror"
	"gitlab.com/tozd/go/errors"
)

// Kind discriminates token tree elements.
type Kind string

const (
	KindGroup   Kind = "group"
	KindIdent   Kind = "ident"
	KindPunct   Kind = "punct"
	KindLiteral Kind = "literal"
)

// Delim is a group's delimiter pair.
type Delim string

const (
	DelimNone    Delim = "none"
	DelimParen   Delim = "paren"
	DelimBrace   Delim = "brace"
	DelimBracket Delim = "bracket"
)

// Open returns the delimiter's opening text, empty for DelimNone.
func (d Delim) Open() string {
	switch d {
	case DelimParen:
		return "("
	case DelimBrace:
		return "{"
	case DelimBracket:
		return "["
	}
	return ""
}

// Close returns the delimiter's closing text, empty for DelimNone.
func (d Delim) Close() string {
	switch d {
	case DelimParen:
		return ")"
	case DelimBrace:
		return "}"
	case DelimBracket:
		return "]"
	}
	return ""
}

// Spacing records whether a punct is followed by a gap (alone) or glued to
// the next token (joint), as reported by the lexer.
type Spacing string

const (
	SpacingAlone Spacing = "alone"
	SpacingJoint Spacing = "joint"
)

// Span is a half-open byte interval into the stream's source buffer, as
// serialized by the producer.
type Span struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Token is one element of the token tree. Groups carry separate spans for
// their opening and closing delimiters, like the front end reports them;
// the group itself has no span of its own. A nil span means the producer
// had none (synthesized token).
type Token struct {
	Kind      Kind    `json:"kind"`
	Text      string  `json:"text,omitempty"`
	Delim     Delim   `json:"delim,omitempty"`
	Spacing   Spacing `json:"spacing,omitempty"`
	Span      *Span   `json:"span,omitempty"`
	OpenSpan  *Span   `json:"openSpan,omitempty"`
	CloseSpan *Span   `json:"closeSpan,omitempty"`
	Children  []Token `json:"children,omitempty"`
}

// Stream is the input contract: one source buffer plus the token tree
// derived from it.
type Stream struct {
	Source string  `json:"source"`
	Tokens []Token `json:"tokens"`
}

// DecodeStream parses and validates a serialized token stream.
func DecodeStream(r io.Reader) (*Stream, error) {
	var s Stream
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, errors.Errorf("decoding token stream: %w", err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Stream) validate() error {
	var merr *multierror.Error
	var walk func(toks []Token)
	walk = func(toks []Token) {
		for _, tok := range toks {
			switch tok.Kind {
			case KindGroup:
				switch tok.Delim {
				case DelimNone, DelimParen, DelimBrace, DelimBracket, "":
				default:
					merr = multierror.Append(merr, errors.Errorf("unknown delimiter %q", tok.Delim))
				}
				walk(tok.Children)
			case KindIdent, KindLiteral:
				if tok.Text == "" {
					merr = multierror.Append(merr, errors.Errorf("%s token with empty text", tok.Kind))
				}
			case KindPunct:
				switch tok.Spacing {
				case SpacingAlone, SpacingJoint, "":
				default:
					merr = multierror.Append(merr, errors.Errorf("unknown spacing %q", tok.Spacing))
				}
			default:
				merr = multierror.Append(merr, errors.Errorf("unknown token kind %q", tok.Kind))
			}
		}
	}
	walk(s.Tokens)
	if err := merr.ErrorOrNil(); err != nil {
		return errors.Errorf("validating token stream: %w", err)
	}
	return nil
}
