// Package wire implements the line-oriented tokenizer the kernel's parser
// contract assumes: turning a raw, CRLF-terminated line into
// (prefix, verb, params, trailing). It serves both wire formats used by
// this server — the RFC-1459-ish client syntax and the space-separated
// TS/J10-style peer syntax — since both share the same basic grammar: an
// optional ":prefix" token, a verb, space-separated params, and an optional
// ":trailing" final param that may itself contain spaces.
package wire

import (
	"errors"
	"strings"
)

// ErrEmptyLine is returned by Parse for a blank line.
var ErrEmptyLine = errors.New("wire: empty line")

// Message is a parsed line. Trailing, if present, is the last element of
// Params — matching how most IRC parsers fold the trailing parameter into
// the params slice rather than keeping it separate.
type Message struct {
	Prefix string
	Verb   string
	Params []string
}

// Trailing returns the last parameter, or "" if there are none.
func (m Message) Trailing() string {
	if len(m.Params) == 0 {
		return ""
	}
	return m.Params[len(m.Params)-1]
}

// Parse tokenizes one line, with or without its trailing CRLF.
func Parse(line string) (Message, error) {
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return Message{}, ErrEmptyLine
	}

	var msg Message
	if line[0] == ':' {
		sp := strings.IndexByte(line, ' ')
		if sp < 0 {
			return Message{}, errors.New("wire: prefix with no command")
		}
		msg.Prefix = line[1:sp]
		line = strings.TrimLeft(line[sp+1:], " ")
	}
	if line == "" {
		return Message{}, errors.New("wire: no command")
	}

	for {
		if idx := strings.IndexByte(line, ' '); idx >= 0 {
			tok := line[:idx]
			rest := strings.TrimLeft(line[idx+1:], " ")
			if msg.Verb == "" {
				msg.Verb = strings.ToUpper(tok)
			} else if strings.HasPrefix(tok, ":") {
				msg.Params = append(msg.Params, tok[1:]+spaceJoinRemainder(rest))
				return msg, nil
			} else {
				msg.Params = append(msg.Params, tok)
			}
			line = rest
			if line == "" {
				return msg, nil
			}
			continue
		}
		// last token on the line
		if msg.Verb == "" {
			msg.Verb = strings.ToUpper(line)
		} else if strings.HasPrefix(line, ":") {
			msg.Params = append(msg.Params, line[1:])
		} else {
			msg.Params = append(msg.Params, line)
		}
		return msg, nil
	}
}

// spaceJoinRemainder re-attaches a space and the remainder so a trailing
// param that was split on spaces is reassembled verbatim.
func spaceJoinRemainder(rest string) string {
	if rest == "" {
		return ""
	}
	return " " + rest
}

// Format renders msg back into a wire line, without the trailing CRLF. It
// is mainly useful for tests and for re-emitting a parsed peer line
// unmodified.
func Format(msg Message) string {
	var b strings.Builder
	if msg.Prefix != "" {
		b.WriteByte(':')
		b.WriteString(msg.Prefix)
		b.WriteByte(' ')
	}
	b.WriteString(msg.Verb)
	for i, p := range msg.Params {
		b.WriteByte(' ')
		if i == len(msg.Params)-1 && (strings.Contains(p, " ") || p == "" || strings.HasPrefix(p, ":")) {
			b.WriteByte(':')
		}
		b.WriteString(p)
	}
	return b.String()
}
