package golive

import (
	"strconv"
	"strings"
)

// ParsedAction is the result of parsing a call-syntax action string.
type ParsedAction struct {
	Name   string
	Params []any
}

// ParseAction parses a compact call-syntax action string into a name and a
// typed parameter list.
//
// The grammar is intentionally small - it accepts everything the DOM
// authoring surface can legally produce and nothing more elaborate:
//
//	increment                -> {increment, []}
//	reset()                  -> {reset, []}
//	vote('Functional')       -> {vote, ["Functional"]}
//	update('name', 'John')   -> {update, ["name", "John"]}
//	delete(42)               -> {delete, [42]}
//
// Arguments are single- or double-quoted strings, bare numeric literals,
// true, false, or null. Commas inside quotes do not split arguments, and a
// backslash escapes the following quote character. Nested calls and
// expressions are not supported.
func ParseAction(input string) ParsedAction {
	input = strings.TrimSpace(input)

	open := strings.IndexByte(input, '(')
	if open < 0 {
		return ParsedAction{Name: input}
	}

	name := strings.TrimSpace(input[:open])
	body := input[open+1:]
	if strings.HasSuffix(body, ")") {
		body = body[:len(body)-1]
	}
	body = strings.TrimSpace(body)
	if body == "" {
		return ParsedAction{Name: name}
	}

	tokens := splitArgs(body)
	params := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		params = append(params, inferValue(tok))
	}
	return ParsedAction{Name: name, Params: params}
}

// splitArgs splits on top-level commas, tracking quote state so commas
// inside quoted strings never split.
func splitArgs(body string) []string {
	var (
		tokens  []string
		current strings.Builder
		quote   byte
		escaped bool
	)

	for i := 0; i < len(body); i++ {
		ch := body[i]
		switch {
		case escaped:
			current.WriteByte(ch)
			escaped = false
		case ch == '\\':
			current.WriteByte(ch)
			escaped = true
		case quote != 0:
			current.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
		case ch == '\'' || ch == '"':
			current.WriteByte(ch)
			quote = ch
		case ch == ',':
			tokens = append(tokens, strings.TrimSpace(current.String()))
			current.Reset()
		default:
			current.WriteByte(ch)
		}
	}
	tokens = append(tokens, strings.TrimSpace(current.String()))
	return tokens
}

// inferValue type-infers a single argument token.
func inferValue(tok string) any {
	switch tok {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}

	if len(tok) >= 2 {
		first, last := tok[0], tok[len(tok)-1]
		if (first == '\'' && last == '\'') || (first == '"' && last == '"') {
			return unescapeQuotes(tok[1 : len(tok)-1])
		}
	}

	if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return f
	}

	// Bare word: a string without quotes.
	return unescapeQuotes(tok)
}

// unescapeQuotes removes backslashes that escape quote characters.
func unescapeQuotes(s string) string {
	if !strings.Contains(s, `\`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\'' || s[i+1] == '"' || s[i+1] == '\\') {
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}
