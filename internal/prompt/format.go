// Package prompt renders the positional prompt templates of model_config.json.
//
// Templates use brace placeholders: "{}" takes the next argument and "{N}"
// takes argument N. "{{" and "}}" produce literal braces. Automatic and
// numbered placeholders cannot be mixed in one template.
package prompt

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidTemplate is returned for malformed templates or missing arguments.
var ErrInvalidTemplate = errors.New("invalid prompt template")

// Format renders template with args.
func Format(template string, args ...any) (string, error) {
	var b strings.Builder
	b.Grow(len(template))

	next := 0
	auto, manual := false, false

	for i := 0; i < len(template); i++ {
		c := template[i]
		switch c {
		case '{':
			if i+1 < len(template) && template[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}

			end := strings.IndexByte(template[i+1:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unclosed '{' at offset %d", ErrInvalidTemplate, i)
			}
			field := template[i+1 : i+1+end]
			i += end + 1

			var index int
			if field == "" {
				if manual {
					return "", fmt.Errorf("%w: cannot mix {} and {N} placeholders", ErrInvalidTemplate)
				}
				auto = true
				index = next
				next++
			} else {
				n, err := strconv.Atoi(field)
				if err != nil || n < 0 {
					return "", fmt.Errorf("%w: unsupported placeholder {%s}", ErrInvalidTemplate, field)
				}
				if auto {
					return "", fmt.Errorf("%w: cannot mix {} and {N} placeholders", ErrInvalidTemplate)
				}
				manual = true
				index = n
			}

			if index >= len(args) {
				return "", fmt.Errorf("%w: placeholder %d has no argument (%d given)", ErrInvalidTemplate, index, len(args))
			}
			b.WriteString(Value(args[index]))

		case '}':
			if i+1 < len(template) && template[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return "", fmt.Errorf("%w: single '}' at offset %d", ErrInvalidTemplate, i)

		default:
			b.WriteByte(c)
		}
	}

	return b.String(), nil
}

// Value renders one argument. Strings are inserted as-is and string lists
// render as ['a', 'b'], the form the default prompts were written against.
func Value(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case []string:
		return List(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// List renders a list of strings as ['a', 'b']. An empty list renders as [].
func List(items []string) string {
	var b strings.Builder
	b.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quote(item))
	}
	b.WriteByte(']')
	return b.String()
}

// quote single-quotes s, switching to double quotes when s contains a
// single quote but no double quote.
func quote(s string) string {
	q := byte('\'')
	if strings.IndexByte(s, '\'') >= 0 && strings.IndexByte(s, '"') < 0 {
		q = '"'
	}

	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(q)
	for _, r := range s {
		switch {
		case r == '\\':
			b.WriteString(`\\`)
		case r == rune(q):
			b.WriteByte('\\')
			b.WriteRune(r)
		case r == '\n':
			b.WriteString(`\n`)
		case r == '\r':
			b.WriteString(`\r`)
		case r == '\t':
			b.WriteString(`\t`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte(q)
	return b.String()
}
