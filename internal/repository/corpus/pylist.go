package corpus

import (
	"fmt"
	"strconv"
	"strings"
)

// The dataset serializes list columns as Python literals, e.g.
// ['weeknight', '60-minutes-or-less'] or [51.5, 0.0, 13.0]. These parsers
// cover exactly that shape: one flat list of quoted strings or numbers.

// parseStringList parses a Python list literal of quoted strings.
func parseStringList(s string) ([]string, error) {
	body, err := listBody(s)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return []string{}, nil
	}

	var items []string
	for i := 0; i < len(body); {
		quote := body[i]
		if quote != '\'' && quote != '"' {
			return nil, fmt.Errorf("expected quote at offset %d", i)
		}

		var sb strings.Builder
		i++
		for {
			if i >= len(body) {
				return nil, fmt.Errorf("unterminated string")
			}
			c := body[i]
			if c == '\\' && i+1 < len(body) {
				sb.WriteByte(body[i+1])
				i += 2
				continue
			}
			if c == quote {
				i++
				break
			}
			sb.WriteByte(c)
			i++
		}
		items = append(items, sb.String())

		// Skip the separator up to the next element.
		for i < len(body) && (body[i] == ',' || body[i] == ' ') {
			i++
		}
	}
	return items, nil
}

// parseFloatList parses a Python list literal of numbers.
func parseFloatList(s string) ([]float64, error) {
	body, err := listBody(s)
	if err != nil {
		return nil, err
	}
	if body == "" {
		return []float64{}, nil
	}

	parts := strings.Split(body, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("parse number %q: %w", p, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func listBody(s string) (string, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return "", fmt.Errorf("not a list literal: %q", s)
	}
	return strings.TrimSpace(s[1 : len(s)-1]), nil
}
