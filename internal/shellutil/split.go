package shellutil

import (
	"errors"
	"fmt"
)

// ErrUnterminatedQuote reports a command string with an open quote.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Split tokenizes a command string with shell-like quoting rules: words
// separated by unquoted whitespace, single quotes literal, double quotes
// honoring backslash escapes for \\ and \", bare backslashes escaping the
// next byte. It does not expand variables or globs.
func Split(command string) ([]string, error) {
	var (
		words   []string
		current []byte
		inWord  bool
	)
	i := 0
	for i < len(command) {
		c := command[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n':
			if inWord {
				words = append(words, string(current))
				current = current[:0]
				inWord = false
			}
			i++
		case c == '\'':
			inWord = true
			end := i + 1
			for end < len(command) && command[end] != '\'' {
				end++
			}
			if end >= len(command) {
				return nil, fmt.Errorf("%w: %q", ErrUnterminatedQuote, command)
			}
			current = append(current, command[i+1:end]...)
			i = end + 1
		case c == '"':
			inWord = true
			i++
			for {
				if i >= len(command) {
					return nil, fmt.Errorf("%w: %q", ErrUnterminatedQuote, command)
				}
				if command[i] == '"' {
					i++
					break
				}
				if command[i] == '\\' && i+1 < len(command) && (command[i+1] == '"' || command[i+1] == '\\') {
					current = append(current, command[i+1])
					i += 2
					continue
				}
				current = append(current, command[i])
				i++
			}
		case c == '\\':
			inWord = true
			if i+1 >= len(command) {
				return nil, fmt.Errorf("%w: trailing backslash in %q", ErrUnterminatedQuote, command)
			}
			current = append(current, command[i+1])
			i += 2
		default:
			inWord = true
			current = append(current, c)
			i++
		}
	}
	if inWord {
		words = append(words, string(current))
	}
	return words, nil
}
