// Package shellutil centralizes shell argument quoting, command string
// tokenization, and external process execution. Every argument that crosses
// the shell boundary goes through Quote; nothing in this repository builds
// a command line by naive string concatenation.
package shellutil

import "strings"

// safeChars are the bytes that never need quoting.
const safeChars = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789@%+=:,./-_"

// Quote returns value quoted for safe use as a single shell word. Empty
// values quote to ''. The single-quote escape follows the POSIX idiom:
// 'it'"'"'s' for "it's".
func Quote(value string) string {
	if value == "" {
		return "''"
	}
	needsQuote := false
	for i := 0; i < len(value); i++ {
		if !strings.ContainsRune(safeChars, rune(value[i])) {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return value
	}
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

// QuoteAll quotes each argument and joins them with single spaces.
func QuoteAll(args []string) string {
	quoted := make([]string, len(args))
	for i, arg := range args {
		quoted[i] = Quote(arg)
	}
	return strings.Join(quoted, " ")
}
