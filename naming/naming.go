// Package naming generates disambiguated names for colliding storage items.
//
// A name may carry a parenthesized sequence number ("report(3)"). Next
// produces the following candidate in that sequence and NextFileName does the
// same for file names while keeping their extension in place:
//
//	naming.Next("backup")          // "backup(2)"
//	naming.Next("backup(9)")       // "backup(10)"
//	naming.NextFileName("a.txt")   // "a(2).txt"
package naming

import (
	"math/big"
	"strings"
)

// Next returns the name following current in its parenthesized sequence.
//
// A name ending in "(digits)" has its number incremented. Any other name,
// including one whose trailing parentheses do not enclose only digits, gets
// "(2)" appended.
func Next(current string) string {
	n := len(current)
	if n < 2 || current[n-1] != ')' || !isDigit(current[n-2]) {
		return current + "(2)"
	}

	start := n - 2
	for start > 0 && isDigit(current[start-1]) {
		start--
	}
	open := start - 1
	if open < 0 || current[open] != '(' {
		return current + "(2)"
	}

	seq, ok := new(big.Int).SetString(current[start:n-1], 10)
	if !ok {
		return current + "(2)"
	}
	seq.Add(seq, big.NewInt(1))

	return current[:open] + "(" + seq.String() + ")"
}

// Split separates a file name into its pure name and extension. The extension
// starts at the last '.' and includes it; it is empty when name has no '.'.
func Split(name string) (pure, ext string) {
	i := strings.LastIndexByte(name, '.')
	if i < 0 {
		return name, ""
	}
	return name[:i], name[i:]
}

// NextFileName returns the next candidate for a file name. The sequence is
// applied to the pure name and the extension re-appended, unless the
// extension itself ends in a "(digits)" group (as in "data.txt(2)"), in which
// case the whole name is sequenced.
func NextFileName(name string) string {
	pure, ext := Split(name)
	if ext == "" || hasSequence(ext) {
		return Next(name)
	}
	return Next(pure) + ext
}

// hasSequence reports whether s ends with "(digits)".
func hasSequence(s string) bool {
	if !strings.HasSuffix(s, ")") {
		return false
	}
	open := strings.LastIndexByte(s, '(')
	if open < 0 || open+1 >= len(s)-1 {
		return false
	}
	for i := open + 1; i < len(s)-1; i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
