package policy

import "strings"

const (
	statementKeyword    = "permission"
	statementTerminator = ";"
)

// CustomPermission preserves one permission statement the catalog does not
// recognize. The normalized text (terminator included) is the identity:
// syntactically different spellings of the same statement collapse to a
// single set member.
type CustomPermission struct {
	Text string
}

// ParseCustom accepts any line shaped like a permission statement: after
// normalization it must begin with the permission keyword and end with the
// statement terminator. Anything else (comments, braces, noise) yields
// ok == false, which is not an error — the caller just skips the line.
func ParseCustom(line string) (CustomPermission, bool) {
	normalized := normalizeWhitespace(line)
	if !strings.HasPrefix(normalized, statementKeyword+" ") {
		return CustomPermission{}, false
	}
	if !strings.HasSuffix(normalized, statementTerminator) {
		return CustomPermission{}, false
	}
	return CustomPermission{Text: normalized}, true
}

// String renders the statement for inclusion verbatim in a grant block.
func (p CustomPermission) String() string {
	return p.Text
}
