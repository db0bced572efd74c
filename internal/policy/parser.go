package policy

import "regexp"

var (
	// Platform-independent line splitting: any run of \r and/or \n.
	lineSplitPattern = regexp.MustCompile(`[\r\n]+`)

	// Matches eg `grant {` as well as `grant codeBase "http://redhat.com" {`.
	// Whole-line match only: block-open syntax mixed with other content on
	// the same line is not recognized and the line is discarded.
	openBlockPattern = regexp.MustCompile(`^grant\s*"?\s*(?:codeBase)?\s*"?([^"\s]*)"?\s*\{$`)

	closeBlockPattern = regexp.MustCompile(`^\s*\};\s*$`)

	// Comment handling is best-effort and line-scoped. A block comment
	// sharing a line with functional text is not excised; this mirrors the
	// original editor and is documented behavior, not a bug to fix here.
	blockCommentOpenPattern  = regexp.MustCompile(`^\s*/\*`)
	blockCommentClosePattern = regexp.MustCompile(`\*/`)
	lineCommentPattern       = regexp.MustCompile(`^\s*//`)
)

// Parse builds a Model from raw policy file text. Malformed content never
// fails: the parser is deliberately forgiving and lossy for anything beyond
// the simplest single-codebase, no-principal, no-signer grant block. Richer
// constructs are discarded so a later save cannot misrepresent content the
// editor has no way to display.
func Parse(path, text string) *Model {
	m := NewModel(path)
	codebase := GlobalCodebase
	for _, line := range lineSplitPattern.Split(text, -1) {
		if match := openBlockPattern.FindStringSubmatch(line); match != nil {
			codebase = match[1]
			m.ensureEntry(codebase)
			continue
		}
		if closeBlockPattern.MatchString(line) {
			// Entries keep accumulating on the current codebase until the
			// next block-open line.
			continue
		}
		if blockCommentOpenPattern.MatchString(line) {
			continue
		}
		if blockCommentClosePattern.MatchString(line) || lineCommentPattern.MatchString(line) {
			continue
		}
		if kind, ok := MatchStatement(line); ok {
			m.entries[codebase].permissions[kind] = true
			continue
		}
		if custom, ok := ParseCustom(line); ok {
			m.entries[codebase].addCustom(custom)
			continue
		}
		// Silently discarded: neither model content nor an error.
	}
	return m
}
