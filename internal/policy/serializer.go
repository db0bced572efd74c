package policy

import (
	"strings"
	"time"
)

const (
	// AutogeneratedNotice marks saved files as machine-generated. Manual
	// edits are overwritten on the next save.
	AutogeneratedNotice = "/* DO NOT MODIFY! AUTO-GENERATED */"

	timestampLayout = "2006-01-02 15:04:05"
	indent          = "    "
)

// Serializer renders a Model to canonical policy text. Given a fixed clock
// the output is deterministic: codebases in insertion order, recognized
// permissions in catalog order, custom statements in insertion order.
// Disabled permissions, removed codebases, and source-file comments never
// appear.
type Serializer struct {
	now func() time.Time
}

func NewSerializer() *Serializer {
	return &Serializer{now: time.Now}
}

// NewSerializerAt fixes the generation timestamp. Used by tests.
func NewSerializerAt(now func() time.Time) *Serializer {
	return &Serializer{now: now}
}

func (s *Serializer) Render(m *Model) string {
	var b strings.Builder
	b.WriteString(AutogeneratedNotice)
	b.WriteString("\n")
	b.WriteString("/* Generated by grantedit at ")
	b.WriteString(s.now().Format(timestampLayout))
	b.WriteString(" */\n")
	for _, codebase := range m.order {
		e := m.entries[codebase]
		if codebase == GlobalCodebase {
			b.WriteString("grant {\n")
		} else {
			b.WriteString(`grant codeBase "`)
			b.WriteString(codebase)
			b.WriteString("\" {\n")
		}
		for _, kind := range Kinds() {
			if e.permissions[kind] {
				b.WriteString(indent)
				b.WriteString(kind.Statement())
				b.WriteString("\n")
			}
		}
		for _, custom := range e.custom {
			b.WriteString(indent)
			b.WriteString(custom.String())
			b.WriteString("\n")
		}
		b.WriteString("};\n")
	}
	return b.String()
}
