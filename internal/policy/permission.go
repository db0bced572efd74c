package policy

import "strings"

// PermissionKind enumerates the permissions the editor can display and
// toggle. Declaration order is the stable sort order used for checkbox
// layout and for serialization.
type PermissionKind int

const (
	AllPermissions PermissionKind = iota
	NetworkAccess
	ReadLocalFiles
	WriteLocalFiles
	DeleteLocalFiles
	ReadTmpFiles
	WriteTmpFiles
	DeleteTmpFiles
	ExecCommands
	GetEnv
	ReadSystemProperties
	WriteSystemProperties
	Reflection
	AllAWT
	Clipboard
	PlayAudio
	RecordAudio
	Print

	kindCount // sentinel, not a permission
)

type kindSpec struct {
	name        string
	description string
	statement   string
}

// The statement field is the canonical policy-grammar text for the kind: it
// is matched (whitespace-insensitively) on parse and emitted verbatim on
// save, regardless of how the source file spelled it.
var kindSpecs = [kindCount]kindSpec{
	AllPermissions: {
		name:        "All permissions",
		description: "Grant every permission the runtime can check. Overrides every other setting.",
		statement:   `permission java.security.AllPermission;`,
	},
	NetworkAccess: {
		name:        "Network access",
		description: "Open outbound socket connections to any host.",
		statement:   `permission java.net.SocketPermission "*", "connect";`,
	},
	ReadLocalFiles: {
		name:        "Read user files",
		description: "Read files under the user's home directory.",
		statement:   `permission java.io.FilePermission "${user.home}${/}-", "read";`,
	},
	WriteLocalFiles: {
		name:        "Write user files",
		description: "Write files under the user's home directory.",
		statement:   `permission java.io.FilePermission "${user.home}${/}-", "write";`,
	},
	DeleteLocalFiles: {
		name:        "Delete user files",
		description: "Delete files under the user's home directory.",
		statement:   `permission java.io.FilePermission "${user.home}${/}-", "delete";`,
	},
	ReadTmpFiles: {
		name:        "Read temp files",
		description: "Read files under the system temporary directory.",
		statement:   `permission java.io.FilePermission "${java.io.tmpdir}${/}-", "read";`,
	},
	WriteTmpFiles: {
		name:        "Write temp files",
		description: "Write files under the system temporary directory.",
		statement:   `permission java.io.FilePermission "${java.io.tmpdir}${/}-", "write";`,
	},
	DeleteTmpFiles: {
		name:        "Delete temp files",
		description: "Delete files under the system temporary directory.",
		statement:   `permission java.io.FilePermission "${java.io.tmpdir}${/}-", "delete";`,
	},
	ExecCommands: {
		name:        "Execute commands",
		description: "Execute arbitrary programs on the local system.",
		statement:   `permission java.io.FilePermission "<<ALL FILES>>", "execute";`,
	},
	GetEnv: {
		name:        "Environment access",
		description: "Read environment variables.",
		statement:   `permission java.lang.RuntimePermission "getenv.*";`,
	},
	ReadSystemProperties: {
		name:        "Read system properties",
		description: "Read system properties such as user.name.",
		statement:   `permission java.util.PropertyPermission "*", "read";`,
	},
	WriteSystemProperties: {
		name:        "Write system properties",
		description: "Modify system properties.",
		statement:   `permission java.util.PropertyPermission "*", "write";`,
	},
	Reflection: {
		name:        "Reflection",
		description: "Suppress access checks via reflection.",
		statement:   `permission java.lang.reflect.ReflectPermission "suppressAccessChecks";`,
	},
	AllAWT: {
		name:        "AWT access",
		description: "Full access to AWT facilities.",
		statement:   `permission java.awt.AWTPermission "*";`,
	},
	Clipboard: {
		name:        "Clipboard access",
		description: "Read from and write to the system clipboard.",
		statement:   `permission java.awt.AWTPermission "accessClipboard";`,
	},
	PlayAudio: {
		name:        "Play audio",
		description: "Play audio through the sound system.",
		statement:   `permission javax.sound.sampled.AudioPermission "play";`,
	},
	RecordAudio: {
		name:        "Record audio",
		description: "Record audio from the sound system.",
		statement:   `permission javax.sound.sampled.AudioPermission "record";`,
	},
	Print: {
		name:        "Print",
		description: "Queue print jobs.",
		statement:   `permission java.lang.RuntimePermission "queuePrintJob";`,
	},
}

// Kinds returns every permission kind in declaration order.
func Kinds() []PermissionKind {
	kinds := make([]PermissionKind, 0, kindCount)
	for k := PermissionKind(0); k < kindCount; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k PermissionKind) valid() bool {
	return k >= 0 && k < kindCount
}

func (k PermissionKind) Name() string {
	if !k.valid() {
		return ""
	}
	return kindSpecs[k].name
}

func (k PermissionKind) Description() string {
	if !k.valid() {
		return ""
	}
	return kindSpecs[k].description
}

// Statement returns the canonical policy-grammar text emitted for the kind
// on save.
func (k PermissionKind) Statement() string {
	if !k.valid() {
		return ""
	}
	return kindSpecs[k].statement
}

func (k PermissionKind) String() string {
	return k.Name()
}

// KindByName resolves a kind from its display name, case-insensitively.
func KindByName(name string) (PermissionKind, bool) {
	for _, k := range Kinds() {
		if strings.EqualFold(k.Name(), name) {
			return k, true
		}
	}
	return 0, false
}

// MatchStatement matches a single input line against the catalog in
// declaration order. Comparison collapses whitespace but is case-sensitive.
// No match is a normal outcome: the line is simply not a recognized
// permission.
func MatchStatement(line string) (PermissionKind, bool) {
	normalized := normalizeWhitespace(line)
	for _, k := range Kinds() {
		if normalized == kindSpecs[k].statement {
			return k, true
		}
	}
	return 0, false
}

// normalizeWhitespace trims the line and collapses interior whitespace runs
// to single spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
