package policy

import (
	"fmt"
	"net/url"

	"github.com/grantedit/grantedit/pkg/cerr"
)

// GlobalCodebase is the key of the distinguished entry matching unscoped
// grant blocks. It always exists and cannot be removed.
const GlobalCodebase = ""

type entry struct {
	permissions map[PermissionKind]bool
	custom      []CustomPermission
	customSeen  map[string]struct{}
}

func newEntry() *entry {
	permissions := make(map[PermissionKind]bool, kindCount)
	for _, k := range Kinds() {
		permissions[k] = false
	}
	return &entry{
		permissions: permissions,
		customSeen:  make(map[string]struct{}),
	}
}

func (e *entry) addCustom(p CustomPermission) bool {
	if _, ok := e.customSeen[p.Text]; ok {
		return false
	}
	e.customSeen[p.Text] = struct{}{}
	e.custom = append(e.custom, p)
	return true
}

// Model is the in-memory representation of one policy file: an
// insertion-ordered collection of codebase entries, each holding a total
// recognized-permission mapping and a set of custom statements. The model
// has no internal synchronization; callers serialize access, including
// against in-flight background load/save operations.
type Model struct {
	path    string
	order   []string
	entries map[string]*entry
	dirty   bool
}

// NewModel creates an empty model for path. The global entry exists from
// the start.
func NewModel(path string) *Model {
	m := &Model{
		path:    path,
		entries: make(map[string]*entry),
	}
	m.ensureEntry(GlobalCodebase)
	return m
}

// ensureEntry creates a fully-populated entry for codebase if it does not
// exist yet. Used by the parser and by AddCodebase.
func (m *Model) ensureEntry(codebase string) *entry {
	if e, ok := m.entries[codebase]; ok {
		return e
	}
	e := newEntry()
	m.entries[codebase] = e
	m.order = append(m.order, codebase)
	return e
}

func (m *Model) Path() string {
	return m.path
}

// Codebases returns the codebase keys in insertion order. The global entry
// is always present and always first.
func (m *Model) Codebases() []string {
	out := make([]string, len(m.order))
	copy(out, m.order)
	return out
}

func (m *Model) Has(codebase string) bool {
	_, ok := m.entries[codebase]
	return ok
}

// PermissionsFor returns a copy of the permission mapping for codebase. The
// mapping is total over the catalog. ok is false for unknown codebases.
func (m *Model) PermissionsFor(codebase string) (map[PermissionKind]bool, bool) {
	e, ok := m.entries[codebase]
	if !ok {
		return nil, false
	}
	out := make(map[PermissionKind]bool, len(e.permissions))
	for k, v := range e.permissions {
		out[k] = v
	}
	return out, true
}

// CustomPermissionsFor returns a copy of the custom statements for codebase
// in insertion order.
func (m *Model) CustomPermissionsFor(codebase string) []CustomPermission {
	e, ok := m.entries[codebase]
	if !ok {
		return nil
	}
	out := make([]CustomPermission, len(e.custom))
	copy(out, e.custom)
	return out
}

// SetPermission toggles one recognized permission for codebase and reports
// whether the model changed. Unknown codebases are left untouched.
func (m *Model) SetPermission(codebase string, kind PermissionKind, enabled bool) bool {
	e, ok := m.entries[codebase]
	if !ok || !kind.valid() {
		return false
	}
	if e.permissions[kind] == enabled {
		return false
	}
	e.permissions[kind] = enabled
	m.dirty = true
	return true
}

// AddCodebase adds an entry for the given URL. The URL must carry a scheme
// and a host; anything else fails with MalformedPath. Adding an existing
// codebase is a no-op.
func (m *Model) AddCodebase(rawURL string) error {
	if rawURL == GlobalCodebase {
		return nil
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return cerr.NewError(cerr.MalformedPath, fmt.Sprintf("invalid codebase URL %q", rawURL), err)
	}
	if m.Has(rawURL) {
		return nil
	}
	m.ensureEntry(rawURL)
	m.dirty = true
	return nil
}

// RemoveCodebase removes an entry and reports whether the model changed.
// The global entry and unknown codebases are never removed.
func (m *Model) RemoveCodebase(codebase string) bool {
	if codebase == GlobalCodebase {
		return false
	}
	if _, ok := m.entries[codebase]; !ok {
		return false
	}
	delete(m.entries, codebase)
	for i, key := range m.order {
		if key == codebase {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	m.dirty = true
	return true
}

// SetCustomPermissions replaces the custom statement set for codebase,
// collapsing duplicates while keeping first-occurrence order. Reports
// whether the model changed.
func (m *Model) SetCustomPermissions(codebase string, perms []CustomPermission) bool {
	e, ok := m.entries[codebase]
	if !ok {
		return false
	}
	replacement := newEntry()
	for _, p := range perms {
		replacement.addCustom(p)
	}
	if equalCustom(e.custom, replacement.custom) {
		return false
	}
	e.custom = replacement.custom
	e.customSeen = replacement.customSeen
	m.dirty = true
	return true
}

// Dirty reports whether the model has unsaved mutations.
func (m *Model) Dirty() bool {
	return m.dirty
}

// MarkClean clears the dirty flag. Called after a successful save.
func (m *Model) MarkClean() {
	m.dirty = false
}

// Equal compares two models by entry content and codebase order. The dirty
// flag and originating path do not participate.
func (m *Model) Equal(other *Model) bool {
	if other == nil || len(m.order) != len(other.order) {
		return false
	}
	for i, codebase := range m.order {
		if other.order[i] != codebase {
			return false
		}
		a, b := m.entries[codebase], other.entries[codebase]
		for _, k := range Kinds() {
			if a.permissions[k] != b.permissions[k] {
				return false
			}
		}
		if !equalCustom(a.custom, b.custom) {
			return false
		}
	}
	return true
}

func equalCustom(a, b []CustomPermission) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Text != b[i].Text {
			return false
		}
	}
	return true
}
