package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindsStableOrder(t *testing.T) {
	kinds := Kinds()
	require.Equal(t, int(kindCount), len(kinds))
	assert.Equal(t, AllPermissions, kinds[0])

	// Every kind carries complete display metadata and a canonical statement.
	for _, k := range kinds {
		assert.NotEmpty(t, k.Name())
		assert.NotEmpty(t, k.Description())
		assert.NotEmpty(t, k.Statement())
	}

	// Declaration order is the sort order; two calls agree.
	assert.Equal(t, kinds, Kinds())
}

func TestMatchStatement(t *testing.T) {
	kind, ok := MatchStatement(`permission java.net.SocketPermission "*", "connect";`)
	require.True(t, ok)
	assert.Equal(t, NetworkAccess, kind)

	// Surrounding and interior whitespace is irrelevant.
	kind, ok = MatchStatement("  permission   java.net.SocketPermission \t \"*\", \"connect\"; ")
	require.True(t, ok)
	assert.Equal(t, NetworkAccess, kind)
}

func TestMatchStatementCaseSensitive(t *testing.T) {
	_, ok := MatchStatement(`Permission java.net.SocketPermission "*", "connect";`)
	assert.False(t, ok)
}

func TestMatchStatementNoMatch(t *testing.T) {
	for _, line := range []string{
		"",
		"};",
		`permission some.Unrecognized "x";`,
		"// permission java.security.AllPermission;",
	} {
		_, ok := MatchStatement(line)
		assert.False(t, ok, "line %q", line)
	}
}

func TestKindByName(t *testing.T) {
	kind, ok := KindByName("network access")
	require.True(t, ok)
	assert.Equal(t, NetworkAccess, kind)

	_, ok = KindByName("no such permission")
	assert.False(t, ok)
}

func TestCanonicalStatements(t *testing.T) {
	assert.Equal(t, `permission java.net.SocketPermission "*", "connect";`, NetworkAccess.Statement())
	assert.Equal(t, `permission java.security.AllPermission;`, AllPermissions.Statement())

	// Statements are distinct; otherwise first-match-wins would shadow kinds.
	seen := map[string]PermissionKind{}
	for _, k := range Kinds() {
		prev, dup := seen[k.Statement()]
		require.False(t, dup, "%s and %s share a statement", prev, k)
		seen[k.Statement()] = k
	}
}
