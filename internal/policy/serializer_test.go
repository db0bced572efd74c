package policy

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 1, 12, 30, 0, 0, time.UTC)
}

func TestRenderShape(t *testing.T) {
	m := NewModel("")
	m.SetPermission(GlobalCodebase, NetworkAccess, true)
	require.NoError(t, m.AddCodebase("https://a.test"))
	m.SetPermission("https://a.test", ReadLocalFiles, true)
	m.SetCustomPermissions("https://a.test", []CustomPermission{
		{Text: `permission some.Unrecognized "x";`},
	})

	out := NewSerializerAt(fixedClock).Render(m)

	assert.Equal(t, "/* DO NOT MODIFY! AUTO-GENERATED */\n"+
		"/* Generated by grantedit at 2024-03-01 12:30:00 */\n"+
		"grant {\n"+
		"    permission java.net.SocketPermission \"*\", \"connect\";\n"+
		"};\n"+
		"grant codeBase \"https://a.test\" {\n"+
		"    permission java.io.FilePermission \"${user.home}${/}-\", \"read\";\n"+
		"    permission some.Unrecognized \"x\";\n"+
		"};\n", out)
}

func TestRenderOmitsDisabledAndRemoved(t *testing.T) {
	m := NewModel("")
	require.NoError(t, m.AddCodebase("https://gone.test"))
	m.SetPermission("https://gone.test", AllPermissions, true)
	m.RemoveCodebase("https://gone.test")

	out := NewSerializerAt(fixedClock).Render(m)
	assert.NotContains(t, out, "gone.test")
	assert.NotContains(t, out, "AllPermission")
}

func TestRenderPermissionsInCatalogOrder(t *testing.T) {
	m := NewModel("")
	// Enable in reverse catalog order; output must follow catalog order.
	m.SetPermission(GlobalCodebase, Reflection, true)
	m.SetPermission(GlobalCodebase, NetworkAccess, true)

	out := NewSerializerAt(fixedClock).Render(m)
	network := strings.Index(out, NetworkAccess.Statement())
	reflection := strings.Index(out, Reflection.Statement())
	require.GreaterOrEqual(t, network, 0)
	require.GreaterOrEqual(t, reflection, 0)
	assert.Less(t, network, reflection)
}

func TestRoundTrip(t *testing.T) {
	m := NewModel("")
	require.NoError(t, m.AddCodebase("https://a.test"))
	m.SetPermission("https://a.test", NetworkAccess, true)

	reparsed := Parse("", NewSerializerAt(fixedClock).Render(m))
	assert.True(t, m.Equal(reparsed))
}

func TestRoundTripPreservesCustomAndOrder(t *testing.T) {
	m := NewModel("")
	require.NoError(t, m.AddCodebase("https://b.test"))
	require.NoError(t, m.AddCodebase("https://a.test"))
	m.SetPermission(GlobalCodebase, AllPermissions, true)
	m.SetCustomPermissions("https://b.test", []CustomPermission{
		{Text: `permission some.Thing "one";`},
		{Text: `permission some.Thing "two";`},
	})

	reparsed := Parse("", NewSerializerAt(fixedClock).Render(m))
	assert.True(t, m.Equal(reparsed))
	assert.Equal(t, m.Codebases(), reparsed.Codebases())
}

func TestRenderIdempotent(t *testing.T) {
	s := NewSerializerAt(fixedClock)
	m := NewModel("")
	require.NoError(t, m.AddCodebase("http://example.com"))
	m.SetPermission("http://example.com", ExecCommands, true)
	m.SetCustomPermissions(GlobalCodebase, []CustomPermission{
		{Text: `permission custom.Perm "v", "w";`},
	})

	once := s.Render(m)
	twice := s.Render(Parse("", once))
	assert.Equal(t, once, twice)
}
