package cerr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grantedit/grantedit/pkg/storage"
)

func TestCodeString(t *testing.T) {
	assert.Equal(t, "NotFound", NotFound.String())
	assert.Equal(t, "LockUnavailable", LockUnavailable.String())
	assert.Equal(t, "Code(99)", Code(99).String())
}

func TestNewErrorStackCapture(t *testing.T) {
	severe := NewError(IOFailure, "disk on fire", errors.New("boom"))
	assert.NotEmpty(t, severe.Stack)

	benign := NewError(NotFound, "no such file", nil)
	assert.Empty(t, benign.Stack)
}

func TestErrorFormatting(t *testing.T) {
	err := NewError(PermissionDenied, "cannot open", errors.New("eacces"))
	assert.Equal(t, "[PermissionDenied] cannot open: eacces", err.Error())

	bare := NewError(NotFound, "missing", nil)
	assert.Equal(t, "[NotFound] missing", bare.Error())
}

func TestIsCodeAndCodeOf(t *testing.T) {
	err := NewError(LockUnavailable, "locked", nil)
	wrapped := fmt.Errorf("outer: %w", err)

	assert.True(t, IsCode(wrapped, LockUnavailable))
	assert.False(t, IsCode(wrapped, NotFound))
	assert.Equal(t, LockUnavailable, CodeOf(wrapped))
	assert.Equal(t, Unknown, CodeOf(errors.New("plain")))
	assert.Equal(t, OK, CodeOf(nil))
}

func TestWrapReadError(t *testing.T) {
	cases := []struct {
		underlying error
		want       Code
	}{
		{fmt.Errorf("p: %w", storage.ErrNotFound), NotFound},
		{fmt.Errorf("p: %w", storage.ErrPermissionDenied), PermissionDenied},
		{fmt.Errorf("p: %w", storage.ErrLockUnavailable), LockUnavailable},
		{errors.New("io weirdness"), IOFailure},
	}
	for _, tc := range cases {
		err := WrapReadError("/some/file.policy", tc.underlying)
		require.Error(t, err)
		assert.True(t, IsCode(err, tc.want), "want %s for %v", tc.want, tc.underlying)
	}
}

func TestWrapWriteError(t *testing.T) {
	err := WrapWriteError("/some/file.policy", errors.New("short write"))
	assert.True(t, IsCode(err, IOFailure))

	err = WrapWriteError("/some/file.policy", fmt.Errorf("p: %w", storage.ErrPermissionDenied))
	assert.True(t, IsCode(err, PermissionDenied))
}
