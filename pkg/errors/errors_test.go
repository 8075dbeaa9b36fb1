package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/flox/flox-sub009/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	err := errors.New(errors.ErrLockInvalid, "lock has no packages")

	assert.Equal(t, errors.ErrLockInvalid, err.Code)
	assert.NotNil(t, err.Details)
	assert.Equal(t, "[LOCK_INVALID] lock has no packages", err.Error())
}

func TestNewf(t *testing.T) {
	err := errors.Newf(errors.ErrDirCreate, "cannot create %s with mode %o", "bin", 0755)

	assert.Equal(t, "cannot create bin with mode 755", err.Message)
	assert.Equal(t, "[DIR_CREATE] cannot create bin with mode 755", err.Error())
}

func TestWrap(t *testing.T) {
	base := stderrors.New("permission denied")

	err := errors.Wrapf(base, errors.ErrSymlinkCreate, "failed to link %s", "bin/hello")
	require.NotNil(t, err)
	assert.Same(t, base, err.Unwrap())
	assert.Equal(t, "[SYMLINK_CREATE] failed to link bin/hello: permission denied", err.Error())

	assert.Nil(t, errors.Wrap(nil, errors.ErrInternal, "nothing"))
	assert.Nil(t, errors.Wrapf(nil, errors.ErrInternal, "nothing %d", 1))
}

func TestDetails(t *testing.T) {
	err := errors.New(errors.ErrRankReserved, "reserved").
		WithDetail("rank", 1200).
		WithDetails(map[string]interface{}{"floor": 1000, "source": "/store/a"})

	assert.Equal(t, map[string]interface{}{
		"rank":   1200,
		"floor":  1000,
		"source": "/store/a",
	}, errors.GetErrorDetails(fmt.Errorf("compose: %w", err)))

	bare := &errors.Error{Code: errors.ErrInternal}
	bare.WithDetail("k", "v")
	assert.Equal(t, "v", bare.Details["k"])

	assert.Nil(t, errors.GetErrorDetails(stderrors.New("plain")))
}

func TestIs(t *testing.T) {
	notFound := errors.New(errors.ErrNotFound, "one")

	assert.True(t, stderrors.Is(notFound, errors.New(errors.ErrNotFound, "two")))
	assert.False(t, stderrors.Is(notFound, errors.New(errors.ErrInternal, "three")))
	assert.False(t, notFound.Is(stderrors.New("plain")))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want errors.ErrorCode
	}{
		{"coded", errors.New(errors.ErrLockParse, "bad"), errors.ErrLockParse},
		{"wrapped by fmt", fmt.Errorf("ctx: %w", errors.New(errors.ErrPublish, "bad")), errors.ErrPublish},
		{"outermost wins", errors.Wrap(errors.New(errors.ErrFileAccess, "io"), errors.ErrConfigLoad, "cfg"), errors.ErrConfigLoad},
		{"plain", stderrors.New("plain"), errors.ErrUnknown},
		{"nil", nil, errors.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.GetErrorCode(tt.err))
			assert.True(t, errors.IsErrorCode(tt.err, tt.want))
		})
	}
}

func TestErrorChaining(t *testing.T) {
	rootCause := stderrors.New("root cause")
	fileErr := errors.Wrap(rootCause, errors.ErrFileAccess, "cannot read manifest")
	lockErr := errors.Wrap(fileErr, errors.ErrLockLoad, "failed to load lock")

	assert.True(t, errors.IsErrorCode(lockErr, errors.ErrLockLoad))
	assert.True(t, errors.IsErrorCode(lockErr.Unwrap(), errors.ErrFileAccess))
	assert.True(t, stderrors.Is(lockErr, rootCause))
}

type codedConflict struct{}

func (codedConflict) Error() string { return "conflict" }
func (codedConflict) ErrorCode() errors.ErrorCode { return errors.ErrPriorityConflict }

func TestCoderInterface(t *testing.T) {
	wrapped := fmt.Errorf("composing: %w", codedConflict{})

	assert.Equal(t, errors.ErrPriorityConflict, errors.GetErrorCode(wrapped))
	assert.True(t, errors.New(errors.ErrPriorityConflict, "clash").Is(codedConflict{}))
	assert.Nil(t, errors.GetErrorDetails(wrapped))
}
