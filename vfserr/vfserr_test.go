package vfserr_test

import (
	"errors"
	"testing"

	"github.com/PipeG09/UM-vfs-base-2025/vfserr"
	"github.com/stretchr/testify/assert"
)

func TestWithMessage(t *testing.T) {
	err := vfserr.WithMessage(vfserr.NotFound, "dst.txt")
	assert.Equal(t, "NotFound: dst.txt", err.Error())
	assert.True(t, errors.Is(err, vfserr.New(vfserr.NotFound)))
	assert.False(t, errors.Is(err, vfserr.New(vfserr.Exists)))
}

func TestWrap(t *testing.T) {
	original := errors.New("short write")
	err := vfserr.Wrap(vfserr.IO, original)
	assert.ErrorIs(t, err, original)
	assert.Contains(t, err.Error(), "short write")
}
