package seamcarve

import (
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError(t *testing.T) {
	assert := assert.New(t)

	err := newError(InvalidParameter, "bad count %d", 3)
	assert.Equal("invalid parameter: bad count 3", err.Error())
	assert.Nil(err.Unwrap())

	wrapped := wrapError(DecodeFailure, io.ErrUnexpectedEOF, "truncated")
	assert.Equal("decode failure: truncated: unexpected EOF", wrapped.Error())
	assert.ErrorIs(wrapped, io.ErrUnexpectedEOF)

	outer := fmt.Errorf("carve: %w", wrapped)
	assert.True(IsKind(outer, DecodeFailure))
	assert.False(IsKind(outer, InvalidParameter))

	var e *Error
	assert.True(errors.As(outer, &e))
	assert.Equal(DecodeFailure, e.Kind)

	assert.False(IsKind(errors.New("plain"), DecodeFailure))
	assert.False(IsKind(nil, DecodeFailure))
}
