package errors

import (
	stderrors "errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrap_PreservesCode(t *testing.T) {
	base := MissingInputFile("data/database.csv", fs.ErrNotExist)
	wrapped := Wrap(base, "load dataset")

	assert.Equal(t, CodeMissingInputFile, GetCode(wrapped))
	assert.True(t, stderrors.Is(wrapped, fs.ErrNotExist))
	assert.Contains(t, wrapped.Error(), "load dataset")
	assert.Contains(t, wrapped.Error(), "data/database.csv")
}

func TestGetCode_FindsCodeThroughStdlibWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", DataFormat("row %d: bad number %q", 3, "1.2.3"))

	assert.Equal(t, CodeDataFormat, GetCode(err))
	assert.True(t, HasCode(err, CodeDataFormat))
	assert.True(t, IsAppError(err))
	assert.Contains(t, err.Error(), `row 3: bad number "1.2.3"`)
}

func TestWrap_PlainErrorBecomesInternal(t *testing.T) {
	err := Wrap(stderrors.New("boom"), "compute")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.Nil(t, Wrap(nil, "ignored"))
	assert.Nil(t, Wrapf(nil, "ignored %d", 1))
}

func TestGetCode_Unknown(t *testing.T) {
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("plain")))
	assert.False(t, HasCode(nil, CodeInvalidInput))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, InternalError("bad metric"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "bad metric", err.Error())
}

func TestDatabaseError_KeepsCause(t *testing.T) {
	cause := stderrors.New("no such table: observations")
	err := DatabaseError(cause, "failed to list %s", "observations")

	assert.Equal(t, CodeDatabaseError, GetCode(err))
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "failed to list observations: no such table: observations", err.Error())
}
