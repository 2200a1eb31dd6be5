package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	in := Cursor{CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 123456789, time.UTC), ID: "abc"}
	out, err := Decode(Encode(in))
	require.NoError(t, err)
	require.NotNil(t, out)
	assert.True(t, in.CreatedAt.Equal(out.CreatedAt))
	assert.Equal(t, "abc", out.ID)
}

func TestDecode_EmptyAndGarbage(t *testing.T) {
	c, err := Decode("")
	assert.NoError(t, err)
	assert.Nil(t, c)

	_, err = Decode("!!!")
	assert.ErrorIs(t, err, ErrInvalidCursor)

	_, err = Decode(Encode(Cursor{ID: "x"}))
	assert.ErrorIs(t, err, ErrInvalidCursor)
}

func TestClampLimit(t *testing.T) {
	assert.Equal(t, 20, ClampLimit(0, 20, 100))
	assert.Equal(t, 20, ClampLimit(-3, 20, 100))
	assert.Equal(t, 7, ClampLimit(7, 20, 100))
	assert.Equal(t, 100, ClampLimit(1000, 20, 100))
}
