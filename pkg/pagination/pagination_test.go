package pagination

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationParams_Validate(t *testing.T) {
	p := &PaginationParams{Page: 0, PerPage: 500}
	p.Validate()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PerPage)
	assert.Equal(t, 0, p.Offset())

	p = &PaginationParams{Page: 3, PerPage: 10}
	p.Validate()
	assert.Equal(t, 20, p.Offset())
}

func TestNewPagination(t *testing.T) {
	pg := NewPagination(2, 10, 25)
	assert.Equal(t, 3, pg.TotalPages)
	assert.True(t, pg.HasNext)
	assert.True(t, pg.HasPrev)

	pg = NewPagination(1, 10, 0)
	assert.Equal(t, 0, pg.TotalPages)
	assert.False(t, pg.HasNext)
}

func TestCursorRoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	params := &CursorParams{Cursor: EncodeCursor("abc", at)}
	params.Validate()

	cursor, err := params.DecodeCursor()
	require.NoError(t, err)
	assert.Equal(t, "abc", cursor.ID)
	assert.True(t, at.Equal(cursor.CreatedAt))
	assert.Equal(t, CursorDirectionNext, params.Direction)

	_, err = (&CursorParams{Cursor: "%%%"}).DecodeCursor()
	assert.Error(t, err)
}

func TestNewCursorPagination(t *testing.T) {
	items := []int{1, 2, 3}
	pg, trimmed := NewCursorPagination(items, 2,
		func(i int) string { return string(rune('a' + i)) },
		func(int) time.Time { return time.Time{} })

	assert.Len(t, trimmed, 2)
	assert.True(t, pg.HasNext)
	require.NotNil(t, pg.NextCursor)
}
