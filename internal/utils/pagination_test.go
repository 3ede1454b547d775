package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClampPerPage(t *testing.T) {
	assert.Equal(t, int64(1), ClampPerPage(0))
	assert.Equal(t, int64(1), ClampPerPage(-5))
	assert.Equal(t, int64(20), ClampPerPage(20))
	assert.Equal(t, int64(100), ClampPerPage(100))
	assert.Equal(t, int64(100), ClampPerPage(10000))
}

func TestOffset(t *testing.T) {
	assert.Equal(t, int64(0), Offset(1, 20))
	assert.Equal(t, int64(0), Offset(0, 20))
	assert.Equal(t, int64(0), Offset(-3, 20))
	assert.Equal(t, int64(20), Offset(2, 20))
	assert.Equal(t, int64(200), Offset(3, 1000)) // per_page clamped to 100
}

func TestNewPaginationMeta(t *testing.T) {
	m := NewPaginationMeta(2, 20, 45)
	assert.Equal(t, int64(2), m.Page)
	assert.Equal(t, int64(20), m.PerPage)
	assert.Equal(t, int64(45), m.TotalItems)
	assert.Equal(t, int64(3), m.TotalPages)

	m = NewPaginationMeta(0, 0, 0)
	assert.Equal(t, int64(1), m.Page)
	assert.Equal(t, int64(1), m.PerPage)
	assert.Equal(t, int64(0), m.TotalPages)

	m = NewPaginationMeta(1, 20, 40)
	assert.Equal(t, int64(2), m.TotalPages)
}
