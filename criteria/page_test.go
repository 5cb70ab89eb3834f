package criteria

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"querykit/query"
)

func mustPageRequest(t *testing.T, page, size int) Pageable {
	t.Helper()
	p, err := PageRequest(page, size, query.Unsorted())
	require.NoError(t, err)
	return p
}

func countNever(t *testing.T) func() (int64, error) {
	t.Helper()
	return func() (int64, error) {
		t.Fatal("count must not be executed")
		return 0, nil
	}
}

func countOnce(t *testing.T, total int64, calls *int) func() (int64, error) {
	t.Helper()
	return func() (int64, error) {
		*calls++
		return total, nil
	}
}

func TestPageRequestValidation(t *testing.T) {
	_, err := PageRequest(-1, 10, query.Unsorted())
	assert.Error(t, err)

	_, err = PageRequest(0, 0, query.Unsorted())
	assert.Error(t, err)
}

func TestPageUnpagedSkipsCount(t *testing.T) {
	page, err := NewPage([]int{1, 2, 3}, Unpaged(query.Unsorted()), countNever(t))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements())
	assert.True(t, page.IsLast())
}

func TestPageFirstPartialPageSkipsCount(t *testing.T) {
	page, err := NewPage([]int{1, 2, 3}, mustPageRequest(t, 0, 10), countNever(t))
	require.NoError(t, err)
	assert.Equal(t, int64(3), page.TotalElements())
	assert.Equal(t, 1, page.TotalPages())
	assert.True(t, page.IsLast())
}

func TestPageLastPartialPageInfersTotal(t *testing.T) {
	// 第 2 页（偏移 20）取回 5 行、页大小 10：总量必为 25
	page, err := NewPage([]int{1, 2, 3, 4, 5}, mustPageRequest(t, 2, 10), countNever(t))
	require.NoError(t, err)
	assert.Equal(t, int64(25), page.TotalElements())
	assert.Equal(t, 3, page.TotalPages())
	assert.True(t, page.IsLast())
}

func TestPageFullPageExecutesCount(t *testing.T) {
	calls := 0
	content := make([]int, 10)
	page, err := NewPage(content, mustPageRequest(t, 0, 10), countOnce(t, 25, &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(25), page.TotalElements())
	assert.Equal(t, 3, page.TotalPages())
	assert.True(t, page.HasNext())
}

func TestPageEmptyNonFirstPageExecutesCount(t *testing.T) {
	calls := 0
	page, err := NewPage([]int{}, mustPageRequest(t, 5, 10), countOnce(t, 25, &calls))
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Equal(t, int64(25), page.TotalElements())
	assert.True(t, page.IsLast())
}

func TestPageEmptyTotals(t *testing.T) {
	page, err := NewPage([]int{}, mustPageRequest(t, 0, 10), countNever(t))
	require.NoError(t, err)
	assert.Equal(t, int64(0), page.TotalElements())
	assert.Equal(t, 0, page.TotalPages())
	assert.True(t, page.IsLast())
}
