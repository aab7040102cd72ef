package utils

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sequence(n int) []int {
	items := make([]int, n)
	for i := range items {
		items[i] = i
	}
	return items
}

func TestPageAtWindowSize(t *testing.T) {
	for _, total := range []int{0, 1, 9, 10, 11, 25, 100} {
		items := sequence(total)
		for page := 1; page <= total/PageSize+2; page++ {
			want := total - (page-1)*PageSize
			if want < 0 {
				want = 0
			}
			if want > PageSize {
				want = PageSize
			}
			got := PageAt(items, page)
			assert.Len(t, got.Items, want, "total=%d page=%d", total, page)
		}
	}
}

func TestPaginateUnionReconstructsSet(t *testing.T) {
	items := sequence(37)
	var union []int
	page := 1
	for {
		p := PageAt(items, page)
		union = append(union, p.Items...)
		if !p.HasNext {
			break
		}
		page++
	}
	require.Equal(t, items, union)
	assert.Equal(t, 4, page)
}

func TestPaginateInvalidParamsDefaultToFirstPage(t *testing.T) {
	items := sequence(15)
	for _, raw := range []string{"", "abc", "0", "-3", "1.5"} {
		p := Paginate(items, raw)
		assert.Equal(t, 1, p.Number, "param %q", raw)
		assert.Len(t, p.Items, PageSize, "param %q", raw)
		assert.Equal(t, 0, p.Items[0], "param %q", raw)
	}
}

func TestPaginateBeyondLastPageIsEmptyNotError(t *testing.T) {
	items := sequence(1)
	p := Paginate(items, "2")
	assert.Equal(t, 2, p.Number)
	assert.Empty(t, p.Items)
	assert.Equal(t, 1, p.TotalItems)
	assert.False(t, p.HasNext)
}

func TestPaginateEmptySet(t *testing.T) {
	p := Paginate([]string{}, "")
	assert.Equal(t, 1, p.Number)
	assert.Empty(t, p.Items)
	assert.Equal(t, 0, p.TotalItems)
	assert.Equal(t, 1, p.TotalPages)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestPageMetadata(t *testing.T) {
	items := sequence(21)
	p := PageAt(items, 2)
	assert.Equal(t, 21, p.TotalItems)
	assert.Equal(t, 3, p.TotalPages)
	assert.Equal(t, PageSize, p.Size)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrev)

	last := PageAt(items, 3)
	assert.Len(t, last.Items, 1)
	assert.False(t, last.HasNext)
}

func TestPageWindowIsACopy(t *testing.T) {
	items := sequence(5)
	p := PageAt(items, 1)
	p.Items[0] = 999
	assert.Equal(t, 0, items[0])
}

func ExamplePaginate() {
	p := Paginate([]string{"a", "b", "c"}, "1")
	fmt.Println(p.TotalItems, len(p.Items), p.HasNext)
	// Output: 3 3 false
}
