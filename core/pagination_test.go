package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeWindow(t *testing.T) {
	tests := []struct {
		name                        string
		total, size, page, window   int
		wantCurrent, wantTotalPages int
		wantPages                   []int
		wantFirst, wantLast         bool
		wantControls                bool
	}{
		{
			name: "second page of six", total: 61, size: 12, page: 2, window: 5,
			wantCurrent: 2, wantTotalPages: 6, wantPages: []int{1, 2, 3, 4, 5},
			wantFirst: false, wantLast: true, wantControls: true,
		},
		{
			name: "last page of six", total: 61, size: 12, page: 6, window: 5,
			wantCurrent: 6, wantTotalPages: 6, wantPages: []int{2, 3, 4, 5, 6},
			wantFirst: true, wantLast: false, wantControls: true,
		},
		{
			name: "single page", total: 5, size: 12, page: 1, window: 5,
			wantCurrent: 1, wantTotalPages: 1, wantPages: []int{1},
		},
		{
			name: "no items", total: 0, size: 12, page: 1, window: 5,
			wantCurrent: 1, wantTotalPages: 1, wantPages: []int{1},
		},
		{
			name: "centered", total: 120, size: 12, page: 5, window: 5,
			wantCurrent: 5, wantTotalPages: 10, wantPages: []int{3, 4, 5, 6, 7},
			wantFirst: true, wantLast: true, wantControls: true,
		},
		{
			name: "fewer pages than window", total: 36, size: 12, page: 2, window: 5,
			wantCurrent: 2, wantTotalPages: 3, wantPages: []int{1, 2, 3}, wantControls: true,
		},
		{
			name: "page above range clamps", total: 61, size: 12, page: 42, window: 5,
			wantCurrent: 6, wantTotalPages: 6, wantPages: []int{2, 3, 4, 5, 6},
			wantFirst: true, wantControls: true,
		},
		{
			name: "page below range clamps", total: 61, size: 12, page: -3, window: 5,
			wantCurrent: 1, wantTotalPages: 6, wantPages: []int{1, 2, 3, 4, 5},
			wantLast: true, wantControls: true,
		},
		{
			name: "exact multiple", total: 24, size: 12, page: 2, window: 5,
			wantCurrent: 2, wantTotalPages: 2, wantPages: []int{1, 2}, wantControls: true,
		},
		{
			name: "even window biases low", total: 100, size: 10, page: 5, window: 4,
			wantCurrent: 5, wantTotalPages: 10, wantPages: []int{3, 4, 5, 6},
			wantFirst: true, wantLast: true, wantControls: true,
		},
		{
			name: "one before last", total: 100, size: 10, page: 9, window: 5,
			wantCurrent: 9, wantTotalPages: 10, wantPages: []int{6, 7, 8, 9, 10},
			wantFirst: true, wantControls: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pw := ComputeWindow(tt.total, tt.size, tt.page, tt.window)
			assert.Equal(t, tt.wantCurrent, pw.CurrentPage)
			assert.Equal(t, tt.wantTotalPages, pw.TotalPages)
			assert.Equal(t, tt.wantPages, pw.Pages)
			assert.Equal(t, tt.wantFirst, pw.ShowFirst, "ShowFirst")
			assert.Equal(t, tt.wantLast, pw.ShowLast, "ShowLast")
			assert.Equal(t, tt.wantControls, pw.ShowControls, "ShowControls")
		})
	}
}

func TestComputeWindow_invariants(t *testing.T) {
	for total := 0; total <= 130; total += 7 {
		for _, size := range []int{1, 5, 12} {
			for _, window := range []int{1, 3, 5, 7} {
				for page := -2; page <= 30; page++ {
					pw := ComputeWindow(total, size, page, window)

					wantTotalPages := (total + size - 1) / size
					if wantTotalPages < 1 {
						wantTotalPages = 1
					}
					if pw.TotalPages != wantTotalPages {
						t.Fatalf("ComputeWindow(%d, %d, %d, %d).TotalPages = %d; want %d", total, size, page, window, pw.TotalPages, wantTotalPages)
					}
					if pw.CurrentPage < 1 || pw.CurrentPage > pw.TotalPages {
						t.Fatalf("ComputeWindow(%d, %d, %d, %d).CurrentPage = %d out of range", total, size, page, window, pw.CurrentPage)
					}

					wantLen := window
					if pw.TotalPages < wantLen {
						wantLen = pw.TotalPages
					}
					if len(pw.Pages) != wantLen {
						t.Fatalf("ComputeWindow(%d, %d, %d, %d) window len = %d; want %d", total, size, page, window, len(pw.Pages), wantLen)
					}
					for i := 1; i < len(pw.Pages); i++ {
						if pw.Pages[i] != pw.Pages[i-1]+1 {
							t.Fatalf("ComputeWindow(%d, %d, %d, %d) window not contiguous: %v", total, size, page, window, pw.Pages)
						}
					}
					if pw.Pages[0] < 1 || pw.Pages[len(pw.Pages)-1] > pw.TotalPages {
						t.Fatalf("ComputeWindow(%d, %d, %d, %d) window out of bounds: %v", total, size, page, window, pw.Pages)
					}
					if !assert.Contains(t, pw.Pages, pw.CurrentPage) {
						t.FailNow()
					}
				}
			}
		}
	}
}

func TestPageWindow_navigation(t *testing.T) {
	pw := ComputeWindow(61, 12, 3, 5)
	assert.Equal(t, 24, pw.Offset())
	assert.Equal(t, 12, pw.Limit())
	assert.True(t, pw.HasPrevious())
	assert.True(t, pw.HasNext())
	assert.Equal(t, 2, pw.PreviousPage())
	assert.Equal(t, 4, pw.NextPage())

	first := ComputeWindow(61, 12, 1, 5)
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 1, first.PreviousPage())
	assert.Equal(t, 0, first.Offset())

	last := ComputeWindow(61, 12, 6, 5)
	assert.False(t, last.HasNext())
	assert.Equal(t, 6, last.NextPage())
}
