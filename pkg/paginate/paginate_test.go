package paginate

import "testing"

func TestLoadMoreClamps(t *testing.T) {
	tests := []struct {
		name     string
		pageSize int
		total    int
		calls    int
	}{
		{"exact pages", 20, 40, 2},
		{"partial last page", 20, 29, 2},
		{"more calls than pages", 20, 29, 5},
		{"empty", 20, 0, 3},
		{"default size", 0, 45, 2},
		{"single item pages", 1, 3, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.pageSize)
			p.Reset(tt.total)
			size := tt.pageSize
			if size <= 0 {
				size = DefaultPageSize
			}
			for k := 1; k <= tt.calls; k++ {
				p.LoadMore()
				if want := min(k*size, tt.total); p.Displayed() != want {
					t.Fatalf("after %d calls Displayed() = %d, want %d", k, p.Displayed(), want)
				}
			}
		})
	}
}

func TestLoadMoreRanges(t *testing.T) {
	p := New(20)
	p.Reset(29)

	from, to := p.LoadMore()
	if from != 0 || to != 20 {
		t.Errorf("first LoadMore() = [%d, %d), want [0, 20)", from, to)
	}
	if !p.HasMore() || p.Remaining() != 9 {
		t.Errorf("HasMore() = %v, Remaining() = %d", p.HasMore(), p.Remaining())
	}
	if got := p.Label(); got != "Load More (9 remaining)" {
		t.Errorf("Label() = %q", got)
	}

	from, to = p.LoadMore()
	if from != 20 || to != 29 {
		t.Errorf("second LoadMore() = [%d, %d), want [20, 29)", from, to)
	}
	if p.HasMore() {
		t.Error("HasMore() should be false once everything is displayed")
	}

	from, to = p.LoadMore()
	if from != to {
		t.Errorf("LoadMore() past the end = [%d, %d), want empty", from, to)
	}
}

func TestResetZeroesDisplayed(t *testing.T) {
	p := New(20)
	p.Reset(29)
	p.LoadMore()
	p.Reset(4)
	if p.Displayed() != 0 || p.Total() != 4 {
		t.Errorf("after Reset: Displayed() = %d, Total() = %d", p.Displayed(), p.Total())
	}
	p.Reset(-3)
	if p.Total() != 0 || p.HasMore() {
		t.Errorf("negative total not clamped: Total() = %d", p.Total())
	}
}

func TestZeroValue(t *testing.T) {
	var p Paginator
	p.Reset(25)
	if _, to := p.LoadMore(); to != DefaultPageSize {
		t.Errorf("zero-value page = %d, want %d", to, DefaultPageSize)
	}
}
