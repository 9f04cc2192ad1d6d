package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ids(props []Property) []int {
	out := make([]int, 0, len(props))
	for _, p := range props {
		out = append(out, p.ID)
	}
	return out
}

func TestCatalog_Search(t *testing.T) {
	c := DefaultCatalog()

	cases := []struct {
		name string
		f    Filter
		want []int
	}{
		{"no filter", Filter{}, []int{1, 2, 3, 4, 5, 6}},
		{"location substring, case-insensitive", Filter{Location: "maharashtra"}, []int{2, 3}},
		{"budget range inclusive", Filter{MinBudget: 18000, MaxBudget: 25000}, []int{1, 5, 6}},
		{"bedrooms exact", Filter{Bedrooms: 3}, []int{1, 6}},
		{"combined", Filter{Location: "a", MaxBudget: 20000, Bedrooms: 2}, []int{5}},
		{"no match", Filter{Location: "Paris"}, []int{}},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ids(c.Search(tc.f)), tc.name)
	}
}

func TestNewCatalog_Copies(t *testing.T) {
	src := []Property{{ID: 1, Location: "X"}}
	c := NewCatalog(src)
	src[0].ID = 99

	assert.Equal(t, []int{1}, ids(c.Search(Filter{})))
}
