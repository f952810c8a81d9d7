package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCriteria_AndDoesNotAlias(t *testing.T) {
	base := make(Criteria, 1, 4)
	base[0] = Condition{Column: "title", Op: OpEq, Value: "a"}

	left := base.And("id", OpGt, 1)
	right := base.And("id", OpLt, 9)

	assert.Len(t, base, 1)
	assert.Equal(t, OpGt, left[1].Op)
	assert.Equal(t, OpLt, right[1].Op)
}

func TestIDEquals(t *testing.T) {
	assert.Equal(t, Criteria{{Column: "id", Op: OpEq, Value: int64(3)}}, IDEquals(3))
}

func TestPaginationParams_Offset(t *testing.T) {
	tests := []struct {
		name string
		p    PaginationParams
		want int
	}{
		{"first page", PaginationParams{Page: 1, PageSize: 20}, 0},
		{"third page", PaginationParams{Page: 3, PageSize: 10}, 20},
		{"zero page", PaginationParams{Page: 0, PageSize: 10}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Offset())
		})
	}
}

func TestSpeaker_SessionIDs(t *testing.T) {
	one, two := int64(1), int64(2)
	s := NewSpeaker("Ada", "Lovelace", "ada@example.com", "@ada", "bio")
	s.Sessions = []*Session{{ID: &one}, {Title: "unsaved"}, nil, {ID: &two}}
	assert.Equal(t, []int64{1, 2}, s.SessionIDs())
	assert.Equal(t, int64(0), s.GetID())
}
