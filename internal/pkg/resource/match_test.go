package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatch(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		fields []string
		want   bool
	}{
		{"empty query matches", "", []string{"anything"}, true},
		{"blank query matches", "   ", nil, true},
		{"case insensitive", "HIP", []string{"Hip-Hop Kids"}, true},
		{"cyrillic case insensitive", "хип", []string{"Хип-хоп для детей"}, true},
		{"second field", "anna", []string{"Contemporary", "Anna K."}, true},
		{"no match", "salsa", []string{"Hip-Hop", "Kids"}, false},
		{"no fields", "x", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Match(tt.query, tt.fields))
		})
	}
}

func TestFilterKeepsOrder(t *testing.T) {
	type row struct{ name string }
	rows := []row{{"Jazz Funk"}, {"Hip-Hop Kids"}, {"Hip-Hop Teens"}}
	fields := func(r *row) []string { return []string{r.name} }

	got := Filter(rows, "hip", fields)
	assert.Equal(t, []row{{"Hip-Hop Kids"}, {"Hip-Hop Teens"}}, got)
	assert.Len(t, Filter(rows, "", fields), 3)
	assert.Len(t, Filter(rows, "hip", nil), 3)
	assert.Empty(t, Filter(rows, "tango", fields))
}

type patchable struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
	Password string `json:"password,omitempty"`
	Note     *string
}

func (p *patchable) WriteOnlyFields() []string { return []string{"password"} }

func TestMerge(t *testing.T) {
	cur := &patchable{ID: 4, Name: "Jazz", IsActive: true}
	ro := map[string]struct{}{"id": {}}

	next, err := Merge(cur, []byte(`{"id":99,"is_active":false,"unknown":"x","password":"secret"}`), ro)
	assert.NoError(t, err)
	assert.Equal(t, int64(4), next.ID)
	assert.False(t, next.IsActive)
	assert.Equal(t, "Jazz", next.Name)
	assert.Equal(t, "secret", next.Password)
	assert.True(t, cur.IsActive, "current must stay untouched")

	_, err = Merge(cur, []byte(`[1,2]`), ro)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Merge(cur, []byte(`null`), ro)
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Merge(cur, []byte(`{"name": 5}`), ro)
	assert.ErrorIs(t, err, ErrInvalid)
}
