package utils

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryList(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  []string
	}{
		{"absent", "", nil},
		{"comma separated", "ids=1, 2,3", []string{"1", "2", "3"}},
		{"repeated", "ids=1&ids=2", []string{"1", "2"}},
		{"mixed with blanks", "ids=1,,2&ids=3", []string{"1", "2", "3"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseQueryList(q, "ids"))
		})
	}
}

func TestParseIntList(t *testing.T) {
	q := url.Values{"ids": {"4,7"}, "bad": {"4,x"}}

	ids, err := ParseIntList(q, "ids")
	require.NoError(t, err)
	assert.Equal(t, []int64{4, 7}, ids)

	_, err = ParseIntList(q, "bad")
	assert.ErrorContains(t, err, `"x"`)

	ids, err = ParseIntList(q, "missing")
	assert.NoError(t, err)
	assert.Nil(t, ids)
}

func TestIsTrue(t *testing.T) {
	q := url.Values{"a": {"true"}, "b": {"1"}, "c": {"TRUE"}}

	assert.True(t, IsTrue(q, "a"))
	assert.False(t, IsTrue(q, "b"))
	assert.False(t, IsTrue(q, "c"))
	assert.False(t, IsTrue(q, "d"))
}
