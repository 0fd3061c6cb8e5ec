package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerFromHeader(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"bearer   abc.def.ghi  ", "abc.def.ghi", true},
		{"Basic dXNlcjpwYXNz", "", false},
		{"Bearer", "", false},
		{"Bearer    ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerFromHeader(tt.in)
		assert.Equal(t, tt.wantOK, ok, "input %q", tt.in)
		assert.Equal(t, tt.want, got, "input %q", tt.in)
	}
}

func TestPickBearer(t *testing.T) {
	got, ok := PickBearer("Bearer from-header", `"from-cookie"`)
	assert.True(t, ok)
	assert.Equal(t, "from-header", got)

	got, ok = PickBearer("", `"from-cookie"`)
	assert.True(t, ok)
	assert.Equal(t, "from-cookie", got)

	_, ok = PickBearer("", "  ")
	assert.False(t, ok)
}

func TestCleanToken(t *testing.T) {
	assert.Equal(t, "a.b.c", CleanToken("  a.b.c \n"))
	assert.Equal(t, "a.b.c", CleanToken(`"a.b.c"`))
	assert.Equal(t, "a.b.c", CleanToken(`'a.b.c'`))
	assert.Equal(t, `"a.b.c'`, CleanToken(`"a.b.c'`), "mismatched quotes are kept")
	assert.Equal(t, `"a.b.c"`, CleanToken(`""a.b.c""`), "only one layer is stripped")
	assert.Equal(t, "", CleanToken(`""`))
}
