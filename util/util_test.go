package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPages(t *testing.T) {
	require.Equal(t, []int{1}, Pages(1, 1))
	require.Equal(t, []int{1, 2, 3, 4, 5}, Pages(3, 5))
	require.Contains(t, Pages(50, 100), 1)
	require.Contains(t, Pages(50, 100), 49)
	require.Contains(t, Pages(50, 100), 50)
	require.Contains(t, Pages(50, 100), 51)
	require.Contains(t, Pages(50, 100), 100)
}

func TestTrunc(t *testing.T) {
	require.Equal(t, "hello", Trunc("hello", 10))
	require.Equal(t, "äöü", Trunc("  äöü  ", 10))
	require.Equal(t, "ab", Trunc("abcdef", 3))
}

func TestRandomString32(t *testing.T) {
	a, err := RandomString32()
	require.NoError(t, err)
	require.Len(t, a, 32)

	b, err := RandomString32()
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestStripTags(t *testing.T) {
	require.Equal(t, "hello world", StripTags(`<b>hello</b> world`))
	require.Equal(t, "plain", StripTags("plain"))
	require.Equal(t, "alert(1)safe", StripTags(`<script>alert(1)</script>safe`))
	require.Equal(t, "link", StripTags(`<a href="https://example.com">link</a>`))
}
