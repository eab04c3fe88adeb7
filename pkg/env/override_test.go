package env

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOverrideRestoresPreviousValues(t *testing.T) {
	t.Setenv("FTRECIPE_TEST_SET", "before")
	os.Unsetenv("FTRECIPE_TEST_UNSET")
	defer os.Unsetenv("FTRECIPE_TEST_UNSET")

	restore, err := Override(map[string]string{
		"FTRECIPE_TEST_SET":   "during",
		"FTRECIPE_TEST_UNSET": "during",
	})
	require.NoError(t, err)

	assert.Equal(t, "during", os.Getenv("FTRECIPE_TEST_SET"))
	assert.Equal(t, "during", os.Getenv("FTRECIPE_TEST_UNSET"))

	restore()

	assert.Equal(t, "before", os.Getenv("FTRECIPE_TEST_SET"))
	_, set := os.LookupEnv("FTRECIPE_TEST_UNSET")
	assert.False(t, set)
}

func TestOverrideRestoresOnFailure(t *testing.T) {
	t.Setenv("FTRECIPE_TEST_PATH", "original")

	step := func() (err error) {
		restore, err := Override(map[string]string{"FTRECIPE_TEST_PATH": "temporary"})
		if err != nil {
			return err
		}
		defer restore()

		return errors.New("build failed")
	}

	require.Error(t, step())
	assert.Equal(t, "original", os.Getenv("FTRECIPE_TEST_PATH"))
}

func TestSearchPath(t *testing.T) {
	t.Setenv("FTRECIPE_TEST_SEARCH", "/usr/lib/pkgconfig")
	sep := string(os.PathListSeparator)

	got := SearchPath("FTRECIPE_TEST_SEARCH", "/deps/zlib/lib/pkgconfig", "", "/deps/png/lib/pkgconfig")
	assert.Equal(t, strings.Join([]string{"/deps/zlib/lib/pkgconfig", "/deps/png/lib/pkgconfig", "/usr/lib/pkgconfig"}, sep), got)

	os.Unsetenv("FTRECIPE_TEST_SEARCH")
	assert.Equal(t, "/a", SearchPath("FTRECIPE_TEST_SEARCH", "/a"))
}
