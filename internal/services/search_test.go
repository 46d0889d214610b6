package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSearchText(t *testing.T) {
	text, err := SanitizeSearchText("  The Matrix ")
	require.NoError(t, err)
	assert.Equal(t, "The Matrix", text)

	text, err = SanitizeSearchText(`O'Brien's "War" & Peace | !`)
	require.NoError(t, err)
	assert.Equal(t, `O'Brien's "War" & Peace | !`, text)

	for _, bad := range []string{"", "   ", "tab\there", "nul\x00", "\xff\xfe", strings.Repeat("a", 201)} {
		_, err := SanitizeSearchText(bad)
		assert.ErrorIs(t, err, ErrInvalidSearchText, "%q", bad)
	}
}

func TestPersistedQueryKey(t *testing.T) {
	key, err := PersistedQueryKey("/queries/", "top-movies_v2")
	require.NoError(t, err)
	assert.Equal(t, "queries/top-movies_v2.json", key)

	for _, bad := range []string{"", "../secret", "a/b", "a.json", strings.Repeat("x", 129)} {
		_, err := PersistedQueryKey("queries", bad)
		assert.ErrorIs(t, err, ErrInvalidQueryID, bad)
	}
}
