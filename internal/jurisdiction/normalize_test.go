package jurisdiction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	t.Run("case and whitespace variants collapse to the same code", func(t *testing.T) {
		variants := []string{
			"Rajasthan",
			"rajasthan",
			"  RAJASTHAN  ",
			"State of Rajasthan",
		}
		for _, v := range variants {
			assert.Equal(t, Rajasthan, Normalize(v), "input %q", v)
		}
	})

	t.Run("formal prefixes are stripped", func(t *testing.T) {
		assert.Equal(t, TamilNadu, Normalize("State of Tamil Nadu"))
		assert.Equal(t, Delhi, Normalize("National Capital Territory of Delhi"))
		assert.Equal(t, Delhi, Normalize("NCT of Delhi"))
	})

	t.Run("concatenated prefixes reduce fully", func(t *testing.T) {
		assert.Equal(t, Delhi, Normalize("State of NCT of Delhi"))
	})

	t.Run("capital region aliases map to delhi", func(t *testing.T) {
		for _, alias := range []string{"Delhi", "New Delhi", "NCT", "NCR"} {
			assert.Equal(t, Delhi, Normalize(alias), "alias %q", alias)
		}
	})

	t.Run("spelling variants resolve through the alias table", func(t *testing.T) {
		assert.Equal(t, Odisha, Normalize("Orissa"))
		assert.Equal(t, Uttarakhand, Normalize("Uttaranchal"))
		assert.Equal(t, TamilNadu, Normalize("Tamilnadu"))
	})

	t.Run("unknown names return Unknown", func(t *testing.T) {
		assert.Equal(t, Unknown, Normalize("Atlantis"))
		assert.Equal(t, Unknown, Normalize(""))
		assert.Equal(t, Unknown, Normalize("   "))
	})

	t.Run("normalization is idempotent on canonical codes", func(t *testing.T) {
		for _, c := range All() {
			assert.Equal(t, c, Normalize(string(c)), "code %q", c)
		}
	})
}

func TestNormalizeIn(t *testing.T) {
	t.Run("satellite cities resolve to delhi inside the capital belt", func(t *testing.T) {
		assert.Equal(t, Delhi, NormalizeIn("Noida", "Uttar Pradesh"))
		assert.Equal(t, Delhi, NormalizeIn("Gurgaon", "Haryana"))
		assert.Equal(t, Delhi, NormalizeIn("Ghaziabad", "Delhi"))
		assert.Equal(t, Delhi, NormalizeIn("Gurugram", "haryana"))
	})

	t.Run("satellite names outside the belt do not resolve", func(t *testing.T) {
		assert.Equal(t, Unknown, NormalizeIn("Noida", "Karnataka"))
		assert.Equal(t, Unknown, NormalizeIn("Gurgaon", ""))
	})

	t.Run("belt context does not affect ordinary state names", func(t *testing.T) {
		assert.Equal(t, Haryana, NormalizeIn("Haryana", "Haryana"))
		assert.Equal(t, Rajasthan, NormalizeIn("Rajasthan", "Uttar Pradesh"))
	})
}

func TestCodeValid(t *testing.T) {
	assert.True(t, Rajasthan.Valid())
	assert.False(t, Unknown.Valid())
	assert.False(t, Code("mordor").Valid())
}
