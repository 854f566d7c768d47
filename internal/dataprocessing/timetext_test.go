package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateTime_SupportedFormats(t *testing.T) {
	want := time.Date(2024, 3, 15, 22, 5, 9, 0, time.UTC)

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{"slash colon", "2024/03/15 22:05:09", want},
		{"slash dot", "2024/03/15 22.05.09", want},
		{"hyphen colon", "2024-03-15 22:05:09", want},
		{"no seconds", "2024/03/15 22.05", time.Date(2024, 3, 15, 22, 5, 0, 0, time.UTC)},
		{"date only slash", "2024/03/15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"date only hyphen", "2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"surrounding space", "  2024/03/15 22:05:09  ", want},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseDateTime(tt.text)
			require.True(t, ok, "expected %q to parse", tt.text)
			assert.True(t, tt.want.Equal(got), "want %v got %v", tt.want, got)
		})
	}
}

func TestParseDateTime_RegexFallback(t *testing.T) {
	// A "T" separator matches no layout but the digit extractor handles it.
	got, ok := ParseDateTime("2024-03-15T22:05:09")
	require.True(t, ok)
	assert.Equal(t, time.Date(2024, 3, 15, 22, 5, 9, 0, time.UTC), got)

	// Seconds default to zero when the group is absent.
	got, ok = ParseDateTime("2024-03-15T22:05")
	require.True(t, ok)
	assert.Equal(t, 0, got.Second())
	assert.Equal(t, 5, got.Minute())
}

func TestParseDateTime_Unparseable(t *testing.T) {
	for _, text := range []string{
		"",
		"   ",
		"nan",
		"NaT",
		"not a date",
		"15/03/2024 22:05:09", // day-first is not a supported convention
		"2024-13-40 25:61:61", // digits extract but do not survive validation
	} {
		_, ok := ParseDateTime(text)
		assert.False(t, ok, "expected %q to be absent", text)
	}
}

func TestParseOptionalDateTime(t *testing.T) {
	assert.Nil(t, ParseOptionalDateTime("garbage"))

	got := ParseOptionalDateTime("2024/01/02 03:04:05")
	require.NotNil(t, got)
	assert.Equal(t, 3, got.Hour())
}
