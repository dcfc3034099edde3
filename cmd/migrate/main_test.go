package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSteps(t *testing.T) {
	steps, err := parseSteps("3")
	require.NoError(t, err)
	assert.Equal(t, 3, steps)

	for _, value := range []string{"0", "-1", "bir"} {
		_, err := parseSteps(value)
		assert.Error(t, err, value)
	}
}

func TestDatabaseURLFromEnv(t *testing.T) {
	t.Setenv("DATABASE_URL", "  ")
	_, err := databaseURLFromEnv()
	require.Error(t, err)

	t.Setenv("DATABASE_URL", " postgres://localhost/sayim ")
	url, err := databaseURLFromEnv()
	require.NoError(t, err)
	assert.Equal(t, "postgres://localhost/sayim", url)
}

func TestFormatVersion(t *testing.T) {
	assert.Equal(t, "Version 2", formatVersion(2, false))
	assert.Equal(t, "Version 2 (dirty)", formatVersion(2, true))
}
