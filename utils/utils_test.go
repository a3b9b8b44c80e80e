package utils

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)

	require.True(t, CheckPasswordHash("correct horse battery staple", hash))
	require.False(t, CheckPasswordHash("wrong password", hash))
	require.False(t, CheckPasswordHash("correct horse battery staple", "not-a-hash"))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"user@example.com",
		"first.last@sub.domain.org",
		"name+tag@mail.co",
	}
	for _, email := range valid {
		require.True(t, IsValidEmail(email), email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@no-local-part.com",
		"user@",
		"user @example.com",
		"user@domain",
	}
	for _, email := range invalid {
		require.False(t, IsValidEmail(email), email)
	}
}
