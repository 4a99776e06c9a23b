package service

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialGenerator_Secret(t *testing.T) {
	gen, err := NewCredentialGenerator()
	require.NoError(t, err)

	alnum := regexp.MustCompile(`^[0-9A-Za-z]{20}$`)
	seen := make(map[string]struct{})
	for i := 0; i < 500; i++ {
		s := gen.GenerateSecret()
		assert.Regexp(t, alnum, s)
		_, dup := seen[s]
		assert.False(t, dup, "secret repeated: %s", s)
		seen[s] = struct{}{}
	}
}

func TestCredentialGenerator_LoginID(t *testing.T) {
	gen, err := NewCredentialGenerator()
	require.NoError(t, err)

	id := gen.GenerateLoginID()
	assert.Regexp(t, `^VEN[0-9A-Z]{8}$`, id)
	assert.NotEqual(t, id, gen.GenerateLoginID())
}
