package cryptox

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPassword("secret", MinCost)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.GreaterOrEqual(t, cost, 10)

	assert.True(t, CheckPassword("secret", hash))
	assert.False(t, CheckPassword("Secret", hash))
	assert.False(t, CheckPassword("", hash))
}

func TestHashPassword_Salted(t *testing.T) {
	h1, err := HashPassword("secret", MinCost)
	require.NoError(t, err)
	h2, err := HashPassword("secret", MinCost)
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_RejectsLowCost(t *testing.T) {
	_, err := HashPassword("secret", 4)
	assert.ErrorIs(t, err, ErrCostTooLow)
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	assert.False(t, CheckPassword("secret", "not-a-hash"))
	assert.False(t, CheckPassword("secret", ""))
}

func TestCheckDummy_DoesNotPanic(t *testing.T) {
	assert.NotPanics(t, func() { CheckDummy("anything", MinCost) })
	assert.NotEmpty(t, DummyHash(MinCost))
}

func TestDummyHash_FollowsCost(t *testing.T) {
	h := DummyHash(MinCost + 1)

	cost, err := Cost(h)
	require.NoError(t, err)
	assert.Equal(t, MinCost+1, cost)
	assert.Equal(t, h, DummyHash(MinCost+1), "generated once per cost")

	low, err := Cost(DummyHash(4))
	require.NoError(t, err)
	assert.Equal(t, MinCost, low)

	assert.False(t, CheckPassword("", h))
}
