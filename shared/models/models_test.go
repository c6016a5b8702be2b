package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyString(t *testing.T) {
	tests := []struct {
		money Money
		want  string
	}{
		{NewMoney(88800, "USD"), "$888.00 USD"},
		{NewMoney(1999, "EUR"), "$19.99 EUR"},
		{NewMoney(5, "USD"), "$0.05 USD"},
		{NewMoney(0, "USD"), "$0.00 USD"},
		{NewMoney(-2500, "USD"), "-$25.00 USD"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.money.String())
	}
}

func TestMoneyPredicates(t *testing.T) {
	assert.True(t, NewMoney(0, "USD").IsZero())
	assert.True(t, NewMoney(100, "USD").IsPositive())
	assert.True(t, NewMoney(-100, "USD").IsNegative())
	assert.False(t, NewMoney(100, "USD").IsZero())
}

func TestMoneyAdd(t *testing.T) {
	sum, err := NewMoney(100, "USD").Add(NewMoney(250, "USD"))
	require.NoError(t, err)
	assert.Equal(t, NewMoney(350, "USD"), sum)

	_, err = NewMoney(100, "USD").Add(NewMoney(100, "EUR"))
	assert.EqualError(t, err, "currency mismatch")
}

func TestNewID(t *testing.T) {
	id := GenerateUUID()

	parsed, err := NewID(id.String())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = NewID("not-a-uuid")
	assert.Error(t, err)
}
