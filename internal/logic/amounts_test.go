package logic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	amount, err := parseAmount("1000000000000000000000")
	require.NoError(t, err)
	assert.Equal(t, "1000000000000000000000", amount.String())

	amount, err = parseAmount(" 42 ")
	require.NoError(t, err)
	assert.Equal(t, int64(42), amount.Int64())

	for _, bad := range []string{"", "abc", "-1", "1.5", "0x10"} {
		_, err := parseAmount(bad)
		assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", bad)
	}
}

func TestParseOptionalAmount(t *testing.T) {
	amount, err := parseOptionalAmount("")
	require.NoError(t, err)
	assert.Nil(t, amount)

	amount, err = parseOptionalAmount("0")
	require.NoError(t, err)
	assert.Nil(t, amount)

	amount, err = parseOptionalAmount("5000")
	require.NoError(t, err)
	assert.Equal(t, int64(5000), amount.Int64())

	_, err = parseOptionalAmount("-5")
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestParseAddress(t *testing.T) {
	addr, err := parseAddress("0x00000000000000000000000000000000000000C1")
	require.NoError(t, err)
	assert.Equal(t, "0x00000000000000000000000000000000000000c1", strings.ToLower(addr.Hex()))

	for _, bad := range []string{"", "0x123", "not-an-address"} {
		_, err := parseAddress(bad)
		assert.ErrorIs(t, err, ErrInvalidAddress, "input %q", bad)
	}
}
