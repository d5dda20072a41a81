package token

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blues/crowdsale/internal/ledger"
)

var (
	owner    = common.HexToAddress("0x00000000000000000000000000000000000000A1")
	sale     = common.HexToAddress("0x00000000000000000000000000000000000000B2")
	investor = common.HexToAddress("0x00000000000000000000000000000000000000C3")
)

func TestNewTokenInitialSupply(t *testing.T) {
	tok := New(owner, big.NewInt(1000000))
	assert.Equal(t, int64(1000000), tok.TotalSupply().Int64())
	assert.Equal(t, int64(1000000), tok.BalanceOf(owner).Int64())
	assert.Equal(t, int64(0), tok.BalanceOf(investor).Int64())
}

func TestMintRequiresAgent(t *testing.T) {
	tok := New(owner, nil)

	err := tok.Mint(sale, investor, big.NewInt(100))
	assert.ErrorIs(t, err, ledger.ErrMintingNotAuthorized)

	require.NoError(t, tok.SetMintAgent(owner, sale, true))
	require.NoError(t, tok.Mint(sale, investor, big.NewInt(100)))
	assert.Equal(t, int64(100), tok.BalanceOf(investor).Int64())
	assert.Equal(t, int64(100), tok.TotalSupply().Int64())

	// 撤销授权后铸币失败
	require.NoError(t, tok.SetMintAgent(owner, sale, false))
	err = tok.Mint(sale, investor, big.NewInt(1))
	assert.ErrorIs(t, err, ledger.ErrMintingNotAuthorized)
}

func TestSetAgentOnlyOwner(t *testing.T) {
	tok := New(owner, nil)

	assert.ErrorIs(t, tok.SetMintAgent(investor, sale, true), ErrUnauthorized)
	assert.ErrorIs(t, tok.SetTransferAgent(investor, sale, true), ErrUnauthorized)
	assert.ErrorIs(t, tok.Release(investor), ErrUnauthorized)
}

func TestTransferLockedUntilReleased(t *testing.T) {
	tok := New(owner, big.NewInt(1000))
	require.NoError(t, tok.SetTransferAgent(owner, owner, true))
	require.NoError(t, tok.Transfer(owner, investor, big.NewInt(10)))

	// 非转账代理在释放前不允许转账
	err := tok.Transfer(investor, sale, big.NewInt(1))
	assert.ErrorIs(t, err, ErrNotReleased)

	require.NoError(t, tok.Release(owner))
	require.NoError(t, tok.Transfer(investor, sale, big.NewInt(1)))

	// 释放不可逆
	assert.ErrorIs(t, tok.Release(owner), ErrAlreadyReleased)
}

func TestTransferFromConsumesAllowance(t *testing.T) {
	tok := New(owner, big.NewInt(1000))
	require.NoError(t, tok.SetTransferAgent(owner, sale, true))
	require.NoError(t, tok.Approve(owner, sale, big.NewInt(300)))

	require.NoError(t, tok.TransferFrom(sale, owner, investor, big.NewInt(200)))
	assert.Equal(t, int64(200), tok.BalanceOf(investor).Int64())
	assert.Equal(t, int64(100), tok.Allowance(owner, sale).Int64())

	// 超出剩余授权整笔失败
	err := tok.TransferFrom(sale, owner, investor, big.NewInt(101))
	assert.ErrorIs(t, err, ledger.ErrInsufficientAllowance)
	assert.Equal(t, int64(200), tok.BalanceOf(investor).Int64())
}

func TestTransferFromInsufficientBalance(t *testing.T) {
	tok := New(owner, big.NewInt(100))
	require.NoError(t, tok.SetTransferAgent(owner, sale, true))
	require.NoError(t, tok.Approve(owner, sale, big.NewInt(500)))

	err := tok.TransferFrom(sale, owner, investor, big.NewInt(200))
	assert.ErrorIs(t, err, ledger.ErrInsufficientBalance)
}
