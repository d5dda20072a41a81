package ledger

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockToken 账本接口的内存假实现
type mockToken struct {
	transfers  []*big.Int
	mints      []*big.Int
	mintAgents map[common.Address]bool
	failWith   error
}

func newMockToken() *mockToken {
	return &mockToken{mintAgents: make(map[common.Address]bool)}
}

func (m *mockToken) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.transfers = append(m.transfers, new(big.Int).Set(amount))
	return nil
}

func (m *mockToken) Mint(caller, to common.Address, amount *big.Int) error {
	if m.failWith != nil {
		return m.failWith
	}
	m.mints = append(m.mints, new(big.Int).Set(amount))
	return nil
}

func (m *mockToken) BalanceOf(common.Address) *big.Int           { return new(big.Int) }
func (m *mockToken) TotalSupply() *big.Int                       { return new(big.Int) }
func (m *mockToken) IsMintAgent(account common.Address) bool     { return m.mintAgents[account] }
func (m *mockToken) IsTransferAgent(account common.Address) bool { return true }

var (
	saleAcct  = common.HexToAddress("0x00000000000000000000000000000000000000AA")
	poolOwner = common.HexToAddress("0x00000000000000000000000000000000000000BB")
	buyer     = common.HexToAddress("0x00000000000000000000000000000000000000CC")
)

func TestPoolSettlerEnforcesPoolSize(t *testing.T) {
	tok := newMockToken()
	s, err := NewPoolSettler(tok, saleAcct, poolOwner, big.NewInt(100))
	require.NoError(t, err)

	require.NoError(t, s.Settle(buyer, big.NewInt(60)))
	assert.Equal(t, int64(40), s.Remaining().Int64())

	// 超出剩余池子的结算整笔拒绝，不触达账本
	err = s.Settle(buyer, big.NewInt(41))
	assert.ErrorIs(t, err, ErrInsufficientPoolBalance)
	assert.Len(t, tok.transfers, 1)
	assert.Equal(t, int64(40), s.Remaining().Int64())

	require.NoError(t, s.Settle(buyer, big.NewInt(40)))
	assert.Equal(t, int64(0), s.Remaining().Int64())
}

func TestPoolSettlerLedgerFailureDoesNotConsumePool(t *testing.T) {
	tok := newMockToken()
	tok.failWith = ErrInsufficientAllowance
	s, err := NewPoolSettler(tok, saleAcct, poolOwner, big.NewInt(100))
	require.NoError(t, err)

	err = s.Settle(buyer, big.NewInt(10))
	assert.ErrorIs(t, err, ErrInsufficientAllowance)
	assert.Equal(t, int64(100), s.Remaining().Int64())
}

func TestPoolSettlerInvalidConfig(t *testing.T) {
	_, err := NewPoolSettler(nil, saleAcct, poolOwner, big.NewInt(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewPoolSettler(newMockToken(), saleAcct, poolOwner, big.NewInt(0))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestMintSettlerChecksAuthorization(t *testing.T) {
	tok := newMockToken()
	s, err := NewMintSettler(tok, saleAcct)
	require.NoError(t, err)

	// 未授权时拒绝且不触达账本
	err = s.Settle(buyer, big.NewInt(10))
	assert.ErrorIs(t, err, ErrMintingNotAuthorized)
	assert.Empty(t, tok.mints)

	tok.mintAgents[saleAcct] = true
	require.NoError(t, s.Settle(buyer, big.NewInt(10)))
	assert.Len(t, tok.mints, 1)

	// 授权中途被撤销
	tok.mintAgents[saleAcct] = false
	err = s.Settle(buyer, big.NewInt(10))
	assert.ErrorIs(t, err, ErrMintingNotAuthorized)
}

func TestVaultPayout(t *testing.T) {
	v := NewVault()
	v.Deposit(big.NewInt(1000))
	assert.Equal(t, int64(1000), v.Balance().Int64())

	require.NoError(t, v.Payout(buyer, big.NewInt(400)))
	assert.Equal(t, int64(600), v.Balance().Int64())
	assert.Equal(t, int64(400), v.PaidTo(buyer).Int64())

	// 透支拒绝
	err := v.Payout(buyer, big.NewInt(601))
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, int64(600), v.Balance().Int64())
}
