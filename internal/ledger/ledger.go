package ledger

import (
	"errors"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// 账本层错误
var (
	ErrInsufficientPoolBalance = errors.New("ledger: insufficient pool balance")
	ErrMintingNotAuthorized    = errors.New("ledger: minting not authorized")
	ErrInsufficientAllowance   = errors.New("ledger: insufficient allowance")
	ErrInsufficientBalance     = errors.New("ledger: insufficient balance")
	ErrInvalidConfiguration    = errors.New("ledger: invalid configuration")
)

// TokenLedger 外部代币账本接口
// 引擎只通过该接口消费代币账本，余额持久化与共识不在本服务范围内。
type TokenLedger interface {
	// TransferFrom 以 spender 身份从 from 划转代币到 to，受 allowance 限制
	TransferFrom(spender, from, to common.Address, amount *big.Int) error
	// Mint 为 to 铸造新代币，caller 必须是铸币代理
	Mint(caller, to common.Address, amount *big.Int) error
	BalanceOf(account common.Address) *big.Int
	TotalSupply() *big.Int
	IsMintAgent(account common.Address) bool
	IsTransferAgent(account common.Address) bool
}

// Treasury 基础货币资金接口
// 退款路径通过它把投资人的贡献原路退回；资金保管本身是外部协作方。
type Treasury interface {
	Payout(to common.Address, amount *big.Int) error
}
