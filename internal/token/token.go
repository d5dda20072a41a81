package token

import (
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blues/crowdsale/internal/ledger"
)

// 代币层错误
var (
	ErrUnauthorized    = errors.New("token: caller is not the owner")
	ErrNotReleased     = errors.New("token: token is not released for transfer")
	ErrInvalidAmount   = errors.New("token: invalid amount")
	ErrAlreadyReleased = errors.New("token: token already released")
)

// Token 内存实现的可铸造代币账本
// 对应销售期代币的参考实现：销售期间普通转账锁定，只有转账代理可以划转；
// 铸币权通过代理名单授予，销售结束后 Release 放开自由转账。
// 实现 ledger.TokenLedger 接口，供服务装配与测试使用。
type Token struct {
	mu sync.Mutex

	owner       common.Address
	balances    map[common.Address]*big.Int
	allowances  map[common.Address]map[common.Address]*big.Int
	totalSupply *big.Int

	mintAgents     map[common.Address]bool
	transferAgents map[common.Address]bool
	released       bool
}

// New 创建代币账本，初始供应量全部记入 owner 账户
func New(owner common.Address, initialSupply *big.Int) *Token {
	t := &Token{
		owner:          owner,
		balances:       make(map[common.Address]*big.Int),
		allowances:     make(map[common.Address]map[common.Address]*big.Int),
		totalSupply:    new(big.Int),
		mintAgents:     make(map[common.Address]bool),
		transferAgents: make(map[common.Address]bool),
	}
	if initialSupply != nil && initialSupply.Sign() > 0 {
		t.balances[owner] = new(big.Int).Set(initialSupply)
		t.totalSupply.Set(initialSupply)
	}
	return t
}

// Owner 代币所有者
func (t *Token) Owner() common.Address { return t.owner }

// BalanceOf 查询账户余额
func (t *Token) BalanceOf(account common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.balanceOf(account))
}

// TotalSupply 查询总供应量
func (t *Token) TotalSupply() *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.totalSupply)
}

// IsMintAgent 账户是否持有铸币授权
func (t *Token) IsMintAgent(account common.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.mintAgents[account]
}

// IsTransferAgent 账户是否持有转账代理授权
func (t *Token) IsTransferAgent(account common.Address) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.transferAgents[account]
}

// Released 代币是否已放开自由转账
func (t *Token) Released() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.released
}

// SetMintAgent 授予或撤销铸币权，仅所有者可调用
func (t *Token) SetMintAgent(caller, agent common.Address, allowed bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return ErrUnauthorized
	}
	t.mintAgents[agent] = allowed
	return nil
}

// SetTransferAgent 授予或撤销转账代理权，仅所有者可调用
func (t *Token) SetTransferAgent(caller, agent common.Address, allowed bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return ErrUnauthorized
	}
	t.transferAgents[agent] = allowed
	return nil
}

// Release 放开自由转账，不可逆，仅所有者可调用
func (t *Token) Release(caller common.Address) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if caller != t.owner {
		return ErrUnauthorized
	}
	if t.released {
		return ErrAlreadyReleased
	}
	t.released = true
	return nil
}

// Approve 授权 spender 从 owner 账户划转的额度
func (t *Token) Approve(owner, spender common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	row, ok := t.allowances[owner]
	if !ok {
		row = make(map[common.Address]*big.Int)
		t.allowances[owner] = row
	}
	row[spender] = new(big.Int).Set(amount)
	return nil
}

// Allowance 查询授权额度
func (t *Token) Allowance(owner, spender common.Address) *big.Int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return new(big.Int).Set(t.allowance(owner, spender))
}

// Transfer 普通转账；销售期间只有转账代理可以转账
func (t *Token) Transfer(from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.released && !t.transferAgents[from] {
		return ErrNotReleased
	}
	return t.move(from, to, amount)
}

// TransferFrom 以 spender 身份从 from 划转到 to，消耗 allowance
// 销售期间要求 spender 持有转账代理授权。
func (t *Token) TransferFrom(spender, from, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.released && !t.transferAgents[spender] {
		return ErrNotReleased
	}
	allowance := t.allowance(from, spender)
	if allowance.Cmp(amount) < 0 {
		return ledger.ErrInsufficientAllowance
	}
	if err := t.move(from, to, amount); err != nil {
		return err
	}
	allowance.Sub(allowance, amount)
	return nil
}

// Mint 铸造新代币，caller 必须持有铸币授权
func (t *Token) Mint(caller, to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.mintAgents[caller] {
		return ledger.ErrMintingNotAuthorized
	}
	t.credit(to, amount)
	t.totalSupply.Add(t.totalSupply, amount)
	return nil
}

func (t *Token) balanceOf(account common.Address) *big.Int {
	if b, ok := t.balances[account]; ok {
		return b
	}
	return new(big.Int)
}

func (t *Token) allowance(owner, spender common.Address) *big.Int {
	if row, ok := t.allowances[owner]; ok {
		if a, ok := row[spender]; ok {
			return a
		}
	}
	return new(big.Int)
}

func (t *Token) move(from, to common.Address, amount *big.Int) error {
	balance := t.balanceOf(from)
	if balance.Cmp(amount) < 0 {
		return ledger.ErrInsufficientBalance
	}
	balance.Sub(balance, amount)
	t.balances[from] = balance
	t.credit(to, amount)
	return nil
}

func (t *Token) credit(to common.Address, amount *big.Int) {
	balance, ok := t.balances[to]
	if !ok {
		balance = new(big.Int)
		t.balances[to] = balance
	}
	balance.Add(balance, amount)
}
