package ledger

import (
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// Vault 内存基础货币资金库，实现 Treasury
// 贡献入账与退款出账走同一个余额，出账不允许透支。
// 真实资金的保管与划转由外部支付层完成，这里只做结算侧的对账账户。
type Vault struct {
	mu      sync.Mutex
	balance *big.Int
	payouts map[common.Address]*big.Int
}

// NewVault 创建资金库
func NewVault() *Vault {
	return &Vault{
		balance: new(big.Int),
		payouts: make(map[common.Address]*big.Int),
	}
}

// Deposit 资金入账
func (v *Vault) Deposit(amount *big.Int) {
	if amount == nil || amount.Sign() <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.balance.Add(v.balance, amount)
}

// Balance 当前余额
func (v *Vault) Balance() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return new(big.Int).Set(v.balance)
}

// PaidTo 累计支付给某地址的金额
func (v *Vault) PaidTo(to common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	if p, ok := v.payouts[to]; ok {
		return new(big.Int).Set(p)
	}
	return new(big.Int)
}

// Payout 资金出账
func (v *Vault) Payout(to common.Address, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidConfiguration
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	v.balance.Sub(v.balance, amount)
	paid, ok := v.payouts[to]
	if !ok {
		paid = new(big.Int)
		v.payouts[to] = paid
	}
	paid.Add(paid, amount)
	return nil
}
