package ledger

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Settler 代币结算接口
// 两种发放模式共用同一个结算入口，模式在销售部署时一次性选定，
// 引擎内部不再出现按模式分支的逻辑。
type Settler interface {
	Settle(investor common.Address, tokens *big.Int) error
}

// PoolSettler 转账模式结算器
// 从预先划拨给销售的代币池中转出代币，累计发放量不允许超过池子大小。
type PoolSettler struct {
	token     TokenLedger
	sale      common.Address // 销售自身账户，代币池的 spender
	poolOwner common.Address // 代币池持有方（通常是团队多签）
	poolSize  *big.Int
	settled   *big.Int
}

// NewPoolSettler 创建转账模式结算器
func NewPoolSettler(token TokenLedger, sale, poolOwner common.Address, poolSize *big.Int) (*PoolSettler, error) {
	if token == nil || poolSize == nil || poolSize.Sign() <= 0 {
		return nil, ErrInvalidConfiguration
	}
	return &PoolSettler{
		token:     token,
		sale:      sale,
		poolOwner: poolOwner,
		poolSize:  new(big.Int).Set(poolSize),
		settled:   new(big.Int),
	}, nil
}

// Remaining 池中剩余可发放的代币数量
func (s *PoolSettler) Remaining() *big.Int {
	return new(big.Int).Sub(s.poolSize, s.settled)
}

// Settle 从代币池转出代币给投资人
func (s *PoolSettler) Settle(investor common.Address, tokens *big.Int) error {
	if tokens.Cmp(s.Remaining()) > 0 {
		return ErrInsufficientPoolBalance
	}
	if err := s.token.TransferFrom(s.sale, s.poolOwner, investor, tokens); err != nil {
		return err
	}
	s.settled.Add(s.settled, tokens)
	return nil
}

// MintSettler 铸造模式结算器
// 贡献发生时按需铸造新代币；铸币授权随时可能被代币侧撤销，
// 每次结算前重新检查授权。
type MintSettler struct {
	token TokenLedger
	sale  common.Address
}

// NewMintSettler 创建铸造模式结算器
func NewMintSettler(token TokenLedger, sale common.Address) (*MintSettler, error) {
	if token == nil {
		return nil, ErrInvalidConfiguration
	}
	return &MintSettler{token: token, sale: sale}, nil
}

// Settle 为投资人铸造代币
func (s *MintSettler) Settle(investor common.Address, tokens *big.Int) error {
	if !s.token.IsMintAgent(s.sale) {
		return ErrMintingNotAuthorized
	}
	return s.token.Mint(s.sale, investor, tokens)
}
