package pricing

import (
	"errors"
	"math/big"
)

// Unit 定价精度基数（18位定点数，对应最小货币单位）
var Unit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// ErrInvalidConfiguration 定价配置非法
var ErrInvalidConfiguration = errors.New("pricing: invalid configuration")

// Strategy 定价策略接口
// TokensFor 必须是纯函数：给定贡献金额与当前已募集总额，返回应发放的代币数量。
// 不允许持有可变状态，保证定价可复现、可审计。
type Strategy interface {
	TokensFor(value, raisedTotal *big.Int) *big.Int
}

// FlatPricing 固定汇率定价
// rate 表示每单位基础货币（按 Unit 定点）兑换的代币数量。
type FlatPricing struct {
	rate *big.Int
}

// NewFlatPricing 创建固定汇率定价策略
func NewFlatPricing(rate *big.Int) (*FlatPricing, error) {
	if rate == nil || rate.Sign() <= 0 {
		return nil, ErrInvalidConfiguration
	}
	return &FlatPricing{rate: new(big.Int).Set(rate)}, nil
}

// Rate 返回配置的汇率
func (p *FlatPricing) Rate() *big.Int {
	return new(big.Int).Set(p.rate)
}

// TokensFor 计算贡献对应的代币数量
// tokens = value * rate / Unit，整数向下取整；除不尽的余数不退还。
func (p *FlatPricing) TokensFor(value, _ *big.Int) *big.Int {
	if value == nil || value.Sign() <= 0 {
		return new(big.Int)
	}
	tokens := new(big.Int).Mul(value, p.rate)
	return tokens.Quo(tokens, Unit)
}

// Tranche 定价阶梯：已募集总额达到 Threshold 后按 Rate 计价
type Tranche struct {
	Threshold *big.Int
	Rate      *big.Int
}

// TranchePricing 阶梯定价
// 按当前已募集总额落入的阶梯取汇率，早期贡献享受更优价格。
type TranchePricing struct {
	tranches []Tranche
}

// NewTranchePricing 创建阶梯定价策略
// 阶梯必须按 Threshold 严格递增，首个阶梯从 0 开始，汇率不允许为零或负数。
func NewTranchePricing(tranches []Tranche) (*TranchePricing, error) {
	if len(tranches) == 0 {
		return nil, ErrInvalidConfiguration
	}
	if tranches[0].Threshold == nil || tranches[0].Threshold.Sign() != 0 {
		return nil, ErrInvalidConfiguration
	}
	copied := make([]Tranche, len(tranches))
	for i, t := range tranches {
		if t.Threshold == nil || t.Rate == nil || t.Rate.Sign() <= 0 {
			return nil, ErrInvalidConfiguration
		}
		if i > 0 && t.Threshold.Cmp(tranches[i-1].Threshold) <= 0 {
			return nil, ErrInvalidConfiguration
		}
		copied[i] = Tranche{
			Threshold: new(big.Int).Set(t.Threshold),
			Rate:      new(big.Int).Set(t.Rate),
		}
	}
	return &TranchePricing{tranches: copied}, nil
}

// TokensFor 按落入阶梯的汇率计算代币数量
func (p *TranchePricing) TokensFor(value, raisedTotal *big.Int) *big.Int {
	if value == nil || value.Sign() <= 0 {
		return new(big.Int)
	}
	raised := raisedTotal
	if raised == nil {
		raised = new(big.Int)
	}
	rate := p.tranches[0].Rate
	for _, t := range p.tranches {
		if raised.Cmp(t.Threshold) >= 0 {
			rate = t.Rate
		}
	}
	tokens := new(big.Int).Mul(value, rate)
	return tokens.Quo(tokens, Unit)
}
