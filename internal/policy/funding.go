package policy

import (
	"errors"
	"math/big"
)

// ErrCapExceeded 贡献会使募集总额超过上限
var ErrCapExceeded = errors.New("policy: funding cap exceeded")

// Funding 募资约束策略
// goal 为最低募资目标（必须大于 0），cap 为募资上限（nil 表示不设上限）。
// 目标与上限相互独立：不设上限的销售同样可以要求最低目标。
type Funding struct {
	goal *big.Int
	cap  *big.Int
}

// NewFunding 创建募资策略
func NewFunding(goal, cap *big.Int) (*Funding, error) {
	if goal == nil || goal.Sign() <= 0 {
		return nil, ErrInvalidConfiguration
	}
	if cap != nil && cap.Cmp(goal) < 0 {
		return nil, ErrInvalidConfiguration
	}
	f := &Funding{goal: new(big.Int).Set(goal)}
	if cap != nil {
		f.cap = new(big.Int).Set(cap)
	}
	return f, nil
}

// Goal 最低募资目标
func (f *Funding) Goal() *big.Int { return new(big.Int).Set(f.goal) }

// Cap 募资上限，nil 表示不设上限
func (f *Funding) Cap() *big.Int {
	if f.cap == nil {
		return nil
	}
	return new(big.Int).Set(f.cap)
}

// GoalReached 是否已达到最低募资目标
func (f *Funding) GoalReached(raisedTotal *big.Int) bool {
	return raisedTotal != nil && raisedTotal.Cmp(f.goal) >= 0
}

// RemainingCapacity 剩余可募集额度，nil 表示无限
func (f *Funding) RemainingCapacity(raisedTotal *big.Int) *big.Int {
	if f.cap == nil {
		return nil
	}
	raised := raisedTotal
	if raised == nil {
		raised = new(big.Int)
	}
	remaining := new(big.Int).Sub(f.cap, raised)
	if remaining.Sign() < 0 {
		return new(big.Int)
	}
	return remaining
}

// CapReached 募集总额是否已触及上限
func (f *Funding) CapReached(raisedTotal *big.Int) bool {
	return f.cap != nil && raisedTotal != nil && raisedTotal.Cmp(f.cap) >= 0
}

// Admit 判定贡献是否可接纳
// 策略固定为整笔拒绝：若 raisedTotal + value 超过上限，整笔贡献拒绝，
// 不做部分成交，也不找零。
func (f *Funding) Admit(raisedTotal, value *big.Int) error {
	if f.cap == nil {
		return nil
	}
	raised := raisedTotal
	if raised == nil {
		raised = new(big.Int)
	}
	next := new(big.Int).Add(raised, value)
	if next.Cmp(f.cap) > 0 {
		return ErrCapExceeded
	}
	return nil
}
