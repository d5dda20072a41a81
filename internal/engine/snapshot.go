package engine

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Snapshot 引擎状态快照
// 服务重启时用持久化记录重建引擎，不重放结算。
type Snapshot struct {
	RaisedTotal *big.Int
	TokensSold  *big.Int
	Contributed map[common.Address]*big.Int
	Refunded    map[common.Address]bool
	Seq         uint64
	Finalized   bool
	FinalizedAt time.Time
}

// Restore 从快照恢复引擎状态
// 只允许对尚无任何状态的新引擎调用一次。
func (e *Engine) Restore(snap Snapshot) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.raisedTotal.Sign() != 0 || e.seq != 0 || e.finalized || len(e.contributed) != 0 {
		return ErrInvalidConfiguration
	}

	if snap.RaisedTotal != nil {
		if snap.RaisedTotal.Sign() < 0 {
			return ErrInvalidConfiguration
		}
		e.raisedTotal.Set(snap.RaisedTotal)
	}
	if snap.TokensSold != nil {
		if snap.TokensSold.Sign() < 0 {
			return ErrInvalidConfiguration
		}
		e.tokensSold.Set(snap.TokensSold)
	}
	sum := new(big.Int)
	for investor, total := range snap.Contributed {
		if total == nil || total.Sign() < 0 {
			return ErrInvalidConfiguration
		}
		e.contributed[investor] = new(big.Int).Set(total)
		sum.Add(sum, total)
	}
	// 恢复的投资人累计必须与募集总额对账一致
	if sum.Cmp(e.raisedTotal) != 0 {
		e.contributed = make(map[common.Address]*big.Int)
		e.raisedTotal.SetInt64(0)
		e.tokensSold.SetInt64(0)
		return ErrInvalidConfiguration
	}
	for investor, done := range snap.Refunded {
		if done {
			e.refunded[investor] = true
		}
	}
	e.seq = snap.Seq
	e.finalized = snap.Finalized
	e.finalizedAt = snap.FinalizedAt
	return nil
}
