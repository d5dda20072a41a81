package event

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Type 事件类型
type Type string

const (
	TypeContributionAccepted Type = "ContributionAccepted" // 贡献被接纳并完成结算
	TypeContributionRejected Type = "ContributionRejected" // 贡献被拒绝，状态未变更
	TypeSaleFinalized        Type = "SaleFinalized"        // 销售已定局
	TypeRefunded             Type = "Refunded"             // 投资人已退款
)

// Event 销售引擎对外发布的审计事件
// 金额字段在事件产生时即拷贝定值，后续引擎状态变化不会影响已发布的事件。
type Event struct {
	SaleID      uint
	Type        Type
	Investor    common.Address
	Value       *big.Int
	Tokens      *big.Int
	RaisedTotal *big.Int
	Reason      string
	Timestamp   time.Time
}

// Emitter 事件发布接口
type Emitter interface {
	Emit(e Event)
}

// NoopEmitter 空实现，未接入事件管道时的默认发布器
type NoopEmitter struct{}

// Emit 丢弃事件
func (NoopEmitter) Emit(Event) {}
