package engine

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/blues/crowdsale/internal/event"
	"github.com/blues/crowdsale/internal/ledger"
	"github.com/blues/crowdsale/internal/policy"
	"github.com/blues/crowdsale/internal/pricing"
)

// 引擎错误分类
// 贡献路径的错误都不改变任何状态，调用方可以调整金额或稍后重试；
// 定局与退款路径的错误同样保证无半途状态。
var (
	ErrInvalidConfiguration = errors.New("engine: invalid configuration")
	ErrSaleNotOpen          = errors.New("engine: sale is not open")
	ErrZeroValue            = errors.New("engine: contribution value must be positive")
	ErrZeroTokens           = errors.New("engine: contribution yields zero tokens")
	ErrInvalidContribution  = errors.New("engine: contribution outside allowed bounds")
	ErrCapExceeded          = errors.New("engine: funding cap exceeded")
	ErrPoolExhausted        = errors.New("engine: token pool exhausted")
	ErrMintingNotAuthorized = errors.New("engine: minting not authorized")
	ErrUnauthorized         = errors.New("engine: caller is not the administrator")
	ErrAlreadyFinalized     = errors.New("engine: sale already finalized")
	ErrGoalNotReached       = errors.New("engine: funding goal not reached")
	ErrRefundNotAvailable   = errors.New("engine: refund not available")
	ErrAlreadyRefunded      = errors.New("engine: investor already refunded")

	errNilTreasury = errors.New("engine: treasury not configured")
)

// State 销售生命周期状态
// 状态不落盘在引擎内，而是每次调用时根据传入的当前时间惰性推导，
// 引擎内部没有任何后台定时器。
type State string

const (
	StatePending   State = "pending"   // 未到开始时间
	StateOpen      State = "open"      // 窗口内且未触及上限
	StateClosed    State = "closed"    // 已过结束时间或触及上限
	StateFinalized State = "finalized" // 管理员已定局，终态
)

// Config 销售配置，部署后不可变
type Config struct {
	SaleID        uint
	Administrator common.Address
	Beneficiary   common.Address
	StartTime     time.Time
	EndTime       time.Time
	Goal          *big.Int // 最低募资目标，最小货币单位
	Cap           *big.Int // 募资上限，nil 表示不设上限

	// 单笔贡献边界，nil 或零表示不限制
	MinContribution *big.Int
	MaxContribution *big.Int
}

// Contribution 单次贡献记录
// 每次贡献尝试都会生成一条记录，接纳与拒绝都保留，供审计回放。
// 记录一经生成不再修改。
type Contribution struct {
	Seq      uint64
	Investor common.Address
	Value    *big.Int
	Tokens   *big.Int
	At       time.Time
	Accepted bool
	Reason   string
}

// Engine 众筹销售结算引擎
// 所有可变状态由引擎独占，全部变更操作在同一把互斥锁下串行执行，
// 上限检查与结算始终观察到一致的快照。
type Engine struct {
	mu sync.Mutex

	cfg      Config
	window   *policy.Window
	funding  *policy.Funding
	strategy pricing.Strategy
	settler  ledger.Settler
	treasury ledger.Treasury
	emitter  event.Emitter

	raisedTotal   *big.Int
	tokensSold    *big.Int
	contributed   map[common.Address]*big.Int
	refunded      map[common.Address]bool
	contributions []*Contribution
	seq           uint64

	finalized   bool
	finalizedAt time.Time
}

// New 创建销售引擎
// 配置在此一次性校验并冻结，之后不再变更。
func New(cfg Config, strategy pricing.Strategy, settler ledger.Settler) (*Engine, error) {
	if strategy == nil || settler == nil {
		return nil, ErrInvalidConfiguration
	}
	if (cfg.Administrator == common.Address{}) {
		return nil, ErrInvalidConfiguration
	}
	window, err := policy.NewWindow(cfg.StartTime, cfg.EndTime)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	funding, err := policy.NewFunding(cfg.Goal, cfg.Cap)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	if cfg.MinContribution != nil && cfg.MaxContribution != nil &&
		cfg.MaxContribution.Sign() > 0 && cfg.MinContribution.Cmp(cfg.MaxContribution) > 0 {
		return nil, ErrInvalidConfiguration
	}
	// 配置冻结：金额与调用方持有的实例脱钩
	cfg.Goal = copyAmount(cfg.Goal)
	cfg.Cap = copyAmount(cfg.Cap)
	cfg.MinContribution = copyAmount(cfg.MinContribution)
	cfg.MaxContribution = copyAmount(cfg.MaxContribution)
	return &Engine{
		cfg:         cfg,
		window:      window,
		funding:     funding,
		strategy:    strategy,
		settler:     settler,
		emitter:     event.NoopEmitter{},
		raisedTotal: new(big.Int),
		tokensSold:  new(big.Int),
		contributed: make(map[common.Address]*big.Int),
		refunded:    make(map[common.Address]bool),
	}, nil
}

// SetEmitter 配置事件发布器，传入 nil 恢复为空实现
func (e *Engine) SetEmitter(emitter event.Emitter) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if emitter == nil {
		e.emitter = event.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetTreasury 配置退款资金出口
func (e *Engine) SetTreasury(treasury ledger.Treasury) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.treasury = treasury
}

// Invest 处理一笔贡献
// 检查顺序：窗口 -> 金额 -> 贡献边界 -> 募资上限 -> 定价 -> 结算。
// 任何一步失败整笔回绝，账本与引擎状态均不变；只有结算成功后
// 才提交募集总额、投资人累计与贡献记录。
func (e *Engine) Invest(investor common.Address, value *big.Int, now time.Time) (*Contribution, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized || !e.window.IsOpen(now) {
		return e.reject(investor, value, now, ErrSaleNotOpen)
	}
	if value == nil || value.Sign() <= 0 {
		return e.reject(investor, value, now, ErrZeroValue)
	}
	if e.cfg.MinContribution != nil && e.cfg.MinContribution.Sign() > 0 && value.Cmp(e.cfg.MinContribution) < 0 {
		return e.reject(investor, value, now, ErrInvalidContribution)
	}
	if e.cfg.MaxContribution != nil && e.cfg.MaxContribution.Sign() > 0 && value.Cmp(e.cfg.MaxContribution) > 0 {
		return e.reject(investor, value, now, ErrInvalidContribution)
	}
	if err := e.funding.Admit(e.raisedTotal, value); err != nil {
		return e.reject(investor, value, now, ErrCapExceeded)
	}

	tokens := e.strategy.TokensFor(value, e.raisedTotal)
	if tokens.Sign() == 0 {
		return e.reject(investor, value, now, ErrZeroTokens)
	}

	// 结算先行：账本调用失败时引擎不留任何记账痕迹
	if err := e.settler.Settle(investor, tokens); err != nil {
		return e.reject(investor, value, now, mapSettleError(err))
	}

	e.raisedTotal.Add(e.raisedTotal, value)
	e.tokensSold.Add(e.tokensSold, tokens)
	total, ok := e.contributed[investor]
	if !ok {
		total = new(big.Int)
		e.contributed[investor] = total
	}
	total.Add(total, value)

	e.seq++
	rec := &Contribution{
		Seq:      e.seq,
		Investor: investor,
		Value:    new(big.Int).Set(value),
		Tokens:   tokens,
		At:       now,
		Accepted: true,
	}
	e.contributions = append(e.contributions, rec)

	e.emitter.Emit(event.Event{
		SaleID:      e.cfg.SaleID,
		Type:        event.TypeContributionAccepted,
		Investor:    investor,
		Value:       new(big.Int).Set(value),
		Tokens:      new(big.Int).Set(tokens),
		RaisedTotal: new(big.Int).Set(e.raisedTotal),
		Timestamp:   now,
	})
	return rec, nil
}

// Finalize 定局销售，冻结状态，不可逆
// 仅管理员可调用，且要求已达到最低募资目标。
func (e *Engine) Finalize(caller common.Address, now time.Time) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if caller != e.cfg.Administrator {
		return ErrUnauthorized
	}
	if e.finalized {
		return ErrAlreadyFinalized
	}
	if !e.funding.GoalReached(e.raisedTotal) {
		return ErrGoalNotReached
	}

	e.finalized = true
	e.finalizedAt = now

	e.emitter.Emit(event.Event{
		SaleID:      e.cfg.SaleID,
		Type:        event.TypeSaleFinalized,
		RaisedTotal: new(big.Int).Set(e.raisedTotal),
		Timestamp:   now,
	})
	return nil
}

// Refund 退还投资人的全部累计贡献
// 仅在销售已关闭或已定局、且未达到募资目标时可用；每个投资人至多退款一次。
func (e *Engine) Refund(investor common.Address, now time.Time) (*big.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.funding.GoalReached(e.raisedTotal) {
		return nil, ErrRefundNotAvailable
	}
	if !e.finalized && !e.window.HasEnded(now) {
		return nil, ErrRefundNotAvailable
	}
	contributed, ok := e.contributed[investor]
	if !ok || contributed.Sign() == 0 {
		return nil, ErrRefundNotAvailable
	}
	if e.refunded[investor] {
		return nil, ErrAlreadyRefunded
	}
	if e.treasury == nil {
		return nil, errNilTreasury
	}

	amount := new(big.Int).Set(contributed)
	if err := e.treasury.Payout(investor, amount); err != nil {
		return nil, fmt.Errorf("refund payout failed: %w", err)
	}
	e.refunded[investor] = true

	e.emitter.Emit(event.Event{
		SaleID:    e.cfg.SaleID,
		Type:      event.TypeRefunded,
		Investor:  investor,
		Value:     new(big.Int).Set(amount),
		Timestamp: now,
	})
	return amount, nil
}

// State 按给定时间推导销售状态
func (e *Engine) State(now time.Time) State {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.finalized {
		return StateFinalized
	}
	if now.Before(e.window.Start()) {
		return StatePending
	}
	if e.window.HasEnded(now) || e.funding.CapReached(e.raisedTotal) {
		return StateClosed
	}
	return StateOpen
}

// RaisedTotal 当前募集总额
func (e *Engine) RaisedTotal() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.raisedTotal)
}

// TokensSold 累计已发放的代币数量
func (e *Engine) TokensSold() *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return new(big.Int).Set(e.tokensSold)
}

// ContributedBy 投资人的累计贡献金额
func (e *Engine) ContributedBy(investor common.Address) *big.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	if total, ok := e.contributed[investor]; ok {
		return new(big.Int).Set(total)
	}
	return new(big.Int)
}

// Refunded 投资人是否已退款
func (e *Engine) Refunded(investor common.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.refunded[investor]
}

// InvestorCount 去重后的投资人数量
func (e *Engine) InvestorCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.contributed)
}

// GoalReached 是否已达到最低募资目标
func (e *Engine) GoalReached() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.funding.GoalReached(e.raisedTotal)
}

// Finalized 是否已定局
func (e *Engine) Finalized() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.finalized
}

// Contributions 全部贡献记录的快照，含被拒绝的尝试
func (e *Engine) Contributions() []*Contribution {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]*Contribution, len(e.contributions))
	copy(out, e.contributions)
	return out
}

// Config 销售配置副本
// 金额字段为深拷贝，调用方修改副本不影响引擎持有的配置。
func (e *Engine) Config() Config {
	cfg := e.cfg
	cfg.Goal = copyAmount(e.cfg.Goal)
	cfg.Cap = copyAmount(e.cfg.Cap)
	cfg.MinContribution = copyAmount(e.cfg.MinContribution)
	cfg.MaxContribution = copyAmount(e.cfg.MaxContribution)
	return cfg
}

func copyAmount(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// reject 记录一次被拒绝的贡献尝试并发布事件，调用方必须持锁
func (e *Engine) reject(investor common.Address, value *big.Int, now time.Time, cause error) (*Contribution, error) {
	v := new(big.Int)
	if value != nil {
		v.Set(value)
	}
	e.seq++
	rec := &Contribution{
		Seq:      e.seq,
		Investor: investor,
		Value:    v,
		Tokens:   new(big.Int),
		At:       now,
		Accepted: false,
		Reason:   cause.Error(),
	}
	e.contributions = append(e.contributions, rec)

	e.emitter.Emit(event.Event{
		SaleID:    e.cfg.SaleID,
		Type:      event.TypeContributionRejected,
		Investor:  investor,
		Value:     new(big.Int).Set(v),
		Reason:    cause.Error(),
		Timestamp: now,
	})
	return rec, cause
}

// mapSettleError 把账本层错误翻译为引擎错误分类
func mapSettleError(err error) error {
	switch {
	case errors.Is(err, ledger.ErrInsufficientPoolBalance),
		errors.Is(err, ledger.ErrInsufficientAllowance),
		errors.Is(err, ledger.ErrInsufficientBalance):
		return ErrPoolExhausted
	case errors.Is(err, ledger.ErrMintingNotAuthorized):
		return ErrMintingNotAuthorized
	default:
		return fmt.Errorf("settlement failed: %w", err)
	}
}
