package logic

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"github.com/blues/crowdsale/internal/engine"
	"github.com/blues/crowdsale/internal/event"
	"github.com/blues/crowdsale/internal/ledger"
	"github.com/blues/crowdsale/internal/logger"
	"github.com/blues/crowdsale/internal/model"
	"github.com/blues/crowdsale/internal/pricing"
	"github.com/blues/crowdsale/internal/token"
)

// 业务层错误
var (
	ErrSaleNotFound   = errors.New("logic: sale not found")
	ErrInvalidAmount  = errors.New("logic: invalid amount")
	ErrInvalidAddress = errors.New("logic: invalid address")
	ErrInvalidSale    = errors.New("logic: invalid sale configuration")
)

// SaleRuntime 一次销售的运行时装配
// 每个销售持有独立的引擎、代币账本与资金库。
type SaleRuntime struct {
	Engine      *engine.Engine
	Token       *token.Token
	Vault       *ledger.Vault
	Settler     ledger.Settler
	SaleAccount common.Address
	Mode        model.DistributionMode
}

// SaleLogic 销售业务逻辑
// 维护销售的引擎注册表，把引擎结果落库为审计记录。
type SaleLogic struct {
	db      *gorm.DB
	emitter event.Emitter

	mu       sync.RWMutex
	runtimes map[uint]*SaleRuntime
}

// NewSaleLogic 创建销售业务逻辑
func NewSaleLogic(db *gorm.DB, emitter event.Emitter) *SaleLogic {
	if emitter == nil {
		emitter = event.NoopEmitter{}
	}
	return &SaleLogic{
		db:       db,
		emitter:  emitter,
		runtimes: make(map[uint]*SaleRuntime),
	}
}

// LoadSales 启动时从数据库恢复全部销售的引擎
func (s *SaleLogic) LoadSales() error {
	var sales []model.Sale
	if err := s.db.Find(&sales).Error; err != nil {
		return fmt.Errorf("failed to load sales: %w", err)
	}
	for i := range sales {
		sale := &sales[i]
		rt, err := s.buildRuntime(sale)
		if err != nil {
			logger.Error("Failed to rebuild engine for sale %d: %v", sale.ID, err)
			continue
		}
		if err := s.restoreRuntime(sale, rt); err != nil {
			logger.Error("Failed to restore state for sale %d: %v", sale.ID, err)
			continue
		}
		s.mu.Lock()
		s.runtimes[sale.ID] = rt
		s.mu.Unlock()
	}
	logger.Info("Loaded %d sales", len(sales))
	return nil
}

// CreateSale 创建销售并装配引擎
// 引擎构造即配置校验：非法配置在落库前被拒绝。
func (s *SaleLogic) CreateSale(sale *model.Sale) error {
	normalizeSale(sale)

	// 先做一次临时装配校验配置，避免写入无法运行的销售
	probe := *sale
	probe.ID = 1
	if _, err := s.buildRuntime(&probe); err != nil {
		return err
	}

	if err := s.db.Create(sale).Error; err != nil {
		return fmt.Errorf("failed to create sale: %w", err)
	}

	rt, err := s.buildRuntime(sale)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.runtimes[sale.ID] = rt
	s.mu.Unlock()

	logger.Info("Created sale %d (%s), mode=%s goal=%s cap=%s",
		sale.ID, sale.Title, sale.DistributionMode, sale.Goal, sale.Cap)
	return nil
}

// Runtime 获取销售运行时
func (s *SaleLogic) Runtime(saleID uint) (*SaleRuntime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.runtimes[saleID]
	if !ok {
		return nil, ErrSaleNotFound
	}
	return rt, nil
}

// GetSale 查询销售
func (s *SaleLogic) GetSale(saleID uint) (*model.Sale, error) {
	var sale model.Sale
	if err := s.db.First(&sale, saleID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSaleNotFound
		}
		return nil, err
	}
	return &sale, nil
}

// GetSales 分页查询销售列表
func (s *SaleLogic) GetSales(page, pageSize int) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	if err := s.db.Model(&model.Sale{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	if err := s.db.Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&sales).Error; err != nil {
		return nil, 0, err
	}

	return sales, total, nil
}

// FailedSales 查询未达标、进入退款期的销售
func (s *SaleLogic) FailedSales() ([]model.Sale, error) {
	var sales []model.Sale
	if err := s.db.Where("status = ?", model.SaleStatusFailed).Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// Invest 处理一笔贡献
// 引擎先行判定并结算，接纳与拒绝的尝试都会落库；
// 只有接纳的贡献才更新销售累计并生成结算记录。
func (s *SaleLogic) Invest(saleID uint, address, value string, now time.Time) (*model.ContributeRecord, error) {
	rt, err := s.Runtime(saleID)
	if err != nil {
		return nil, err
	}
	investor, err := parseAddress(address)
	if err != nil {
		return nil, err
	}
	amount, err := parseAmount(value)
	if err != nil {
		return nil, err
	}

	rec, investErr := rt.Engine.Invest(investor, amount, now)

	row := &model.ContributeRecord{
		SaleID:   saleID,
		Seq:      rec.Seq,
		Address:  investor.Hex(),
		Value:    rec.Value.String(),
		Tokens:   rec.Tokens.String(),
		Accepted: rec.Accepted,
		Reason:   rec.Reason,
		At:       rec.At,
	}

	if investErr != nil {
		// 拒绝的尝试同样留痕，失败不阻塞拒绝原因返回
		if err := s.db.Create(row).Error; err != nil {
			logger.Error("Failed to persist rejected contribution for sale %d: %v", saleID, err)
		}
		return row, investErr
	}

	rt.Vault.Deposit(rec.Value)

	// 引擎结算不可回退：落库失败时引擎与数据库出现分歧，
	// 只能告警留痕，待重启时由恢复流程以数据库为准对齐
	tx := s.db.Begin()
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	if err := tx.Create(row).Error; err != nil {
		tx.Rollback()
		s.logDivergence(saleID, rec.Seq, err)
		return nil, fmt.Errorf("failed to persist contribution: %w", err)
	}

	settlement := &model.SettlementRecord{
		SaleID:       saleID,
		ContributeID: row.ID,
		Address:      investor.Hex(),
		Tokens:       rec.Tokens.String(),
		Mode:         rt.Mode,
		At:           rec.At,
	}
	if err := tx.Create(settlement).Error; err != nil {
		tx.Rollback()
		s.logDivergence(saleID, rec.Seq, err)
		return nil, fmt.Errorf("failed to persist settlement: %w", err)
	}

	updates := map[string]interface{}{
		"raised_total": rt.Engine.RaisedTotal().String(),
		"tokens_sold":  rt.Engine.TokensSold().String(),
	}
	if err := tx.Model(&model.Sale{}).Where("id = ?", saleID).Updates(updates).Error; err != nil {
		tx.Rollback()
		s.logDivergence(saleID, rec.Seq, err)
		return nil, fmt.Errorf("failed to update sale totals: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		s.logDivergence(saleID, rec.Seq, err)
		return nil, err
	}
	return row, nil
}

// logDivergence 记录已结算但未落库的贡献
func (s *SaleLogic) logDivergence(saleID uint, seq uint64, err error) {
	logger.Error("Sale %d: contribution seq %d settled in engine but not persisted, engine and database diverge until restart: %v",
		saleID, seq, err)
}

// Finalize 定局销售
func (s *SaleLogic) Finalize(saleID uint, caller string, now time.Time) error {
	rt, err := s.Runtime(saleID)
	if err != nil {
		return err
	}
	admin, err := parseAddress(caller)
	if err != nil {
		return err
	}

	if err := rt.Engine.Finalize(admin, now); err != nil {
		return err
	}

	// 定局后放开代币自由转账；失败只告警，销售定局本身已生效
	if err := rt.Token.Release(admin); err != nil && !errors.Is(err, token.ErrAlreadyReleased) {
		logger.Warn("Failed to release token for sale %d: %v", saleID, err)
	}

	if err := s.db.Model(&model.Sale{}).Where("id = ?", saleID).
		Update("status", model.SaleStatusSuccess).Error; err != nil {
		return fmt.Errorf("failed to update sale status: %w", err)
	}
	return nil
}

// Refund 退还投资人的全部累计贡献
func (s *SaleLogic) Refund(saleID uint, address string, now time.Time) (*model.RefundRecord, error) {
	rt, err := s.Runtime(saleID)
	if err != nil {
		return nil, err
	}
	investor, err := parseAddress(address)
	if err != nil {
		return nil, err
	}

	amount, err := rt.Engine.Refund(investor, now)
	if err != nil {
		return nil, err
	}

	row := &model.RefundRecord{
		SaleID:  saleID,
		Address: investor.Hex(),
		Amount:  amount.String(),
		At:      now,
	}
	if err := s.db.Create(row).Error; err != nil {
		return nil, fmt.Errorf("failed to persist refund: %w", err)
	}
	return row, nil
}

// SyncStatuses 把引擎的惰性状态同步到数据库
// 由后台任务周期调用；定局状态由 Finalize 直接写入，这里不覆盖。
func (s *SaleLogic) SyncStatuses(now time.Time) int {
	s.mu.RLock()
	runtimes := make(map[uint]*SaleRuntime, len(s.runtimes))
	for id, rt := range s.runtimes {
		runtimes[id] = rt
	}
	s.mu.RUnlock()

	updated := 0
	for saleID, rt := range runtimes {
		var desired model.SaleStatus
		switch rt.Engine.State(now) {
		case engine.StatePending:
			desired = model.SaleStatusPending
		case engine.StateOpen:
			desired = model.SaleStatusActive
		case engine.StateClosed:
			if rt.Engine.GoalReached() {
				desired = model.SaleStatusClosed // 达标，等待管理员定局
			} else {
				desired = model.SaleStatusFailed // 未达标，进入退款期
			}
		case engine.StateFinalized:
			desired = model.SaleStatusSuccess
		}

		res := s.db.Model(&model.Sale{}).
			Where("id = ? AND status <> ?", saleID, desired).
			Where("status NOT IN ?", []model.SaleStatus{model.SaleStatusSuccess, model.SaleStatusCancelled}).
			Update("status", desired)
		if res.Error != nil {
			logger.Error("Failed to sync status for sale %d: %v", saleID, res.Error)
			continue
		}
		if res.RowsAffected > 0 {
			logger.Info("Sale %d status -> %s", saleID, desired)
			updated++
		}
	}
	return updated
}

// buildRuntime 按销售配置装配引擎、代币账本与结算器
func (s *SaleLogic) buildRuntime(sale *model.Sale) (*SaleRuntime, error) {
	admin, err := parseAddress(sale.AdminAddress)
	if err != nil {
		return nil, err
	}
	beneficiary, err := parseAddress(sale.BeneficiaryAddress)
	if err != nil {
		return nil, err
	}

	goal, err := parseAmount(sale.Goal)
	if err != nil {
		return nil, fmt.Errorf("%w: goal", ErrInvalidSale)
	}
	cap, err := parseOptionalAmount(sale.Cap)
	if err != nil {
		return nil, fmt.Errorf("%w: cap", ErrInvalidSale)
	}
	rate, err := parseAmount(sale.PricingRate)
	if err != nil {
		return nil, fmt.Errorf("%w: pricing rate", ErrInvalidSale)
	}
	minContribution, err := parseOptionalAmount(sale.MinContribution)
	if err != nil {
		return nil, fmt.Errorf("%w: min contribution", ErrInvalidSale)
	}
	maxContribution, err := parseOptionalAmount(sale.MaxContribution)
	if err != nil {
		return nil, fmt.Errorf("%w: max contribution", ErrInvalidSale)
	}

	strategy, err := pricing.NewFlatPricing(rate)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSale, err)
	}

	saleAccount := saleAccountFor(sale.ID)

	var tok *token.Token
	var settler ledger.Settler
	switch sale.DistributionMode {
	case model.DistributionModeTransfer:
		poolSize, err := parseAmount(sale.PoolSize)
		if err != nil {
			return nil, fmt.Errorf("%w: pool size", ErrInvalidSale)
		}
		// 预划拨代币池：管理员持有池子，授权销售账户划转
		tok = token.New(admin, poolSize)
		if err := tok.SetTransferAgent(admin, saleAccount, true); err != nil {
			return nil, err
		}
		if err := tok.Approve(admin, saleAccount, poolSize); err != nil {
			return nil, err
		}
		settler, err = ledger.NewPoolSettler(tok, saleAccount, admin, poolSize)
		if err != nil {
			return nil, err
		}
	case model.DistributionModeMint:
		tok = token.New(admin, nil)
		if err := tok.SetMintAgent(admin, saleAccount, true); err != nil {
			return nil, err
		}
		settler, err = ledger.NewMintSettler(tok, saleAccount)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: unknown distribution mode %q", ErrInvalidSale, sale.DistributionMode)
	}

	cfg := engine.Config{
		SaleID:          sale.ID,
		Administrator:   admin,
		Beneficiary:     beneficiary,
		StartTime:       sale.StartTime,
		EndTime:         sale.EndTime,
		Goal:            goal,
		Cap:             cap,
		MinContribution: minContribution,
		MaxContribution: maxContribution,
	}
	eng, err := engine.New(cfg, strategy, settler)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSale, err)
	}

	vault := ledger.NewVault()
	eng.SetTreasury(vault)
	eng.SetEmitter(s.emitter)

	return &SaleRuntime{
		Engine:      eng,
		Token:       tok,
		Vault:       vault,
		Settler:     settler,
		SaleAccount: saleAccount,
		Mode:        sale.DistributionMode,
	}, nil
}

// restoreRuntime 用数据库记录恢复引擎与资金库状态
func (s *SaleLogic) restoreRuntime(sale *model.Sale, rt *SaleRuntime) error {
	var contributions []model.ContributeRecord
	if err := s.db.Where("sale_id = ?", sale.ID).
		Order("seq ASC").Find(&contributions).Error; err != nil {
		return err
	}
	var refunds []model.RefundRecord
	if err := s.db.Where("sale_id = ?", sale.ID).Find(&refunds).Error; err != nil {
		return err
	}

	snap, tokensBy, err := snapshotFromRecords(sale, contributions)
	if err != nil {
		return err
	}

	// 代币账本随进程重建，按投资人重放已发放的代币，
	// 使余额与池子余量同落库记录一致
	for addr, sold := range tokensBy {
		if sold.Sign() <= 0 {
			continue
		}
		if err := rt.Settler.Settle(addr, sold); err != nil {
			return fmt.Errorf("settlement replay failed for %s: %w", addr.Hex(), err)
		}
	}

	// 资金库余额 = 已募集 - 已退款
	rt.Vault.Deposit(snap.RaisedTotal)
	for _, r := range refunds {
		addr, err := parseAddress(r.Address)
		if err != nil {
			return fmt.Errorf("corrupt refund record %d: %w", r.ID, err)
		}
		amount, err := parseAmount(r.Amount)
		if err != nil {
			return fmt.Errorf("corrupt refund record %d: %w", r.ID, err)
		}
		snap.Refunded[addr] = true
		if err := rt.Vault.Payout(addr, amount); err != nil {
			return fmt.Errorf("refund replay failed for record %d: %w", r.ID, err)
		}
	}

	if err := rt.Engine.Restore(snap); err != nil {
		return err
	}

	// 已定局的销售恢复代币的放行状态
	if snap.Finalized {
		if err := rt.Token.Release(rt.Engine.Config().Administrator); err != nil && !errors.Is(err, token.ErrAlreadyReleased) {
			logger.Warn("Failed to re-release token for sale %d: %v", sale.ID, err)
		}
	}
	return nil
}

// snapshotFromRecords 由落库的贡献记录重建引擎快照
// 序号恢复为全部尝试（含被拒绝的）的最大值，金额只累计被接纳的贡献；
// 返回各投资人的累计代币发放量，供结算重放使用。
func snapshotFromRecords(sale *model.Sale, records []model.ContributeRecord) (engine.Snapshot, map[common.Address]*big.Int, error) {
	snap := engine.Snapshot{
		RaisedTotal: new(big.Int),
		TokensSold:  new(big.Int),
		Contributed: make(map[common.Address]*big.Int),
		Refunded:    make(map[common.Address]bool),
		Finalized:   sale.Status == model.SaleStatusSuccess,
	}
	tokensBy := make(map[common.Address]*big.Int)
	for _, c := range records {
		if c.Seq > snap.Seq {
			snap.Seq = c.Seq
		}
		if !c.Accepted {
			continue
		}
		value, err := parseAmount(c.Value)
		if err != nil {
			return engine.Snapshot{}, nil, fmt.Errorf("corrupt contribution record %d: %w", c.ID, err)
		}
		tokens, err := parseAmount(c.Tokens)
		if err != nil {
			return engine.Snapshot{}, nil, fmt.Errorf("corrupt contribution record %d: %w", c.ID, err)
		}
		addr, err := parseAddress(c.Address)
		if err != nil {
			return engine.Snapshot{}, nil, fmt.Errorf("corrupt contribution record %d: %w", c.ID, err)
		}
		snap.RaisedTotal.Add(snap.RaisedTotal, value)
		snap.TokensSold.Add(snap.TokensSold, tokens)
		total, ok := snap.Contributed[addr]
		if !ok {
			total = new(big.Int)
			snap.Contributed[addr] = total
		}
		total.Add(total, value)
		sold, ok := tokensBy[addr]
		if !ok {
			sold = new(big.Int)
			tokensBy[addr] = sold
		}
		sold.Add(sold, tokens)
	}
	return snap, tokensBy, nil
}

// normalizeSale 填充状态默认值，空的可选金额统一写成 "0"
// numeric 列不接受空串，落库前必须归一
func normalizeSale(sale *model.Sale) {
	if sale.Status == "" {
		sale.Status = model.SaleStatusPending
	}
	for _, field := range []*string{
		&sale.RaisedTotal,
		&sale.TokensSold,
		&sale.Cap,
		&sale.MinContribution,
		&sale.MaxContribution,
		&sale.PoolSize,
	} {
		if *field == "" {
			*field = "0"
		}
	}
}

// saleAccountFor 销售自身的结算账户地址，由销售ID派生
func saleAccountFor(saleID uint) common.Address {
	return common.BigToAddress(new(big.Int).SetUint64(uint64(saleID) + 0x5a1e0000))
}
