package logic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blues/crowdsale/internal/model"
)

func TestNormalizeSaleFillsOptionalAmounts(t *testing.T) {
	sale := &model.Sale{
		Title:       "测试销售",
		Goal:        "1000",
		PricingRate: "1000000000000000000",
	}
	normalizeSale(sale)

	// 可选金额不允许留空串，numeric 列会拒绝
	assert.Equal(t, model.SaleStatusPending, sale.Status)
	assert.Equal(t, "0", sale.RaisedTotal)
	assert.Equal(t, "0", sale.TokensSold)
	assert.Equal(t, "0", sale.Cap)
	assert.Equal(t, "0", sale.MinContribution)
	assert.Equal(t, "0", sale.MaxContribution)
	assert.Equal(t, "0", sale.PoolSize)
}

func TestNormalizeSaleKeepsExplicitValues(t *testing.T) {
	sale := &model.Sale{
		Goal:        "1000",
		Cap:         "5000",
		PoolSize:    "300",
		RaisedTotal: "42",
		Status:      model.SaleStatusActive,
	}
	normalizeSale(sale)

	assert.Equal(t, model.SaleStatusActive, sale.Status)
	assert.Equal(t, "5000", sale.Cap)
	assert.Equal(t, "300", sale.PoolSize)
	assert.Equal(t, "42", sale.RaisedTotal)
}

func TestSnapshotFromRecordsSeqCoversRejectedAttempts(t *testing.T) {
	sale := &model.Sale{Status: model.SaleStatusActive}
	sale.ID = 7
	investorA := "0x00000000000000000000000000000000000000C1"
	investorB := "0x00000000000000000000000000000000000000C2"
	at := time.Unix(1700000000, 0)

	records := []model.ContributeRecord{
		{SaleID: 7, Seq: 1, Address: investorA, Value: "100", Tokens: "50", Accepted: true, At: at},
		{SaleID: 7, Seq: 2, Address: investorB, Value: "9999", Tokens: "0", Accepted: false, Reason: "engine: funding cap exceeded", At: at},
		{SaleID: 7, Seq: 3, Address: investorA, Value: "200", Tokens: "80", Accepted: true, At: at},
		// 最后一次尝试被拒绝，序号仍然被占用
		{SaleID: 7, Seq: 4, Address: investorB, Value: "0", Tokens: "0", Accepted: false, Reason: "engine: contribution value must be positive", At: at},
	}

	snap, tokensBy, err := snapshotFromRecords(sale, records)
	require.NoError(t, err)

	// 序号恢复必须覆盖被拒绝的尝试，重启后不会复用
	assert.Equal(t, uint64(4), snap.Seq)

	// 金额只累计被接纳的贡献
	assert.Equal(t, "300", snap.RaisedTotal.String())
	assert.Equal(t, "130", snap.TokensSold.String())
	require.Len(t, snap.Contributed, 1)
	require.Len(t, tokensBy, 1)
	for _, total := range snap.Contributed {
		assert.Equal(t, "300", total.String())
	}
	for _, sold := range tokensBy {
		assert.Equal(t, "130", sold.String())
	}
	assert.False(t, snap.Finalized)
}

func TestSnapshotFromRecordsCorruptValue(t *testing.T) {
	sale := &model.Sale{}
	records := []model.ContributeRecord{
		{Seq: 1, Address: "0x00000000000000000000000000000000000000C1", Value: "not-a-number", Tokens: "0", Accepted: true},
	}
	_, _, err := snapshotFromRecords(sale, records)
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestSnapshotFromRecordsFinalizedSale(t *testing.T) {
	sale := &model.Sale{Status: model.SaleStatusSuccess}
	snap, _, err := snapshotFromRecords(sale, nil)
	require.NoError(t, err)
	assert.True(t, snap.Finalized)
	assert.Equal(t, uint64(0), snap.Seq)
}
