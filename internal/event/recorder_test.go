package event

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestEventRowDefaultsMissingAmounts(t *testing.T) {
	// 定局事件没有投资人与代币字段
	row := eventRow(Event{
		SaleID:      3,
		Type:        TypeSaleFinalized,
		RaisedTotal: big.NewInt(5000),
		Timestamp:   time.Unix(1700000000, 0),
	})

	assert.Equal(t, uint(3), row.SaleID)
	assert.Equal(t, string(TypeSaleFinalized), row.EventType)
	assert.Empty(t, row.Address)
	// 缺省金额写成 "0"，numeric 列不接受空串
	assert.Equal(t, "0", row.Value)
	assert.Equal(t, "0", row.Tokens)
	assert.Equal(t, "5000", row.Raised)
}

func TestEventRowRejectionWithoutTokens(t *testing.T) {
	investor := common.HexToAddress("0x00000000000000000000000000000000000000C1")
	row := eventRow(Event{
		SaleID:    1,
		Type:      TypeContributionRejected,
		Investor:  investor,
		Value:     big.NewInt(100),
		Reason:    "engine: funding cap exceeded",
		Timestamp: time.Unix(1700000000, 0),
	})

	assert.Equal(t, investor.Hex(), row.Address)
	assert.Equal(t, "100", row.Value)
	assert.Equal(t, "0", row.Tokens)
	assert.Equal(t, "0", row.Raised)
	assert.Equal(t, "engine: funding cap exceeded", row.Reason)
}

func TestEventRowAcceptedContribution(t *testing.T) {
	investor := common.HexToAddress("0x00000000000000000000000000000000000000C1")
	row := eventRow(Event{
		SaleID:      1,
		Type:        TypeContributionAccepted,
		Investor:    investor,
		Value:       big.NewInt(1200),
		Tokens:      big.NewInt(1),
		RaisedTotal: big.NewInt(1200),
		Timestamp:   time.Unix(1700000000, 0),
	})

	assert.Equal(t, "1200", row.Value)
	assert.Equal(t, "1", row.Tokens)
	assert.Equal(t, "1200", row.Raised)
}
