package policy

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWindowValidation(t *testing.T) {
	start := time.Unix(1700000000, 0)

	_, err := NewWindow(start, start)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewWindow(start, start.Add(-time.Hour))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestWindowIsOpen(t *testing.T) {
	start := time.Unix(1700000000, 0)
	end := start.Add(48 * time.Hour)
	w, err := NewWindow(start, end)
	require.NoError(t, err)

	// 开始时刻含，结束时刻不含
	assert.False(t, w.IsOpen(start.Add(-time.Second)))
	assert.True(t, w.IsOpen(start))
	assert.True(t, w.IsOpen(start.Add(time.Second)))
	assert.True(t, w.IsOpen(end.Add(-time.Second)))
	assert.False(t, w.IsOpen(end))
	assert.False(t, w.IsOpen(end.Add(time.Hour)))
}

func TestWindowHasEnded(t *testing.T) {
	start := time.Unix(1700000000, 0)
	end := start.Add(time.Hour)
	w, err := NewWindow(start, end)
	require.NoError(t, err)

	assert.False(t, w.HasEnded(start))
	assert.False(t, w.HasEnded(end.Add(-time.Second)))
	assert.True(t, w.HasEnded(end))
	assert.True(t, w.HasEnded(end.Add(time.Hour)))
}

func TestNewFundingValidation(t *testing.T) {
	_, err := NewFunding(nil, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewFunding(big.NewInt(0), nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	// 上限不允许低于目标
	_, err = NewFunding(big.NewInt(1000), big.NewInt(999))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)

	_, err = NewFunding(big.NewInt(1000), big.NewInt(1000))
	assert.NoError(t, err)
}

func TestFundingGoalReached(t *testing.T) {
	f, err := NewFunding(big.NewInt(1000), nil)
	require.NoError(t, err)

	assert.False(t, f.GoalReached(big.NewInt(999)))
	assert.True(t, f.GoalReached(big.NewInt(1000)))
	assert.True(t, f.GoalReached(big.NewInt(5000)))
	assert.False(t, f.GoalReached(nil))
}

func TestFundingRemainingCapacity(t *testing.T) {
	// 不设上限时容量无限
	f, err := NewFunding(big.NewInt(1000), nil)
	require.NoError(t, err)
	assert.Nil(t, f.RemainingCapacity(big.NewInt(0)))

	capped, err := NewFunding(big.NewInt(1000), big.NewInt(5000))
	require.NoError(t, err)
	assert.Equal(t, int64(5000), capped.RemainingCapacity(big.NewInt(0)).Int64())
	assert.Equal(t, int64(1), capped.RemainingCapacity(big.NewInt(4999)).Int64())
	assert.Equal(t, int64(0), capped.RemainingCapacity(big.NewInt(5000)).Int64())
}

func TestFundingAdmitRejectsWholeContribution(t *testing.T) {
	f, err := NewFunding(big.NewInt(1000), big.NewInt(5000))
	require.NoError(t, err)

	// 恰好到上限可接纳
	assert.NoError(t, f.Admit(big.NewInt(4000), big.NewInt(1000)))

	// 超出上限整笔拒绝，不做部分成交
	assert.ErrorIs(t, f.Admit(big.NewInt(4000), big.NewInt(1001)), ErrCapExceeded)
	assert.ErrorIs(t, f.Admit(big.NewInt(5000), big.NewInt(1)), ErrCapExceeded)
}

func TestFundingAdmitUncapped(t *testing.T) {
	f, err := NewFunding(big.NewInt(1000), nil)
	require.NoError(t, err)

	// 不设上限时任何金额都不会因容量被拒
	huge := new(big.Int).Exp(big.NewInt(10), big.NewInt(30), nil)
	assert.NoError(t, f.Admit(huge, huge))
}

func TestFundingCapReached(t *testing.T) {
	f, err := NewFunding(big.NewInt(1000), big.NewInt(5000))
	require.NoError(t, err)

	assert.False(t, f.CapReached(big.NewInt(4999)))
	assert.True(t, f.CapReached(big.NewInt(5000)))

	uncapped, err := NewFunding(big.NewInt(1000), nil)
	require.NoError(t, err)
	assert.False(t, uncapped.CapReached(big.NewInt(1<<40)))
}
