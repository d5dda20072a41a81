package event

import (
	"errors"
	"math/big"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordProcessor 记录收到的事件
type recordProcessor struct {
	mu       sync.Mutex
	name     string
	failWith error
	received []Event
}

func (p *recordProcessor) Name() string { return p.name }

func (p *recordProcessor) Process(e Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.received = append(p.received, e)
	return p.failWith
}

func (p *recordProcessor) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.received)
}

func sampleEvent(t Type) Event {
	return Event{
		SaleID:    1,
		Type:      t,
		Investor:  common.HexToAddress("0x00000000000000000000000000000000000000C1"),
		Value:     big.NewInt(100),
		Timestamp: time.Unix(1700000000, 0),
	}
}

func TestDispatcherDeliversToAllProcessors(t *testing.T) {
	first := &recordProcessor{name: "first"}
	second := &recordProcessor{name: "second"}

	// 单协程保证处理顺序与投递顺序一致
	d, err := NewDispatcher(1, first)
	require.NoError(t, err)
	d.Register(second)

	d.Emit(sampleEvent(TypeContributionAccepted))
	d.Emit(sampleEvent(TypeRefunded))
	d.Close()

	assert.Equal(t, 2, first.count())
	assert.Equal(t, 2, second.count())
	assert.Equal(t, TypeContributionAccepted, first.received[0].Type)
	assert.Equal(t, TypeRefunded, first.received[1].Type)
}

func TestDispatcherProcessorFailureIsIsolated(t *testing.T) {
	failing := &recordProcessor{name: "failing", failWith: errors.New("boom")}
	healthy := &recordProcessor{name: "healthy"}

	d, err := NewDispatcher(2, failing, healthy)
	require.NoError(t, err)

	d.Emit(sampleEvent(TypeSaleFinalized))
	d.Close()

	// 某个处理器失败不影响其余处理器收到事件
	assert.Equal(t, 1, failing.count())
	assert.Equal(t, 1, healthy.count())
}

func TestDispatcherCloseWaitsForInFlight(t *testing.T) {
	p := &recordProcessor{name: "slowish"}
	d, err := NewDispatcher(1, p)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		d.Emit(sampleEvent(TypeContributionAccepted))
	}
	d.Close()

	// Close 返回后所有在途事件已处理完毕
	assert.Equal(t, 50, p.count())
}

func TestDispatcherDefaultPoolSize(t *testing.T) {
	d, err := NewDispatcher(0)
	require.NoError(t, err)
	d.Close()
}
