package policy

import (
	"errors"
	"time"
)

// ErrInvalidConfiguration 策略配置非法
var ErrInvalidConfiguration = errors.New("policy: invalid configuration")

// Window 销售时间窗口策略
// 只读配置，不持有系统时钟；当前时间由调用方传入，便于测试中自由推进时间。
type Window struct {
	start time.Time
	end   time.Time
}

// NewWindow 创建时间窗口策略
func NewWindow(start, end time.Time) (*Window, error) {
	if !end.After(start) {
		return nil, ErrInvalidConfiguration
	}
	return &Window{start: start, end: end}, nil
}

// IsOpen 窗口是否打开：start <= now < end
func (w *Window) IsOpen(now time.Time) bool {
	return !now.Before(w.start) && now.Before(w.end)
}

// HasEnded 窗口是否已结束：now >= end
func (w *Window) HasEnded(now time.Time) bool {
	return !now.Before(w.end)
}

// Start 窗口开始时间
func (w *Window) Start() time.Time { return w.start }

// End 窗口结束时间
func (w *Window) End() time.Time { return w.end }
