// Package circuitbreaker 实现熔断器模式
//
// 三种状态：
// - CLOSED：正常放行，统计连续失败
// - OPEN：快速失败，不触达下游，给下游恢复时间
// - HALF_OPEN：放行少量探测请求，成功则闭合，失败则重新打开
//
// 本项目用它保护认证链路里的Redis黑名单查询：
// Redis抖动时黑名单检查降级跳过（fail-open），签名与过期校验不受影响
package circuitbreaker

import (
	"errors"
	"sync"
	"time"
)

// ErrOpenState 熔断器处于打开状态
var ErrOpenState = errors.New("circuit breaker is open")

// State 熔断器状态
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "CLOSED"
	case StateOpen:
		return "OPEN"
	case StateHalfOpen:
		return "HALF_OPEN"
	default:
		return "UNKNOWN"
	}
}

// Config 熔断器配置
type Config struct {
	// FailureThreshold 连续失败多少次后熔断
	FailureThreshold uint32

	// Timeout OPEN状态持续时间，到期转HALF_OPEN
	Timeout time.Duration

	// MaxProbes 半开状态允许的探测请求数
	MaxProbes uint32
}

// Counts 统计数据
type Counts struct {
	Requests            uint32
	Successes           uint32
	Failures            uint32
	ConsecutiveFailures uint32
}

func (c *Counts) reset() {
	*c = Counts{}
}

// Breaker 熔断器
// 并发安全，一个实例保护一个下游依赖
type Breaker struct {
	name       string
	cfg        Config
	mu         sync.Mutex
	state      State
	generation uint64 // 每次状态切换递增，丢弃跨代的迟到结果
	counts     Counts
	openedAt   time.Time

	// OnStateChange 状态变化回调（记日志、报指标），可为nil
	OnStateChange func(name string, from, to State)
}

// New 创建熔断器
func New(name string, cfg Config) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxProbes == 0 {
		cfg.MaxProbes = 1
	}
	return &Breaker{
		name:  name,
		cfg:   cfg,
		state: StateClosed,
	}
}

// Execute 在熔断保护下执行请求
// 熔断打开时返回ErrOpenState且不调用req
func (b *Breaker) Execute(req func() error) error {
	gen, err := b.allow()
	if err != nil {
		return err
	}

	err = req()
	b.record(gen, err == nil)
	return err
}

// allow 请求前检查，返回当前代号
func (b *Breaker) allow() (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(time.Now())

	switch b.state {
	case StateOpen:
		return b.generation, ErrOpenState
	case StateHalfOpen:
		if b.counts.Requests >= b.cfg.MaxProbes {
			return b.generation, ErrOpenState
		}
	}

	b.counts.Requests++
	return b.generation, nil
}

// record 请求后记录结果
func (b *Breaker) record(gen uint64, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.refresh(time.Now())

	// 代号不符说明结果属于上一个状态周期，丢弃
	if gen != b.generation {
		return
	}

	if success {
		b.counts.Successes++
		b.counts.ConsecutiveFailures = 0
		if b.state == StateHalfOpen {
			b.transition(StateClosed)
		}
		return
	}

	b.counts.Failures++
	b.counts.ConsecutiveFailures++
	switch b.state {
	case StateClosed:
		if b.counts.ConsecutiveFailures >= b.cfg.FailureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

// refresh 处理OPEN超时到期转半开，调用方必须持有锁
func (b *Breaker) refresh(now time.Time) {
	if b.state == StateOpen && now.Sub(b.openedAt) >= b.cfg.Timeout {
		b.transition(StateHalfOpen)
	}
}

// transition 状态切换，调用方必须持有锁
func (b *Breaker) transition(to State) {
	if b.state == to {
		return
	}
	from := b.state
	b.state = to
	b.generation++
	b.counts.reset()
	if to == StateOpen {
		b.openedAt = time.Now()
	}
	if b.OnStateChange != nil {
		b.OnStateChange(b.name, from, to)
	}
}

// State 当前状态（只读）
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refresh(time.Now())
	return b.state
}

// Counts 当前统计（只读）
func (b *Breaker) Counts() Counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.counts
}
