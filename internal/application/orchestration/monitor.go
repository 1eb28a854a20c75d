package orchestration

import (
	"context"
	"time"

	"storyweave-api/pkg/logger"
)

// StatusMonitor 提供商健康监控，周期性探测全部已注册提供商
type StatusMonitor struct {
	orchestrator *Orchestrator
	registry     *Registry
	interval     time.Duration
	stop         chan struct{}
	done         chan struct{}
}

// NewStatusMonitor 创建健康监控
func NewStatusMonitor(orchestrator *Orchestrator, registry *Registry, interval time.Duration) *StatusMonitor {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &StatusMonitor{
		orchestrator: orchestrator,
		registry:     registry,
		interval:     interval,
		stop:         make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start 启动监控循环，立即执行一轮探测后按周期运行
func (m *StatusMonitor) Start(ctx context.Context) {
	go func() {
		defer close(m.done)

		m.checkAll(ctx)

		ticker := time.NewTicker(m.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				m.checkAll(ctx)
			case <-m.stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
	logger.Info(ctx, "provider status monitor started", "interval", m.interval.String())
}

// Stop 停止监控并等待循环退出
func (m *StatusMonitor) Stop() {
	close(m.stop)
	<-m.done
}

// checkAll 探测全部已注册提供商
func (m *StatusMonitor) checkAll(ctx context.Context) {
	for _, name := range m.registry.Names() {
		status, err := m.orchestrator.CheckProviderStatus(ctx, name)
		if err != nil {
			logger.Warn(ctx, "provider status check failed", "provider", name)
			continue
		}
		if !status.IsAvailable {
			logger.Warn(ctx, "provider unavailable", "provider", name,
				"error_rate", status.ErrorRate)
		}
	}
}
