package config

import (
	"fmt"
)

// 导航参数默认值
const (
	DefaultLookahead   = 2   // 前瞻两步
	DefaultGracePeriod = 5.  // 宽限期5秒
	DefaultTileSize    = 40. // 格子边长40像素
	DefaultSpeed       = 8.  // 每步8像素，即5步走完一格
	DefaultBlinkPeriod = .5  // 闪烁半周期0.5秒
	DefaultInterval    = .2  // 每步0.2秒（5Hz）
)

// RuntimeConfig 运行时配置
// 功能：存储仿真运行时的配置信息，缺省项已填充默认值
// 说明：将YAML配置转换为运行时可用的配置对象
type RuntimeConfig struct {
	All Config     // 全部配置
	C   Control    // 全局控制配置
	N   Navigation // 导航参数（已填充默认值）
}

// NewRuntimeConfig 根据配置初始化运行时配置
// 功能：创建运行时配置对象，填充默认值并进行配置验证
// 参数：config-原始配置对象
// 返回：初始化的运行时配置指针，配置非法时返回error
// 算法说明：
// 1. 复制原始配置
// 2. 对未填写的导航参数与时间步长填充默认值
// 3. 检查取值范围：前瞻步数>=1，宽限期>=0，速度>0，格子边长>0
func NewRuntimeConfig(config Config) (*RuntimeConfig, error) {
	rc := &RuntimeConfig{}

	rc.All = config
	rc.C = config.Control
	if rc.C.Step.Interval == 0 {
		rc.C.Step.Interval = DefaultInterval
	}
	n := config.Control.Navigation
	if n.Lookahead == 0 {
		n.Lookahead = DefaultLookahead
	}
	if n.GracePeriod == 0 {
		n.GracePeriod = DefaultGracePeriod
	}
	if n.TileSize == 0 {
		n.TileSize = DefaultTileSize
	}
	if n.Speed == 0 {
		n.Speed = DefaultSpeed
	}
	if n.BlinkPeriod == 0 {
		n.BlinkPeriod = DefaultBlinkPeriod
	}
	rc.N = n
	rc.C.Navigation = n

	if n.Lookahead < 1 {
		return nil, fmt.Errorf("navigation.lookahead must be >= 1, got %d", n.Lookahead)
	}
	if n.GracePeriod < 0 {
		return nil, fmt.Errorf("navigation.grace_period must be >= 0, got %v", n.GracePeriod)
	}
	if n.Speed <= 0 {
		return nil, fmt.Errorf("navigation.speed must be > 0, got %v", n.Speed)
	}
	if n.TileSize <= 0 {
		return nil, fmt.Errorf("navigation.tile_size must be > 0, got %v", n.TileSize)
	}
	if n.BlinkPeriod <= 0 {
		return nil, fmt.Errorf("navigation.blink_period must be > 0, got %v", n.BlinkPeriod)
	}
	if rc.C.Step.Interval < 0 {
		return nil, fmt.Errorf("step.interval must be > 0, got %v", rc.C.Step.Interval)
	}
	if r := config.Obstacle.Random; r != nil && (r.Probability < 0 || r.Probability > 1) {
		return nil, fmt.Errorf("obstacle.random.probability must be in [0,1], got %v", r.Probability)
	}
	return rc, nil
}
