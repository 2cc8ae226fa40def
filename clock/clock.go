package clock

import (
	"fmt"

	"git.fiblab.net/sim/protos/v2/go/city/clock/v1/clockv1connect"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
)

// Clock 仿真时钟管理器
// 功能：管理仿真系统的时间推进，为导航智能体提供单调时钟
// 说明：维护当前仿真时间、步数等信息，提供时间格式化和RPC服务
type Clock struct {
	clockv1connect.UnimplementedClockServiceHandler

	DT         float64 // 每个模拟步时间间隔（秒）
	START_STEP int32   // 起始步
	END_STEP   int32   // 结束步，模拟区间[START, END)，Total为0时不设上限

	T            float64 // 当前时间（秒）
	InternalStep int32   // 当前内部步数
}

// New 根据配置创建新的时钟实例
// 功能：根据全局配置初始化时钟信息
// 参数：stepConfig-控制步配置，包含时间间隔、起始步和总步数
// 返回：初始化完成的时钟实例
func New(stepConfig config.ControlStep) *Clock {
	endStep := int32(-1)
	if stepConfig.Total > 0 {
		endStep = stepConfig.Start + stepConfig.Total
	}
	c := &Clock{
		DT:         stepConfig.Interval,
		START_STEP: stepConfig.Start,
		END_STEP:   endStep,
	}
	c.Init()
	return c
}

// Init 初始化时钟状态
// 功能：重置内部步数为起始步，重新计算当前时间
func (c *Clock) Init() {
	c.InternalStep = c.START_STEP
	c.T = float64(c.InternalStep) * c.DT
}

// Advance 推进一步
// 功能：内部步数+1并重新计算当前时间
// 说明：T总是由步数乘DT得到，不做累加
func (c *Clock) Advance() {
	c.InternalStep++
	c.T = float64(c.InternalStep) * c.DT
}

// Time 单调时钟读数（秒），供导航智能体计算宽限期与闪烁相位
func (c *Clock) Time() float64 {
	return c.T
}

// Finished 是否已经到达结束步
func (c *Clock) Finished() bool {
	return c.END_STEP >= 0 && c.InternalStep+1 >= c.END_STEP
}

// String 获取时钟的字符串表示
// 功能：将当前时间格式化为可读的字符串
// 返回：格式化的时间字符串（HH:MM:SS.ss）
func (c *Clock) String() string {
	h, m, s := c.GetHourMinuteSecond()
	return fmt.Sprintf("%02d:%02d:%05.2f", h, m, s)
}

// GetHourMinuteSecond 获取当前时间的小时、分钟、秒
// 功能：将当前时间分解为小时、分钟、秒三个部分
// 返回：小时、分钟、秒（秒为浮点数，支持亚秒级精度）
func (c *Clock) GetHourMinuteSecond() (int, int, float64) {
	hour := int(c.T) / 3600
	minute := int(c.T) % 3600 / 60
	second := c.T - float64(hour*3600+minute*60)
	return hour, minute, second
}
