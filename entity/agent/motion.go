package agent

import (
	"math"

	"git.fiblab.net/general/common/v2/geometry"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

// 剩余距离与速度比较时的容差
const motionEpsilon = 1e-9

// Motion 运动插值器
// 功能：把离散的"前往下一格"转换为以有限速度连续前进的渲染位置
// 说明：纯几何计算，从不查询可通行性；渲染位置只用于展示，不参与障碍物和到达判断
type Motion struct {
	tileSize float64 // 格子边长
	speed    float64 // 每步最大移动距离

	pos geometry.Point // 当前渲染位置

	// 当前线段
	hasTarget bool
	target    entity.Cell    // 线段终点格子
	origin    geometry.Point // 线段起点
	length    float64        // 线段长度
	moved     int            // 已经移动的步数
}

// NewMotion 创建运动插值器
// 参数：start-初始格子，tileSize-格子边长，speed-每步最大移动距离（>0）
// 返回：渲染位置位于start标准位置的插值器
func NewMotion(start entity.Cell, tileSize, speed float64) *Motion {
	m := &Motion{
		tileSize: tileSize,
		speed:    speed,
	}
	m.pos = m.CanonicalPosition(start)
	return m
}

// CanonicalPosition 格子的标准位置（左上角像素坐标）
func (m *Motion) CanonicalPosition(c entity.Cell) geometry.Point {
	return geometry.Point{X: float64(c.X) * m.tileSize, Y: float64(c.Y) * m.tileSize}
}

// Position 当前渲染位置
func (m *Motion) Position() geometry.Point {
	return m.pos
}

// AtRest 渲染位置是否恰好停在格子c的标准位置
func (m *Motion) AtRest(c entity.Cell) bool {
	p := m.CanonicalPosition(c)
	return m.pos.X == p.X && m.pos.Y == p.Y
}

// Advance 向目标格子推进一步
// 功能：沿直线向target的标准位置移动至多speed距离
// 参数：target-目标格子
// 返回：done-是否已到达（到达时位置精确等于目标标准位置）
// 算法说明：
// 1. target与当前线段终点不同时，以当前位置为起点重新建立线段
// 2. 剩余距离 = 线段长度 - 已移动步数*speed；剩余距离<=speed时直接吸附到目标并返回true
// 3. 否则位置 = Blend(起点, 终点, 已移动步数*speed/线段长度)，返回false
// 说明：位置总是由起点与步数计算得到，不做累加，因此距离d恰好需要ceil(d/speed)步且不会越过目标
func (m *Motion) Advance(target entity.Cell) (done bool) {
	end := m.CanonicalPosition(target)
	if !m.hasTarget || m.target != target {
		m.hasTarget = true
		m.target = target
		m.origin = m.pos
		m.length = math.Hypot(end.X-m.origin.X, end.Y-m.origin.Y)
		m.moved = 0
	}
	remaining := m.length - float64(m.moved)*m.speed
	if remaining <= m.speed+motionEpsilon {
		m.pos = end
		m.hasTarget = false
		return true
	}
	m.moved++
	m.pos = geometry.Blend(m.origin, end, float64(m.moved)*m.speed/m.length)
	return false
}

// Reset 把渲染位置放回格子c的标准位置并丢弃当前线段
func (m *Motion) Reset(c entity.Cell) {
	m.pos = m.CanonicalPosition(c)
	m.hasTarget = false
}
