package entity

// 外部协作方依赖倒置：展示、音频、结果通知都不属于导航核心

// 报警信号接收方，驱动循环播放的声音/视觉提示
type IAlertSink interface {
	SetAlert(active bool)
}

// 渲染接收方，每个tick接收一次Frame
type IRenderSink interface {
	Render(frame Frame)
}

// 结果接收方，每次导航请求进入终态时恰好通知一次
type IOutcomeSink interface {
	OnArrived(destination string)
	OnTrapped(destination string)
}

// 障碍物切换请求的接收方（鼠标点击、远程观察端等）
type IToggleQueue interface {
	Push(c Cell)
}
