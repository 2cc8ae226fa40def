// 外部协作方的组合：一个智能体只持有一个渲染/报警/结果接收方，这里把它们分发给多个实现
package output

import (
	"errors"
	"io"

	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

// Fanout 接收方分发器
// 功能：按各接收方实现的接口分别转发Render、SetAlert、OnArrived/OnTrapped
type Fanout struct {
	renders  []entity.IRenderSink
	alerts   []entity.IAlertSink
	outcomes []entity.IOutcomeSink
	closers  []io.Closer
}

// NewFanout 创建分发器
// 参数：sinks-任意实现了IRenderSink/IAlertSink/IOutcomeSink/io.Closer中一个或多个接口的对象
func NewFanout(sinks ...any) *Fanout {
	f := &Fanout{}
	for _, s := range sinks {
		f.Add(s)
	}
	return f
}

// Add 添加一个接收方，nil被忽略
func (f *Fanout) Add(s any) {
	if s == nil {
		return
	}
	if r, ok := s.(entity.IRenderSink); ok {
		f.renders = append(f.renders, r)
	}
	if a, ok := s.(entity.IAlertSink); ok {
		f.alerts = append(f.alerts, a)
	}
	if o, ok := s.(entity.IOutcomeSink); ok {
		f.outcomes = append(f.outcomes, o)
	}
	if c, ok := s.(io.Closer); ok {
		f.closers = append(f.closers, c)
	}
}

func (f *Fanout) Render(frame entity.Frame) {
	for _, r := range f.renders {
		r.Render(frame)
	}
}

func (f *Fanout) SetAlert(active bool) {
	for _, a := range f.alerts {
		a.SetAlert(active)
	}
}

func (f *Fanout) OnArrived(destination string) {
	for _, o := range f.outcomes {
		o.OnArrived(destination)
	}
}

func (f *Fanout) OnTrapped(destination string) {
	for _, o := range f.outcomes {
		o.OnTrapped(destination)
	}
}

// Close 按添加的逆序关闭所有接收方
func (f *Fanout) Close() error {
	var errs []error
	for i := len(f.closers) - 1; i >= 0; i-- {
		if err := f.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	f.closers = nil
	return errors.Join(errs...)
}
