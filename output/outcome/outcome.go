// 导航结果记录：每次导航请求进入终态时记录日志并保存结果
package outcome

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

var log = logrus.WithField("module", "outcome")

// Result 一次导航请求的结果
type Result struct {
	Destination string
	State       entity.AgentState // ARRIVED或TRAPPED
	T           float64           // 进入终态的仿真时间
}

// Recorder 结果接收方
type Recorder struct {
	clock entity.IClock

	mu      sync.Mutex
	results []Result
}

// New 创建结果接收方
func New(clock entity.IClock) *Recorder {
	return &Recorder{clock: clock}
}

func (r *Recorder) OnArrived(destination string) {
	r.record(destination, entity.AgentState_ARRIVED)
	log.WithField("destination", destination).Infof("wheelchair reached %s at t=%.2f", destination, r.clock.Time())
}

func (r *Recorder) OnTrapped(destination string) {
	r.record(destination, entity.AgentState_TRAPPED)
	log.WithField("destination", destination).Warnf("wheelchair is trapped on the way to %s at t=%.2f", destination, r.clock.Time())
}

func (r *Recorder) record(destination string, state entity.AgentState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, Result{Destination: destination, State: state, T: r.clock.Time()})
}

// Results 目前为止的所有结果（按发生顺序）
func (r *Recorder) Results() []Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Result(nil), r.results...)
}
