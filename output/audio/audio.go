// 声音报警：进入ALERTED时循环播放提示音，离开时停止
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
	"github.com/sirupsen/logrus"
)

var log = logrus.WithField("module", "audio")

const (
	sampleRate = beep.SampleRate(44100)
	toneFreq   = 880
	toneOn     = 150 * time.Millisecond
	toneOff    = 100 * time.Millisecond
)

// Beeper 无限长的断续提示音
// 功能：正弦波响on时长、静音off时长，周而复始
type Beeper struct {
	tone     beep.Streamer
	on, off  int // 以采样点计
	position int
}

// NewBeeper 创建断续提示音
func NewBeeper(sr beep.SampleRate, freq int, on, off time.Duration) (*Beeper, error) {
	tone, err := generators.SineTone(sr, float64(freq))
	if err != nil {
		return nil, err
	}
	return &Beeper{tone: tone, on: sr.N(on), off: sr.N(off)}, nil
}

// Stream 实现beep.Streamer，永远返回true
func (b *Beeper) Stream(samples [][2]float64) (n int, ok bool) {
	period := b.on + b.off
	for i := range samples {
		if b.position < b.on {
			b.tone.Stream(samples[i : i+1])
		} else {
			samples[i] = [2]float64{}
		}
		b.position = (b.position + 1) % period
	}
	return len(samples), true
}

// Err 实现beep.Streamer
func (b *Beeper) Err() error {
	return nil
}

// Alarm 报警声音接收方
// 功能：用beep.Ctrl暂停/恢复一个一直在播放的断续提示音
// 说明：扬声器初始化失败时退化为只记录日志
type Alarm struct {
	mtx    sync.Mutex
	ctrl   *beep.Ctrl
	active bool
	lock   func()
	unlock func()
	clear  func()
}

// New 初始化扬声器并开始（暂停状态的）播放
func New() *Alarm {
	beeper, err := NewBeeper(sampleRate, toneFreq, toneOn, toneOff)
	if err != nil {
		log.Warnf("alarm tone unavailable: %v", err)
		return &Alarm{}
	}
	if err := speaker.Init(sampleRate, sampleRate.N(100*time.Millisecond)); err != nil {
		log.Warnf("audio initialization failed, alerts will be silent: %v", err)
		return &Alarm{}
	}
	return newAlarm(beeper, speaker.Play, speaker.Lock, speaker.Unlock, speaker.Clear)
}

func newAlarm(s beep.Streamer, play func(...beep.Streamer), lock, unlock, reset func()) *Alarm {
	a := &Alarm{
		ctrl:   &beep.Ctrl{Streamer: s, Paused: true},
		lock:   lock,
		unlock: unlock,
		clear:  reset,
	}
	play(a.ctrl)
	return a
}

// SetAlert 开始或停止提示音
func (a *Alarm) SetAlert(active bool) {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	if a.active == active {
		return
	}
	a.active = active
	log.Debugf("alarm %v", active)
	if a.ctrl == nil {
		return
	}
	a.lock()
	a.ctrl.Paused = !active
	a.unlock()
}

// Active 提示音是否在播放
func (a *Alarm) Active() bool {
	a.mtx.Lock()
	defer a.mtx.Unlock()
	return a.active
}

// Close 停止提示音并清空扬声器
func (a *Alarm) Close() error {
	a.SetAlert(false)
	if a.ctrl != nil {
		a.clear()
	}
	return nil
}
