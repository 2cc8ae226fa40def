// 终端界面：基于tcell绘制楼层平面图、路径、障碍物与智能体，
// 提供目的地文本输入，并把鼠标左键点击转换为障碍物翻转请求
package terminal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/grid"
)

// 每个格子在终端中占的列数
const cellWidth = 2

// ErrQuit 用户按下Esc或Ctrl-C
var ErrQuit = errors.New("terminal: quit")

var (
	styleWall     = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite)
	styleCorridor = tcell.StyleDefault.Background(tcell.NewRGBColor(173, 216, 230)).Foreground(tcell.ColorBlack)
	stylePath     = tcell.StyleDefault.Background(tcell.ColorYellow).Foreground(tcell.ColorBlack)
	styleObstacle = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorWhite)
	styleAgent    = tcell.StyleDefault.Background(tcell.ColorBlue).Foreground(tcell.ColorWhite)
	styleLabel    = tcell.StyleDefault.Foreground(tcell.NewRGBColor(173, 216, 230))
	styleAlert    = tcell.StyleDefault.Background(tcell.ColorRed).Foreground(tcell.ColorYellow)
	styleText     = tcell.StyleDefault
)

// Terminal tcell终端界面
// 功能：实现渲染接收方、目的地输入协作方与鼠标点击协作方
// 说明：Render在仿真主循环中调用，事件循环在单独的goroutine中运行，共享状态由mtx保护
type Terminal struct {
	screen  tcell.Screen
	grid    entity.IGrid
	rooms   []grid.Room
	toggles entity.IToggleQueue
	tile    float64

	mtx       sync.Mutex
	prompting bool
	text      []rune
	message   string       // 输入框下方的提示（如目的地不存在）
	last      entity.Frame // 最近一帧，用于输入时重绘
	hasFrame  bool

	submit chan string
	quit   chan struct{}
	once   sync.Once
}

// New 创建终端界面
// 参数：screen-tcell屏幕（已Init），g-栅格，rooms-房间表，toggles-障碍物翻转队列，tile-格子边长
func New(screen tcell.Screen, g entity.IGrid, rooms []grid.Room, toggles entity.IToggleQueue, tile float64) *Terminal {
	screen.EnableMouse()
	return &Terminal{
		screen:  screen,
		grid:    g,
		rooms:   rooms,
		toggles: toggles,
		tile:    tile,
		submit:  make(chan string, 1),
		quit:    make(chan struct{}),
	}
}

// Open 创建并初始化真实终端
func Open(g entity.IGrid, rooms []grid.Room, toggles entity.IToggleQueue, tile float64) (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}
	return New(screen, g, rooms, toggles, tile), nil
}

// Serve 事件循环，直到屏幕关闭或用户退出
func (t *Terminal) Serve() {
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		if !t.HandleEvent(ev) {
			return
		}
	}
}

// Quit 用户请求退出时关闭的channel
func (t *Terminal) Quit() <-chan struct{} {
	return t.quit
}

// HandleEvent 处理一个终端事件
// 返回：false表示用户请求退出
// 算法说明：
// 1. Esc/Ctrl-C：退出
// 2. 输入状态下的按键：Enter提交，Backspace删除，其他字符追加
// 3. 鼠标左键：屏幕坐标换算为像素坐标，落在走廊格子上时加入翻转队列
func (t *Terminal) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			t.once.Do(func() { close(t.quit) })
			return false
		}
		t.handleKey(ev)
	case *tcell.EventMouse:
		if ev.Buttons()&tcell.Button1 == 0 {
			return true
		}
		x, y := ev.Position()
		px := float64(x) / cellWidth * t.tile
		py := float64(y) * t.tile
		if c, ok := t.grid.CellAt(px, py, t.tile); ok && !t.grid.IsWall(c) {
			t.toggles.Push(c)
		}
	case *tcell.EventResize:
		t.screen.Sync()
	}
	return true
}

func (t *Terminal) handleKey(ev *tcell.EventKey) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	if !t.prompting {
		return
	}
	switch ev.Key() {
	case tcell.KeyEnter:
		text := strings.TrimSpace(string(t.text))
		t.text = t.text[:0]
		t.prompting = false
		t.submit <- text
		return
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if len(t.text) > 0 {
			t.text = t.text[:len(t.text)-1]
		}
	case tcell.KeyRune:
		t.text = append(t.text, ev.Rune())
	}
	t.drawLocked()
}

// Prompt 请求用户输入目的地名称
// 参数：ctx-上下文，message-提示信息（如上一次输入不合法的原因）
// 返回：去掉首尾空白的输入；用户退出返回ErrQuit
func (t *Terminal) Prompt(ctx context.Context, message string) (string, error) {
	t.mtx.Lock()
	t.prompting = true
	t.text = t.text[:0]
	t.message = message
	t.drawLocked()
	t.mtx.Unlock()

	select {
	case s := <-t.submit:
		t.mtx.Lock()
		t.message = ""
		t.mtx.Unlock()
		return s, nil
	case <-t.quit:
		return "", ErrQuit
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Render 绘制一帧
func (t *Terminal) Render(frame entity.Frame) {
	t.mtx.Lock()
	defer t.mtx.Unlock()
	t.last = frame
	t.hasFrame = true
	t.drawLocked()
}

// Close 恢复终端
func (t *Terminal) Close() error {
	t.screen.Fini()
	return nil
}

func (t *Terminal) drawLocked() {
	s := t.screen
	s.Clear()
	cols, rows := t.grid.Size()

	// 底图
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			style := styleCorridor
			if t.grid.IsWall(entity.Cell{X: x, Y: y}) {
				style = styleWall
			}
			t.fillCell(x, y, ' ', style)
		}
	}
	f := t.last
	if t.hasFrame {
		for _, c := range f.Path {
			t.fillCell(c.X, c.Y, '·', stylePath)
		}
	}
	for _, c := range t.grid.Obstacles() {
		t.fillCell(c.X, c.Y, 'X', styleObstacle)
	}
	for _, r := range t.rooms {
		row := max(r.Label.Y-1, 0)
		t.drawText(r.Label.X*cellWidth, row, r.Name, styleLabel)
	}
	if t.hasFrame {
		// 渲染位置按半格精度换算到终端列
		ax := int(math.Round(f.Position.X / t.tile * cellWidth))
		ay := int(math.Round(f.Position.Y / t.tile))
		s.SetContent(ax, ay, '@', nil, styleAgent)
		s.SetContent(ax+1, ay, ' ', nil, styleAgent)
		if f.Alert && f.Blink {
			s.SetContent(ax+1, ay, '!', nil, styleAlert)
		}
		status := fmt.Sprintf("step %d  dest %s  state %s  cell %v", f.Step, f.Destination, f.State, f.Cell)
		t.drawText(0, rows, status, styleText)
		if f.Alert && f.Blink {
			t.drawText(len(status)+2, rows, " OBSTACLE AHEAD ", styleAlert)
		}
	}
	if t.prompting {
		t.drawText(0, rows+1, "Enter destination room name: "+string(t.text), styleText)
		names := lo.Map(t.rooms, func(r grid.Room, _ int) string { return r.Name })
		t.drawText(0, rows+2, "Rooms: "+strings.Join(names, " | "), styleText)
		if t.message != "" {
			t.drawText(0, rows+3, t.message, styleAlert)
		}
	}
	s.Show()
}

func (t *Terminal) fillCell(x, y int, r rune, style tcell.Style) {
	t.screen.SetContent(x*cellWidth, y, r, nil, style)
	for i := 1; i < cellWidth; i++ {
		t.screen.SetContent(x*cellWidth+i, y, ' ', nil, style)
	}
}

func (t *Terminal) drawText(x, y int, s string, style tcell.Style) {
	for i, r := range []rune(s) {
		t.screen.SetContent(x+i, y, r, nil, style)
	}
}
