package grid

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

// Grid 楼层栅格世界
// 功能：维护静态墙体层与运行时可变的障碍物层，回答可通行性查询
// 说明：墙体层在构造后不再变化；障碍物层只能通过ToggleObstacle修改，且只对非墙格子生效。
// 本对象是系统中唯一被外部协作方修改的共享状态，修改只允许发生在两个tick之间
type Grid struct {
	cols, rows int
	walls      [][]bool             // walls[y][x]，构造后只读
	obstacles  map[entity.Cell]bool // 障碍物层
}

// New 根据墙体矩阵创建栅格世界
// 功能：拷贝墙体矩阵并初始化空的障碍物层
// 参数：walls-按行存储的墙体矩阵（walls[y][x]为true表示墙）
// 返回：栅格世界，矩阵为空或不规则时返回error
func New(walls [][]bool) (*Grid, error) {
	rows := len(walls)
	if rows == 0 {
		return nil, fmt.Errorf("grid: empty wall matrix")
	}
	cols := len(walls[0])
	if cols == 0 {
		return nil, fmt.Errorf("grid: empty first row")
	}
	g := &Grid{
		cols:      cols,
		rows:      rows,
		walls:     make([][]bool, rows),
		obstacles: make(map[entity.Cell]bool),
	}
	for y, row := range walls {
		if len(row) != cols {
			return nil, fmt.Errorf("grid: row %d has %d columns, want %d", y, len(row), cols)
		}
		g.walls[y] = append([]bool(nil), row...)
	}
	return g, nil
}

// NewOpen 创建没有任何墙体的栅格世界
func NewOpen(cols, rows int) *Grid {
	walls := make([][]bool, rows)
	for y := range walls {
		walls[y] = make([]bool, cols)
	}
	g, err := New(walls)
	if err != nil {
		log.Panicf("open grid %dx%d: %v", cols, rows, err)
	}
	return g
}

func (g *Grid) String() string {
	return fmt.Sprintf("Grid{%dx%d, obstacles=%d}", g.cols, g.rows, len(g.obstacles))
}

// Size 栅格列数与行数
func (g *Grid) Size() (cols, rows int) {
	return g.cols, g.rows
}

// InBounds 是否在 [0,COLS)×[0,ROWS) 范围内
func (g *Grid) InBounds(c entity.Cell) bool {
	return c.X >= 0 && c.X < g.cols && c.Y >= 0 && c.Y < g.rows
}

// IsWall 是否为墙
// 功能：查询静态墙体层
// 返回：越界的格子一律视为墙（失败安全）
func (g *Grid) IsWall(c entity.Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.walls[c.Y][c.X]
}

// IsObstacle 是否为障碍物
func (g *Grid) IsObstacle(c entity.Cell) bool {
	return g.obstacles[c]
}

// IsTraversable 是否可通行
// 功能：非墙且当前不是障碍物
func (g *Grid) IsTraversable(c entity.Cell) bool {
	return !g.IsWall(c) && !g.obstacles[c]
}

// ToggleObstacle 翻转障碍物标记
// 功能：对非墙格子翻转障碍物标记
// 参数：c-格子
// 返回：是否发生变化；墙或越界格子为静默的空操作
func (g *Grid) ToggleObstacle(c entity.Cell) bool {
	if g.IsWall(c) {
		log.Debugf("ignore obstacle toggle on wall or out-of-bounds cell %v", c)
		return false
	}
	if g.obstacles[c] {
		delete(g.obstacles, c)
		log.Debugf("obstacle removed at %v", c)
	} else {
		g.obstacles[c] = true
		log.Debugf("obstacle placed at %v", c)
	}
	return true
}

// Obstacles 障碍物层快照
// 功能：返回当前所有障碍物格子的拷贝
// 说明：按行优先排序，保证输出确定
func (g *Grid) Obstacles() []entity.Cell {
	cells := lo.Keys(g.obstacles)
	sortRowMajor(cells)
	return cells
}

// Corridor 所有非墙格子（障碍物切换的合法范围），行优先有序
func (g *Grid) Corridor() []entity.Cell {
	cells := make([]entity.Cell, 0, g.cols*g.rows)
	for y := 0; y < g.rows; y++ {
		for x := 0; x < g.cols; x++ {
			if !g.walls[y][x] {
				cells = append(cells, entity.Cell{X: x, Y: y})
			}
		}
	}
	return cells
}

// CellAt 像素坐标转换为格子
// 功能：将指针/点击位置按格子边长向下取整为格子坐标
// 参数：px,py-像素坐标，tile-格子边长
// 返回：格子坐标，越界时返回false
func (g *Grid) CellAt(px, py, tile float64) (entity.Cell, bool) {
	if tile <= 0 {
		return entity.Cell{}, false
	}
	c := entity.Cell{
		X: int(math.Floor(px / tile)),
		Y: int(math.Floor(py / tile)),
	}
	return c, g.InBounds(c)
}

func sortRowMajor(cells []entity.Cell) {
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Y != cells[j].Y {
			return cells[i].Y < cells[j].Y
		}
		return cells[i].X < cells[j].X
	})
}
