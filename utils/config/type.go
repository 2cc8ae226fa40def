package config

// InputPath 指定输入数据来源的配置（MongoDB、文件系统）
// 功能：定义楼层平面图输入路径的配置结构，支持多种数据源
// 说明：File优先级高于MongoDB；都未指定时使用内置的医院楼层平面图
type InputPath struct {
	DB   string `yaml:"db,omitempty"`   // 数据库名
	Col  string `yaml:"col,omitempty"`  // 集合名
	Name string `yaml:"name,omitempty"` // 文档名（集合中有多张平面图时按name筛选）
	File string `yaml:"file,omitempty"` // 文件路径（优先级高于MongoDB）
}

// GetDb 获取数据库名
// 功能：返回配置的数据库名称
// 返回：数据库名称字符串
func (p InputPath) GetDb() string {
	return p.DB
}

// GetColl 获取集合名
// 功能：返回配置的集合名称
// 返回：集合名称字符串
func (p InputPath) GetColl() string {
	return p.Col
}

// Input 指定模拟器所有输入数据的配置项
// 功能：定义仿真系统的所有输入数据配置
type Input struct {
	URI string    `yaml:"uri,omitempty"` // MongoDB连接字符串
	Map InputPath `yaml:"map"`           // 楼层平面图
}

// ControlStep 指定模拟器模拟时间范围和间隔的配置项
// 功能：定义仿真时间控制参数
// 说明：Total为0表示不限步数，直到导航会话结束
type ControlStep struct {
	Start    int32   `yaml:"start"`    // 开始步数
	Total    int32   `yaml:"total"`    // 总步数
	Interval float64 `yaml:"interval"` // 每步的时间间隔（秒）
}

// Navigation 导航核心参数
// 功能：定义前瞻窗口、宽限期、移动速度等常量
// 说明：这些值都是配置常量，不随速度或栅格大小推导
type Navigation struct {
	Lookahead   int     `yaml:"lookahead,omitempty"`    // 前瞻步数（检测 path[stepIndex+lookahead]）
	GracePeriod float64 `yaml:"grace_period,omitempty"` // 报警后等待重新规划的宽限期（秒）
	Speed       float64 `yaml:"speed,omitempty"`        // 每步最大移动距离（像素）
	TileSize    float64 `yaml:"tile_size,omitempty"`    // 格子边长（像素）
	BlinkPeriod float64 `yaml:"blink_period,omitempty"` // 报警闪烁半周期（秒）
}

// Position 配置文件中的格子坐标
type Position struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
}

// Control 模拟器控制配置
// 功能：定义仿真系统的核心控制参数
type Control struct {
	Step         ControlStep `yaml:"step"`
	Navigation   Navigation  `yaml:"navigation,omitempty"`
	Start        *Position   `yaml:"start,omitempty"`        // 起点，不填则使用平面图自带的起点
	Destinations []string    `yaml:"destinations,omitempty"` // 依次前往的目的地，为空则由终端交互输入
}

// ScriptedToggle 在指定步数翻转指定格子的障碍物标记
type ScriptedToggle struct {
	Step int32 `yaml:"step"`
	X    int   `yaml:"x"`
	Y    int   `yaml:"y"`
}

// RandomObstacle 随机障碍物配置
type RandomObstacle struct {
	Probability float64 `yaml:"probability"`    // 每步翻转一个随机走廊格子的概率
	Seed        uint64  `yaml:"seed,omitempty"` // 随机种子
}

// Obstacle 障碍物触发方配置
type Obstacle struct {
	Script []ScriptedToggle `yaml:"script,omitempty"`
	Random *RandomObstacle  `yaml:"random,omitempty"`
}

// Websocket 观察端配置
type Websocket struct {
	Addr string `yaml:"addr"` // 监听地址，如 :8081
}

// Output 外部协作方开关
type Output struct {
	Terminal  bool       `yaml:"terminal,omitempty"`  // 启用终端界面（渲染+目的地输入+鼠标放置障碍物）
	Audio     bool       `yaml:"audio,omitempty"`     // 启用声音报警
	Websocket *Websocket `yaml:"websocket,omitempty"` // 启用websocket观察端
}

// Config YAML配置文件的根结构
// 功能：定义整个仿真系统的配置结构
// 说明：包含输入、控制、障碍物、输出等所有配置项
type Config struct {
	Input    Input    `yaml:"input"`              // 输入
	Control  Control  `yaml:"control"`            // 模拟过程控制
	Obstacle Obstacle `yaml:"obstacle,omitempty"` // 障碍物触发
	Output   Output   `yaml:"output,omitempty"`   // 输出
}
