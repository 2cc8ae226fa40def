package input

import (
	"context"
	"fmt"
	"os"

	"git.fiblab.net/general/common/v2/mongoutil"
	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity/grid"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/utils/config"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"gopkg.in/yaml.v2"
)

// RoomSpec 平面图中的房间定义
type RoomSpec struct {
	Name   string       `yaml:"name" bson:"name"`
	Target entity.Cell  `yaml:"target" bson:"target"`                   // 导航目标格子
	Label  *entity.Cell `yaml:"label,omitempty" bson:"label,omitempty"` // 标签位置，不填则与目标相同
}

// FloorPlan 楼层平面图
// 功能：描述静态墙体矩阵、起点与房间表，是构建栅格世界和目的地登记表的唯一输入
// 说明：Matrix[y][x]为0表示可通行，1表示墙，与文件和数据库中的存储格式一致
type FloorPlan struct {
	Name   string      `yaml:"name" bson:"name"`
	Matrix [][]int     `yaml:"matrix" bson:"matrix"`
	Start  entity.Cell `yaml:"start" bson:"start"`
	Rooms  []RoomSpec  `yaml:"rooms" bson:"rooms"`
}

// Input 输入数据
// 功能：存储仿真所需的所有输入数据
type Input struct {
	Plan     *FloorPlan
	Grid     *grid.Grid
	Registry *grid.Registry
	Start    entity.Cell // 起点，配置中的control.start优先
}

// Init 加载输入数据
// 功能：根据配置加载楼层平面图并构建栅格世界与目的地登记表
// 参数：config-配置对象
// 返回：加载完成的输入数据指针
// 算法说明：
// 1. 平面图加载：
//   - 文件加载：input.map.file指定YAML文件
//   - 数据库加载：input.uri与input.map.db/col指定MongoDB集合，按name筛选
//   - 都未指定时使用内置的医院楼层平面图
//
// 2. 构建栅格世界与目的地登记表，校验房间目标格子
// 3. 确定起点：control.start优先，并检查起点不是墙
// 说明：数据错误直接panic，与其他初始化阶段的错误处理方式一致
func Init(config config.Config) *Input {
	var plan *FloorPlan
	switch {
	case config.Input.Map.File != "":
		var err error
		plan, err = LoadFile(config.Input.Map.File)
		if err != nil {
			log.Panicf("failed to load floor plan from file: %v", err)
		}
	case config.Input.URI != "":
		client := mongoutil.NewClient(config.Input.URI)
		defer client.Disconnect(context.Background())
		var err error
		plan, err = LoadMongo(context.Background(), client, config.Input.Map)
		if err != nil {
			log.Panicf("failed to load floor plan from mongo: %v", err)
		}
	default:
		log.Info("no floor plan configured, use built-in hospital")
		plan = Hospital()
	}

	res, err := plan.Build()
	if err != nil {
		log.Panicf("invalid floor plan %q: %v", plan.Name, err)
	}
	if p := config.Control.Start; p != nil {
		res.Start = entity.Cell{X: p.X, Y: p.Y}
	}
	if res.Grid.IsWall(res.Start) {
		log.Panicf("start %v is a wall or out of bounds", res.Start)
	}
	cols, rows := res.Grid.Size()
	log.Infof("floor plan %q: %dx%d, %d corridor cells, %d rooms, start %v",
		plan.Name, cols, rows, len(res.Grid.Corridor()), len(res.Registry.Names()), res.Start)
	return res
}

// LoadFile 从YAML文件加载平面图
// 说明：使用严格模式解析，未知字段视为错误
func LoadFile(path string) (*FloorPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var plan FloorPlan
	if err := yaml.UnmarshalStrict(data, &plan); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if plan.Name == "" {
		plan.Name = path
	}
	return &plan, nil
}

// LoadMongo 从MongoDB集合加载平面图
// 功能：在input.map.db/col指定的集合中查找name匹配的文档，name为空时取第一份文档
func LoadMongo(ctx context.Context, client *mongo.Client, path config.InputPath) (*FloorPlan, error) {
	coll := mongoutil.GetMongoColl(client, path)
	filter := bson.M{}
	if path.Name != "" {
		filter["name"] = path.Name
	}
	log.Infof("start fetching floor plan from %s.%s", path.DB, path.Col)
	var plan FloorPlan
	if err := coll.FindOne(ctx, filter).Decode(&plan); err != nil {
		return nil, fmt.Errorf("find %v in %s.%s: %w", filter, path.DB, path.Col, err)
	}
	log.Infof("finish fetching floor plan %q from %s.%s", plan.Name, path.DB, path.Col)
	return &plan, nil
}

// Build 构建栅格世界与目的地登记表
// 返回：矩阵为空、不规则或含0/1以外的值、房间非法时返回error
func (p *FloorPlan) Build() (*Input, error) {
	walls, err := p.walls()
	if err != nil {
		return nil, err
	}
	g, err := grid.New(walls)
	if err != nil {
		return nil, err
	}
	rooms := lo.Map(p.Rooms, func(r RoomSpec, _ int) grid.Room {
		label := r.Target
		if r.Label != nil {
			label = *r.Label
		}
		return grid.Room{Name: r.Name, Target: r.Target, Label: label}
	})
	reg, err := grid.NewRegistry(g, rooms)
	if err != nil {
		return nil, err
	}
	return &Input{Plan: p, Grid: g, Registry: reg, Start: p.Start}, nil
}

func (p *FloorPlan) walls() ([][]bool, error) {
	walls := make([][]bool, len(p.Matrix))
	for y, row := range p.Matrix {
		walls[y] = make([]bool, len(row))
		for x, v := range row {
			switch v {
			case 0:
			case 1:
				walls[y][x] = true
			default:
				return nil, fmt.Errorf("matrix[%d][%d] = %d, want 0 or 1", y, x, v)
			}
		}
	}
	return walls, nil
}
