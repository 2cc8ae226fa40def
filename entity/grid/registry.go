package grid

import (
	"errors"
	"fmt"
	"sort"

	"github.com/samber/lo"
	"github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"
)

// ErrInvalidDestination 目的地名称不在登记表中
var ErrInvalidDestination = errors.New("invalid destination")

// Room 一个可前往的房间
type Room struct {
	Name   string      // 房间名，大小写敏感
	Target entity.Cell // 导航目标格子
	Label  entity.Cell // 标签展示位置（仅用于渲染）
}

// Registry 目的地登记表
// 功能：房间名到目标格子的映射，构造后只读
type Registry struct {
	rooms map[string]Room
	names []string
}

// NewRegistry 创建目的地登记表
// 功能：校验并登记所有房间
// 参数：g-栅格世界（用于校验目标格子），rooms-房间列表
// 返回：登记表；名称为空/重复、目标越界或位于墙上时返回error
func NewRegistry(g entity.IGrid, rooms []Room) (*Registry, error) {
	r := &Registry{
		rooms: make(map[string]Room, len(rooms)),
	}
	for _, room := range rooms {
		if room.Name == "" {
			return nil, fmt.Errorf("registry: room with empty name at %v", room.Target)
		}
		if _, ok := r.rooms[room.Name]; ok {
			return nil, fmt.Errorf("registry: duplicated room %q", room.Name)
		}
		if g.IsWall(room.Target) {
			return nil, fmt.Errorf("registry: room %q target %v is a wall or out of bounds", room.Name, room.Target)
		}
		r.rooms[room.Name] = room
	}
	r.names = lo.Keys(r.rooms)
	sort.Strings(r.names)
	return r, nil
}

// Lookup 按名称查找目标格子
// 功能：大小写敏感、按输入原样匹配
// 返回：目标格子；名称不存在时返回ErrInvalidDestination
func (r *Registry) Lookup(name string) (entity.Cell, error) {
	room, ok := r.rooms[name]
	if !ok {
		return entity.Cell{}, fmt.Errorf("%w: %q", ErrInvalidDestination, name)
	}
	return room.Target, nil
}

// Names 所有房间名（字典序）
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Rooms 所有房间（按名称字典序）
func (r *Registry) Rooms() []Room {
	return lo.Map(r.names, func(name string, _ int) Room {
		return r.rooms[name]
	})
}
