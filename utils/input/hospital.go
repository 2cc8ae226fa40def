package input

import "github.com/tsinghua-fib-lab/agentsociety-indoor-nav/entity"

// 内置医院楼层平面图，20列x15行，0为走廊，1为墙
var hospitalMatrix = [][]int{
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{0, 1, 1, 1, 1, 0, 0, 1, 1, 1, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 0, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1},
	{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 0, 0, 1},
	{0, 0, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1},
	{0, 1, 1, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1},
	{0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1, 1, 1},
	{0, 1, 1, 1, 1, 0, 1, 1, 1, 1, 1, 1, 1, 1, 0, 0, 1, 1, 1, 1},
	{0, 1, 1, 1, 0, 0, 0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
	{0, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1, 1},
}

// Hospital 内置医院楼层平面图
// 说明：每次调用返回独立副本，起点为左上角(0,0)
func Hospital() *FloorPlan {
	matrix := make([][]int, len(hospitalMatrix))
	for y, row := range hospitalMatrix {
		matrix[y] = append([]int(nil), row...)
	}
	label := func(x, y int) *entity.Cell { return &entity.Cell{X: x, Y: y} }
	return &FloorPlan{
		Name:   "hospital",
		Matrix: matrix,
		Start:  entity.Cell{X: 0, Y: 0},
		Rooms: []RoomSpec{
			{Name: "ICU", Target: entity.Cell{X: 5, Y: 1}},
			{Name: "Doctor's Room", Target: entity.Cell{X: 11, Y: 1}},
			{Name: "Restroom", Target: entity.Cell{X: 18, Y: 6}},
			{Name: "Pharmacy", Target: entity.Cell{X: 14, Y: 12}},
			{Name: "Patient's Room", Target: entity.Cell{X: 4, Y: 13}, Label: label(1, 13)},
			{Name: "Nurses Room", Target: entity.Cell{X: 6, Y: 13}},
		},
	}
}
