package domain

import (
	"container/heap"
	"math"
)

// pathNode - элемент открытого списка A*.
type pathNode struct {
	idx   int
	f     float64
	index int // позиция в куче
}

type pathHeap []*pathNode

func (h pathHeap) Len() int            { return len(h) }
func (h pathHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h pathHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i]; h[i].index = i; h[j].index = j }
func (h *pathHeap) Push(x interface{}) { n := x.(*pathNode); n.index = len(*h); *h = append(*h, n) }
func (h *pathHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// AStar ищет кратчайший путь по клеткам карты через Exits.
// Возвращает список индексов клеток от start до goal включительно,
// либо nil, если пути нет. Путь длины 1 означает start == goal.
func AStar(m *GameMap, start, goal int) []int {
	if start == goal {
		return []int{start}
	}

	gScore := make(map[int]float64, 64)
	cameFrom := make(map[int]int, 64)
	closed := make(map[int]bool, 64)
	gScore[start] = 0

	open := &pathHeap{}
	heap.Init(open)
	heap.Push(open, &pathNode{idx: start, f: m.Distance(start, goal)})

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.idx == goal {
			// Разматываем путь назад
			path := []int{goal}
			at := goal
			for at != start {
				at = cameFrom[at]
				path = append(path, at)
			}
			// Разворачиваем
			for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
				path[i], path[j] = path[j], path[i]
			}
			return path
		}
		if closed[current.idx] {
			continue
		}
		closed[current.idx] = true

		for _, exit := range m.Exits(current.idx) {
			if closed[exit.Idx] {
				continue
			}
			tentative := gScore[current.idx] + exit.Cost
			if prev, seen := gScore[exit.Idx]; !seen || tentative < prev {
				gScore[exit.Idx] = tentative
				cameFrom[exit.Idx] = current.idx
				heap.Push(open, &pathNode{
					idx: exit.Idx,
					f:   tentative + m.Distance(exit.Idx, goal),
				})
			}
		}
	}

	return nil
}

// Unreachable - дистанция недостижимой клетки в поле расстояний.
const Unreachable = math.MaxFloat64

// DistanceField строит дейкстра-поле расстояний от стартовых клеток.
// Клетки дальше maxDepth и недостижимые клетки получают Unreachable.
// Используется генераторами для ремонта связности и выбора выхода.
func DistanceField(m *GameMap, starts []int, maxDepth float64) []float64 {
	field := make([]float64, len(m.Tiles))
	for i := range field {
		field[i] = Unreachable
	}

	open := &pathHeap{}
	heap.Init(open)
	for _, s := range starts {
		field[s] = 0
		heap.Push(open, &pathNode{idx: s, f: 0})
	}

	for open.Len() > 0 {
		current := heap.Pop(open).(*pathNode)
		if current.f > field[current.idx] {
			continue // устаревшая запись
		}
		for _, exit := range m.Exits(current.idx) {
			d := field[current.idx] + exit.Cost
			if d > maxDepth {
				continue
			}
			if d < field[exit.Idx] {
				field[exit.Idx] = d
				heap.Push(open, &pathNode{idx: exit.Idx, f: d})
			}
		}
	}

	return field
}
