package world

import "container/list"

// inactiveLRU порядок деактивации неактивных чанков, старые в начале
type inactiveLRU struct {
	order *list.List
	items map[ChunkCoord]*list.Element
}

func newInactiveLRU() *inactiveLRU {
	return &inactiveLRU{
		order: list.New(),
		items: make(map[ChunkCoord]*list.Element),
	}
}

// push отмечает чанк как только что деактивированный
func (l *inactiveLRU) push(coord ChunkCoord) {
	if e, ok := l.items[coord]; ok {
		l.order.MoveToBack(e)
		return
	}
	l.items[coord] = l.order.PushBack(coord)
}

func (l *inactiveLRU) remove(coord ChunkCoord) {
	if e, ok := l.items[coord]; ok {
		l.order.Remove(e)
		delete(l.items, coord)
	}
}

// popOldest извлекает дольше всех неактивный чанк
func (l *inactiveLRU) popOldest() (ChunkCoord, bool) {
	e := l.order.Front()
	if e == nil {
		return ChunkCoord{}, false
	}
	coord := l.order.Remove(e).(ChunkCoord)
	delete(l.items, coord)
	return coord, true
}

func (l *inactiveLRU) len() int {
	return l.order.Len()
}
