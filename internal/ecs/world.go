package ecs

import (
	"roguie-server/pkg/logger"
)

// World - хранилище всех сущностей и их компонентов.
//
// Компоненты лежат в разреженных таблицах map[индекс_слота]any по типам.
// Сущность определяется только набором компонентов, которые она несет.
// Структурные изменения во время прохода систем откладываются:
// DestroyDeferred ставит удаление в очередь, Commit выполняет её разом
// в конце тика (иначе итерация по Join ломается).
type World struct {
	gens  []uint32
	alive []bool
	free  []uint32

	stores [MaxComponents]map[uint32]any

	pendingKill []Entity
}

// NewWorld создает пустой мир.
func NewWorld() *World {
	return &World{}
}

// Create создает новую сущность и возвращает её идентификатор.
// Слоты переиспользуются, но поколение растет, поэтому старый
// идентификатор никогда не укажет на новую сущность.
func (w *World) Create() Entity {
	var idx uint32
	if n := len(w.free); n > 0 {
		idx = w.free[n-1]
		w.free = w.free[:n-1]
	} else {
		idx = uint32(len(w.gens))
		w.gens = append(w.gens, 1) // поколение начинается с 1, чтобы Entity != Null
		w.alive = append(w.alive, false)
	}
	w.alive[idx] = true
	return makeEntity(idx, w.gens[idx])
}

// Alive сообщает, жива ли сущность (слот занят и поколение совпадает).
func (w *World) Alive(e Entity) bool {
	idx := e.Index()
	if int(idx) >= len(w.gens) {
		return false
	}
	return w.alive[idx] && w.gens[idx] == e.Gen()
}

// Add вешает компонент на сущность. Добавление к мертвой сущности -
// ошибка программирования, а не штатная ситуация: падаем громко.
func (w *World) Add(e Entity, id ComponentID, c any) {
	if !w.Alive(e) {
		logger.Log.Panicf("ecs: Add(%v, %d) on a dead entity", e, id)
	}
	if w.stores[id] == nil {
		w.stores[id] = make(map[uint32]any)
	}
	w.stores[id][e.Index()] = c
}

// Component возвращает компонент сущности, если он есть.
func (w *World) Component(e Entity, id ComponentID) (any, bool) {
	if !w.Alive(e) {
		return nil, false
	}
	c, ok := w.stores[id][e.Index()]
	return c, ok
}

// Has проверяет наличие компонента у сущности.
func (w *World) Has(e Entity, id ComponentID) bool {
	_, ok := w.Component(e, id)
	return ok
}

// Remove снимает компонент с сущности. Отсутствие компонента - не ошибка.
func (w *World) Remove(e Entity, id ComponentID) {
	if !w.Alive(e) {
		return
	}
	delete(w.stores[id], e.Index())
}

// Destroy немедленно удаляет сущность и все её компоненты.
// Использовать только вне прохода систем (загрузка сейва, явные убийства
// в конце тика). Внутри систем - DestroyDeferred.
func (w *World) Destroy(e Entity) {
	if !w.Alive(e) {
		return
	}
	idx := e.Index()
	for id := range w.stores {
		delete(w.stores[id], idx)
	}
	w.alive[idx] = false
	w.gens[idx]++
	w.free = append(w.free, idx)
}

// DestroyDeferred ставит удаление сущности в очередь до ближайшего Commit.
func (w *World) DestroyDeferred(e Entity) {
	w.pendingKill = append(w.pendingKill, e)
}

// Commit выполняет все отложенные структурные изменения.
// Вызывается планировщиком один раз за тик, после всех систем.
func (w *World) Commit() {
	for _, e := range w.pendingKill {
		w.Destroy(e)
	}
	w.pendingKill = w.pendingKill[:0]
}

// Join возвращает все сущности, несущие КАЖДЫЙ из перечисленных компонентов
// (inner join). Порядок детерминированный - по индексу слота.
func (w *World) Join(ids ...ComponentID) []Entity {
	var out []Entity
	for idx := 0; idx < len(w.gens); idx++ {
		if !w.alive[idx] {
			continue
		}
		ok := true
		for _, id := range ids {
			if _, has := w.stores[id][uint32(idx)]; !has {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, makeEntity(uint32(idx), w.gens[idx]))
		}
	}
	return out
}

// Entities возвращает все живые сущности в порядке слотов.
func (w *World) Entities() []Entity {
	return w.Join()
}

// Count возвращает число живых сущностей.
func (w *World) Count() int {
	n := 0
	for idx := range w.alive {
		if w.alive[idx] {
			n++
		}
	}
	return n
}

// Clear немедленно удаляет все сущности (подготовка к загрузке сейва).
// Два прохода: сначала собираем, потом удаляем, чтобы не менять
// таблицы под итерацией.
func (w *World) Clear() {
	all := w.Entities()
	for _, e := range all {
		w.Destroy(e)
	}
	w.pendingKill = w.pendingKill[:0]
}

// Get возвращает типизированный указатель на компонент сущности.
// Компоненты всегда хранятся указателями, поэтому мутация через
// результат видна всем.
func Get[T any](w *World, e Entity, id ComponentID) (*T, bool) {
	c, ok := w.Component(e, id)
	if !ok {
		return nil, false
	}
	v, ok := c.(*T)
	if !ok {
		logger.Log.Panicf("ecs: component %d of %v has unexpected type %T", id, e, c)
	}
	return v, true
}
