package ecs

import "fmt"

// Entity - непрозрачный идентификатор сущности с поколением.
// Младшие 32 бита - индекс слота, старшие 32 бита - поколение слота.
// Нулевое значение - "пустая" сущность (Null), валидной никогда не бывает.
type Entity uint64

// Null - несуществующая сущность.
const Null Entity = 0

func makeEntity(index, gen uint32) Entity {
	return Entity(uint64(gen)<<32 | uint64(index))
}

// Index возвращает индекс слота сущности.
func (e Entity) Index() uint32 {
	return uint32(e)
}

// Gen возвращает поколение сущности.
// Если поколение слота ушло вперед - идентификатор "протух" (сущность умерла).
func (e Entity) Gen() uint32 {
	return uint32(e >> 32)
}

func (e Entity) String() string {
	return fmt.Sprintf("e%d.g%d", e.Index(), e.Gen())
}

// ComponentID - числовой идентификатор типа компонента.
// Конкретные значения объявляет пакет domain, порядок закреплен форматом сейва.
type ComponentID uint8

// MaxComponents - верхняя граница числа типов компонентов.
const MaxComponents = 64
