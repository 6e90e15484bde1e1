package dungeon

import (
	"math/rand"

	"roguie-server/pkg/logger"
)

// RandomBuilder выбирает генератор уровня броском 1d7:
// 1 - BSP-подземелье, 2 - BSP-интерьер, 3 - простые комнаты,
// остальное - клеточный автомат.
func RandomBuilder(depth int, rng *rand.Rand) Builder {
	roll := rng.Intn(7) + 1

	var b Builder
	switch roll {
	case 1:
		b = NewBspDungeonBuilder(depth, rng)
	case 2:
		b = NewBspInteriorBuilder(depth, rng)
	case 3:
		b = NewSimpleMapBuilder(depth, rng)
	default:
		b = NewCellularAutomataBuilder(depth, rng)
	}

	logger.WithComponent("dungeon").WithField("roll", roll).
		WithField("depth", depth).Debug("Builder selected.")
	return b
}
