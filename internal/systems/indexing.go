package systems

import (
	"roguie-server/internal/domain"
)

// RunMapIndexing перестраивает с нуля транзитные индексы карты:
// флаги блокировки (стены + сущности с BlocksTile) и индекс
// содержимого клеток. Выполняется каждый тик до чтения этих данных
// боевыми и предметными системами.
func RunMapIndexing(ctx *Context) {
	ctx.Map.PopulateBlocked()
	ctx.Map.ClearContentIndex()

	for _, e := range ctx.World.Join(domain.CPosition) {
		pos, _ := ecsGet[domain.Position](ctx, e, domain.CPosition)
		if !ctx.Map.InBounds(pos.X, pos.Y) {
			continue
		}
		idx := ctx.Map.Idx(pos.X, pos.Y)

		if ctx.World.Has(e, domain.CBlocksTile) {
			ctx.Map.Blocked[idx] = true
		}

		ctx.Map.TileContent[idx] = append(ctx.Map.TileContent[idx], e)
	}
}
