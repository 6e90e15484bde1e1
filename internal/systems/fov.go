package systems

import (
	"fmt"

	"roguie-server/internal/domain"
	"roguie-server/pkg/logger"
)

// Мультипликаторы для трансформации координат в 8 октантов
var multipliers = [4][8]int{
	{1, 0, 0, -1, -1, 0, 0, 1},
	{0, 1, -1, 0, 0, -1, 1, 0},
	{0, 1, 1, 0, 0, -1, -1, 0},
	{1, 0, 0, 1, -1, 0, 0, -1},
}

// RunVisibility пересчитывает поле зрения всех сущностей с "грязным"
// Viewshed. Для игрока дополнительно обновляет глобальные массивы
// revealed/visible карты и пробует обнаружить скрытые сущности в зоне
// видимости (бросок 1 из RevealChance).
func RunVisibility(ctx *Context) {
	fovLogger := logger.WithComponent("fov_system")

	for _, e := range ctx.World.Join(domain.CViewshed, domain.CPosition) {
		viewshed, _ := ecsGet[domain.Viewshed](ctx, e, domain.CViewshed)
		if !viewshed.Dirty {
			continue
		}
		pos, _ := ecsGet[domain.Position](ctx, e, domain.CPosition)

		viewshed.Dirty = false
		viewshed.VisibleTiles = computeVisibleTiles(ctx.Map, *pos, viewshed.Range)

		fovLogger.WithField("visible_tiles", len(viewshed.VisibleTiles)).
			Debug("FOV recalculated.")

		if !ctx.World.Has(e, domain.CPlayer) {
			continue
		}

		// Игрок: сбрасываем глобальную видимость и открываем новое.
		for i := range ctx.Map.Visible {
			ctx.Map.Visible[i] = false
		}
		for idx := range viewshed.VisibleTiles {
			ctx.Map.Revealed[idx] = true
			ctx.Map.Visible[idx] = true

			// Пробуем заметить скрытое на видимой клетке.
			for _, other := range ctx.Map.TileContent[idx] {
				if !ctx.World.Has(other, domain.CHidden) {
					continue
				}
				reveal, ok := ecsGet[domain.RevealChance](ctx, other, domain.CRevealChance)
				if !ok {
					continue
				}
				if ctx.RNG.Intn(reveal.Chance)+1 == 1 {
					if name, ok := ecsGet[domain.Name](ctx, other, domain.CName); ok {
						ctx.Log.Append(fmt.Sprintf("Вы заметили: %s.", name.Name))
					}
					ctx.World.Remove(other, domain.CHidden)
				}
			}
		}
	}
}

// computeVisibleTiles возвращает мапу индексов видимых клеток.
// Рекурсивный shadowcasting по 8 октантам, обрезанный радиусом и
// границами карты.
func computeVisibleTiles(m *domain.GameMap, pos domain.Position, radius int) map[int]bool {
	visibleMap := make(map[int]bool)
	if radius <= 0 {
		return visibleMap // Слепой
	}

	// Центр всегда виден
	visibleMap[m.Idx(pos.X, pos.Y)] = true

	for i := 0; i < 8; i++ {
		castLight(m, pos.X, pos.Y, 1, 1.0, 0.0, radius,
			multipliers[0][i], multipliers[1][i],
			multipliers[2][i], multipliers[3][i], visibleMap)
	}

	return visibleMap
}

func castLight(m *domain.GameMap, cx, cy, row int, start, end float64, radius, xx, xy, yx, yy int, visibleMap map[int]bool) {
	if start < end {
		return
	}

	radiusSq := float64(radius * radius)

	for j := row; j <= radius; j++ {
		dx, dy := -j-1, -j
		blocked := false
		newStart := start

		for {
			dx++
			if dx > 0 {
				break
			}
			dy = -j

			// Расчет наклонов (Slopes)
			lSlope := (float64(dx) - 0.5) / (float64(dy) + 0.5)
			rSlope := (float64(dx) + 0.5) / (float64(dy) - 0.5)

			if start < rSlope {
				continue
			}
			if end > lSlope {
				break
			}

			// Трансформация координат в глобальные
			gx := cx + dx*xx + dy*xy
			gy := cy + dx*yx + dy*yy

			// Проверка границ и радиуса
			if m.InBounds(gx, gy) {
				if float64(dx*dx+dy*dy) < radiusSq {
					visibleMap[m.Idx(gx, gy)] = true
				}
			}

			if blocked {
				// Мы идем вдоль стены...
				if isBlockingSight(m, gx, gy) {
					newStart = rSlope
					continue
				}
				// Стена кончилась, началась пустота
				blocked = false
				start = newStart
			} else {
				// Мы шли по пустоте и наткнулись на стену
				if isBlockingSight(m, gx, gy) && j < radius {
					blocked = true
					castLight(m, cx, cy, j+1, start, lSlope, radius, xx, xy, yx, yy, visibleMap)
					newStart = rSlope
				}
			}
		}
		if blocked {
			break
		}
	}
}

// isBlockingSight проверяет, блокирует ли клетка взгляд.
// Выход за границы считается блокирующим.
func isBlockingSight(m *domain.GameMap, x, y int) bool {
	if !m.InBounds(x, y) {
		return true
	}
	return m.IsOpaque(m.Idx(x, y))
}
