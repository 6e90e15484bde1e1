package engine

import (
	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/internal/infrastructure/storage"
	"roguie-server/pkg/logger"
)

// Command - команда игрока, пришедшая с клиента.
type Command struct {
	Type   string           `json:"type"`
	DX     int              `json:"dx,omitempty"`
	DY     int              `json:"dy,omitempty"`
	Item   uint64           `json:"item,omitempty"`
	Target *domain.Position `json:"target,omitempty"`
}

const (
	CmdNewGame    = "NEWGAME"
	CmdLoad       = "LOAD"
	CmdSave       = "SAVE"
	CmdMove       = "MOVE"
	CmdWait       = "WAIT"
	CmdPickup     = "PICKUP"
	CmdDescend    = "DESCEND"
	CmdInventory  = "INVENTORY"
	CmdDropMenu   = "DROP_MENU"
	CmdRemoveMenu = "REMOVE_MENU"
	CmdUse        = "USE"
	CmdDrop       = "DROP"
	CmdRemove     = "REMOVE"
	CmdTarget     = "TARGET"
	CmdCancel     = "CANCEL"
)

// ProcessCommand применяет команду с учетом текущего состояния хода.
// Команды не по состоянию молча игнорируются: клиент может отставать
// от машины состояний на кадр.
func (g *Game) ProcessCommand(cmd Command) {
	switch g.state {
	case domain.StateMainMenu, domain.StateGameOver:
		switch cmd.Type {
		case CmdNewGame:
			g.StartNewGame()
		case CmdLoad:
			g.loadGame()
		}

	case domain.StateAwaitingInput:
		switch cmd.Type {
		case CmdMove:
			g.tryMovePlayer(cmd.DX, cmd.DY)
		case CmdWait:
			g.state = domain.StatePlayerTurn
		case CmdPickup:
			g.pickupItem()
		case CmdDescend:
			g.tryDescend()
		case CmdSave:
			g.state = domain.StateSaveGame
		case CmdInventory:
			g.state = domain.StateShowInventory
		case CmdDropMenu:
			g.state = domain.StateShowDropItem
		case CmdRemoveMenu:
			g.state = domain.StateShowRemoveItem
		}

	case domain.StateShowInventory:
		switch cmd.Type {
		case CmdUse:
			g.useItem(cmd)
		case CmdCancel:
			g.state = domain.StateAwaitingInput
		}

	case domain.StateShowDropItem:
		switch cmd.Type {
		case CmdDrop:
			if item, ok := g.carriedItem(cmd.Item); ok {
				g.world.Add(g.ctx.Player, domain.CWantsToDropItem, &domain.WantsToDropItem{Item: item})
				g.state = domain.StatePlayerTurn
			}
		case CmdCancel:
			g.state = domain.StateAwaitingInput
		}

	case domain.StateShowRemoveItem:
		switch cmd.Type {
		case CmdRemove:
			if item, ok := g.equippedItem(cmd.Item); ok {
				g.world.Add(g.ctx.Player, domain.CWantsToRemoveItem, &domain.WantsToRemoveItem{Item: item})
				g.state = domain.StatePlayerTurn
			}
		case CmdCancel:
			g.state = domain.StateAwaitingInput
		}

	case domain.StateShowTargeting:
		switch cmd.Type {
		case CmdTarget:
			g.applyTarget(cmd)
		case CmdCancel:
			g.targetingItem = ecs.Null
			g.state = domain.StateAwaitingInput
		}
	}
}

// tryMovePlayer двигает игрока либо конвертирует шаг в атаку, если в
// целевой клетке кто-то с боевыми статами. Шаг в стену тоже тратит ход.
// Смещение не на соседнюю клетку игнорируется: дельты приходят из
// клиентского JSON и ничем не ограничены.
func (g *Game) tryMovePlayer(dx, dy int) {
	m := g.ctx.Map
	pos := g.ctx.PlayerPos
	dest := pos.Shift(dx, dy)
	if !pos.IsAdjacent(dest) {
		return
	}
	g.state = domain.StatePlayerTurn

	if !m.InBounds(dest.X, dest.Y) {
		return
	}
	idx := m.Idx(dest.X, dest.Y)

	for _, other := range m.TileContent[idx] {
		if !g.world.Has(other, domain.CCombatStats) {
			continue
		}
		g.world.Add(g.ctx.Player, domain.CWantsToMelee, &domain.WantsToMelee{Target: other})
		return
	}

	if m.Blocked[idx] {
		return
	}

	pos.X, pos.Y = dest.X, dest.Y
	g.world.Add(g.ctx.Player, domain.CEntityMoved, &domain.EntityMoved{})
	if viewshed, ok := ecs.Get[domain.Viewshed](g.world, g.ctx.Player, domain.CViewshed); ok {
		viewshed.Dirty = true
	}
}

func (g *Game) pickupItem() {
	pos := g.ctx.PlayerPos
	for _, e := range g.world.Join(domain.CItem, domain.CPosition) {
		itemPos, _ := ecs.Get[domain.Position](g.world, e, domain.CPosition)
		if itemPos.X != pos.X || itemPos.Y != pos.Y {
			continue
		}
		g.world.Add(g.ctx.Player, domain.CWantsToPickupItem, &domain.WantsToPickupItem{
			CollectedBy: g.ctx.Player,
			Item:        e,
		})
		g.state = domain.StatePlayerTurn
		return
	}
	g.ctx.Log.Append("Здесь нечего подбирать.")
}

func (g *Game) tryDescend() {
	idx := g.ctx.Map.Idx(g.ctx.PlayerPos.X, g.ctx.PlayerPos.Y)
	if g.ctx.Map.Tiles[idx] != domain.TileDownStairs {
		g.ctx.Log.Append("Отсюда нет пути вниз.")
		return
	}
	g.state = domain.StateNextLevel
}

// useItem применяет предмет из рюкзака. Прицельные предметы без цели
// уводят в режим выбора цели.
func (g *Game) useItem(cmd Command) {
	item, ok := g.carriedItem(cmd.Item)
	if !ok {
		return
	}

	if ranged, isRanged := ecs.Get[domain.Ranged](g.world, item, domain.CRanged); isRanged && cmd.Target == nil {
		g.targetingItem = item
		g.targetingRange = ranged.Range
		g.state = domain.StateShowTargeting
		return
	}

	g.world.Add(g.ctx.Player, domain.CWantsToUseItem, &domain.WantsToUseItem{Item: item, Target: cmd.Target})
	g.state = domain.StatePlayerTurn
}

// applyTarget завершает прицеливание: цель должна быть видимой и в
// пределах дальности предмета.
func (g *Game) applyTarget(cmd Command) {
	if cmd.Target == nil || g.targetingItem == ecs.Null {
		return
	}
	target := *cmd.Target

	if !g.ctx.Map.InBounds(target.X, target.Y) ||
		!g.ctx.Map.Visible[g.ctx.Map.Idx(target.X, target.Y)] ||
		g.ctx.PlayerPos.DistanceTo(target) > float64(g.targetingRange) {
		g.ctx.Log.Append("Цель вне досягаемости.")
		return
	}

	g.world.Add(g.ctx.Player, domain.CWantsToUseItem, &domain.WantsToUseItem{
		Item:   g.targetingItem,
		Target: &target,
	})
	g.targetingItem = ecs.Null
	g.state = domain.StatePlayerTurn
}

// carriedItem проверяет, что маркер указывает на живой предмет в
// рюкзаке игрока.
func (g *Game) carriedItem(raw uint64) (ecs.Entity, bool) {
	item := ecs.Entity(raw)
	if !g.world.Alive(item) {
		return ecs.Null, false
	}
	backpack, ok := ecs.Get[domain.InBackpack](g.world, item, domain.CInBackpack)
	if !ok || backpack.Owner != g.ctx.Player {
		return ecs.Null, false
	}
	return item, true
}

// equippedItem проверяет, что маркер указывает на предмет, надетый на
// игрока.
func (g *Game) equippedItem(raw uint64) (ecs.Entity, bool) {
	item := ecs.Entity(raw)
	if !g.world.Alive(item) {
		return ecs.Null, false
	}
	equipped, ok := ecs.Get[domain.Equipped](g.world, item, domain.CEquipped)
	if !ok || equipped.Owner != g.ctx.Player {
		return ecs.Null, false
	}
	return item, true
}

// loadGame восстанавливает сессию из файла сохранения. Файл после
// загрузки удаляется: сохранение одноразовое.
func (g *Game) loadGame() {
	m, player, err := storage.Load(g.world, g.savePath)
	if err != nil {
		logger.WithComponent("engine").WithField("error", err).Error("Load failed.")
		g.ctx.Log.Append("Не удалось загрузить сохранение.")
		return
	}

	g.ctx.Map = m
	g.ctx.Player = player
	pos, ok := ecs.Get[domain.Position](g.world, player, domain.CPosition)
	if !ok {
		logger.Log.Panicf("engine: loaded player %v has no position", player)
	}
	g.ctx.PlayerPos = pos
	g.ctx.Requests.Reset()

	if err := storage.Delete(g.savePath); err != nil {
		logger.WithComponent("engine").WithField("error", err).Warn("Save cleanup failed.")
	}

	g.ctx.Log.Append("Игра загружена.")
	g.state = domain.StatePreRun
}
