package server

import (
	"sort"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/internal/engine"
)

// Frame - снимок состояния игры, уходящий клиенту после каждого тика.
type Frame struct {
	State    string       `json:"state"`
	Map      *MapView     `json:"map,omitempty"`
	Entities []EntityView `json:"entities,omitempty"`
	Player   *PlayerView  `json:"player,omitempty"`
	Items    []ItemView   `json:"items,omitempty"`
	Log      []string     `json:"log,omitempty"`
}

type MapView struct {
	Width       int               `json:"width"`
	Height      int               `json:"height"`
	Depth       int               `json:"depth"`
	Tiles       []domain.TileType `json:"tiles"`
	Revealed    []bool            `json:"revealed"`
	Visible     []bool            `json:"visible"`
	Bloodstains []int             `json:"bloodstains"`
}

type EntityView struct {
	ID    uint64 `json:"id"`
	X     int    `json:"x"`
	Y     int    `json:"y"`
	Glyph string `json:"glyph"`
	FG    string `json:"fg"`
	BG    string `json:"bg"`
	Order int    `json:"order"`
}

type PlayerView struct {
	HP     int    `json:"hp"`
	MaxHP  int    `json:"maxHp"`
	Hunger string `json:"hunger"`
}

// ItemView описывает предмет в рюкзаке или на игроке.
type ItemView struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Equipped bool   `json:"equipped"`
}

// buildFrame собирает снимок для клиента. Во время проигрывания
// генерации вместо боевой карты уходит текущий кадр истории.
func buildFrame(g *engine.Game) Frame {
	frame := Frame{State: string(g.State()), Log: g.LogTail(8)}

	m := g.Map()
	if playback := g.MapgenFrame(); playback != nil {
		m = playback
	}
	if m == nil {
		return frame
	}

	frame.Map = mapView(m)
	frame.Entities = entityViews(g, m)
	frame.Player = playerView(g)
	frame.Items = itemViews(g)
	return frame
}

func mapView(m *domain.GameMap) *MapView {
	bloodstains := make([]int, 0, len(m.Bloodstains))
	for idx := range m.Bloodstains {
		bloodstains = append(bloodstains, idx)
	}
	sort.Ints(bloodstains)

	return &MapView{
		Width:       m.Width,
		Height:      m.Height,
		Depth:       m.Depth,
		Tiles:       m.Tiles,
		Revealed:    m.Revealed,
		Visible:     m.Visible,
		Bloodstains: bloodstains,
	}
}

// entityViews отдает видимые сущности в порядке отрисовки: больший
// render order рисуется раньше, игрок ложится поверх всех.
func entityViews(g *engine.Game, m *domain.GameMap) []EntityView {
	w := g.World()
	var views []EntityView

	for _, e := range w.Join(domain.CPosition, domain.CRenderable) {
		if w.Has(e, domain.CHidden) {
			continue
		}
		pos, _ := ecs.Get[domain.Position](w, e, domain.CPosition)
		if !m.InBounds(pos.X, pos.Y) || !m.Visible[m.Idx(pos.X, pos.Y)] {
			continue
		}
		renderable, _ := ecs.Get[domain.Renderable](w, e, domain.CRenderable)
		views = append(views, EntityView{
			ID:    uint64(e),
			X:     pos.X,
			Y:     pos.Y,
			Glyph: renderable.Glyph,
			FG:    renderable.FG,
			BG:    renderable.BG,
			Order: renderable.RenderOrder,
		})
	}

	sort.Slice(views, func(i, j int) bool { return views[i].Order > views[j].Order })
	return views
}

func playerView(g *engine.Game) *PlayerView {
	w := g.World()
	stats, ok := ecs.Get[domain.CombatStats](w, g.Player(), domain.CCombatStats)
	if !ok {
		return nil
	}
	view := &PlayerView{HP: stats.HP, MaxHP: stats.MaxHP}
	if clock, ok := ecs.Get[domain.HungerClock](w, g.Player(), domain.CHungerClock); ok {
		view.Hunger = string(clock.State)
	}
	return view
}

func itemViews(g *engine.Game) []ItemView {
	w := g.World()
	var views []ItemView

	for _, e := range w.Join(domain.CInBackpack, domain.CName) {
		backpack, _ := ecs.Get[domain.InBackpack](w, e, domain.CInBackpack)
		if backpack.Owner != g.Player() {
			continue
		}
		name, _ := ecs.Get[domain.Name](w, e, domain.CName)
		views = append(views, ItemView{ID: uint64(e), Name: name.Name})
	}
	for _, e := range w.Join(domain.CEquipped, domain.CName) {
		equipped, _ := ecs.Get[domain.Equipped](w, e, domain.CEquipped)
		if equipped.Owner != g.Player() {
			continue
		}
		name, _ := ecs.Get[domain.Name](w, e, domain.CName)
		views = append(views, ItemView{ID: uint64(e), Name: name.Name, Equipped: true})
	}

	sort.Slice(views, func(i, j int) bool { return views[i].ID < views[j].ID })
	return views
}
