package systems

import (
	"testing"

	"roguie-server/internal/domain"
)

func TestFOVCenterAlwaysVisible(t *testing.T) {
	ctx := newTestContext()
	visible := computeVisibleTiles(ctx.Map, domain.Position{X: 10, Y: 10}, 8)

	if !visible[ctx.Map.Idx(10, 10)] {
		t.Error("origin tile must be visible")
	}
}

func TestFOVBoundedByRadius(t *testing.T) {
	ctx := newTestContext()
	visible := computeVisibleTiles(ctx.Map, domain.Position{X: 20, Y: 20}, 8)

	if !visible[ctx.Map.Idx(27, 20)] {
		t.Error("tile inside the radius must be visible")
	}
	if visible[ctx.Map.Idx(29, 20)] {
		t.Error("tile outside the radius must not be visible")
	}
}

func TestFOVWallsCastShadows(t *testing.T) {
	ctx := newTestContext()
	ctx.Map.Tiles[ctx.Map.Idx(12, 10)] = domain.TileWall

	visible := computeVisibleTiles(ctx.Map, domain.Position{X: 10, Y: 10}, 8)

	if !visible[ctx.Map.Idx(12, 10)] {
		t.Error("the wall itself must be visible")
	}
	if visible[ctx.Map.Idx(14, 10)] {
		t.Error("tile behind the wall must be shadowed")
	}
}

func TestFOVZeroRangeIsBlind(t *testing.T) {
	ctx := newTestContext()
	visible := computeVisibleTiles(ctx.Map, domain.Position{X: 10, Y: 10}, 0)
	if len(visible) != 0 {
		t.Errorf("blind viewshed should see nothing, saw %d tiles", len(visible))
	}
}

func TestRunVisibilityUpdatesPlayerMaps(t *testing.T) {
	ctx := newTestContext()
	player := spawnTestPlayer(ctx, 10, 10)

	RunVisibility(ctx)

	playerIdx := ctx.Map.Idx(10, 10)
	if !ctx.Map.Visible[playerIdx] || !ctx.Map.Revealed[playerIdx] {
		t.Error("player tile must be visible and revealed")
	}
	viewshed, _ := ecsGet[domain.Viewshed](ctx, player, domain.CViewshed)
	if viewshed.Dirty {
		t.Error("viewshed must be clean after recompute")
	}

	// Повторный прогон без Dirty не пересчитывает.
	ctx.Map.Visible[playerIdx] = false
	RunVisibility(ctx)
	if ctx.Map.Visible[playerIdx] {
		t.Error("clean viewshed must not be recomputed")
	}
}

func TestRunVisibilityRevealsHiddenTraps(t *testing.T) {
	ctx := newTestContext()
	spawnTestPlayer(ctx, 10, 10)

	trap := ctx.World.Create()
	ctx.World.Add(trap, domain.CPosition, &domain.Position{X: 11, Y: 10})
	ctx.World.Add(trap, domain.CName, &domain.Name{Name: "Медвежий капкан"})
	ctx.World.Add(trap, domain.CHidden, &domain.Hidden{})
	// Шанс 1: бросок 1 из 1 всегда успешен.
	ctx.World.Add(trap, domain.CRevealChance, &domain.RevealChance{Chance: 1})

	RunMapIndexing(ctx)
	RunVisibility(ctx)

	if ctx.World.Has(trap, domain.CHidden) {
		t.Error("trap with guaranteed reveal chance must be spotted")
	}
	if !logContains(ctx, "Вы заметили") {
		t.Error("expected a spotted-trap message")
	}
}
