package server

import (
	"os"
	"path/filepath"
	"testing"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/internal/engine"
	"roguie-server/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	os.Exit(m.Run())
}

func TestFrameInMainMenuIsBare(t *testing.T) {
	g := engine.NewGame(1)
	frame := buildFrame(g)

	if frame.State != string(domain.StateMainMenu) {
		t.Errorf("expected main menu state, got %s", frame.State)
	}
	if frame.Map != nil || frame.Player != nil {
		t.Error("menu frame must carry no map or player")
	}
}

func TestFrameCarriesMapAndPlayer(t *testing.T) {
	t.Setenv("SAVE_PATH", filepath.Join(t.TempDir(), "savegame.json"))
	g := engine.NewGame(1)
	g.ProcessCommand(engine.Command{Type: engine.CmdNewGame})
	g.Tick(50)

	frame := buildFrame(g)
	if frame.State != string(domain.StateAwaitingInput) {
		t.Fatalf("expected awaiting input, got %s", frame.State)
	}
	if frame.Map == nil || frame.Map.Width != g.Map().Width {
		t.Fatal("frame must carry the live map")
	}
	if frame.Player == nil || frame.Player.MaxHP != 30 {
		t.Error("frame must carry the player panel")
	}
	if len(frame.Log) == 0 {
		t.Error("frame must carry the game log tail")
	}

	found := false
	for _, view := range frame.Entities {
		if view.Glyph == "@" {
			found = true
		}
	}
	if !found {
		t.Error("player glyph must be among the visible entities")
	}
}

func TestFrameHidesHiddenAndUnseenEntities(t *testing.T) {
	t.Setenv("SAVE_PATH", filepath.Join(t.TempDir(), "savegame.json"))
	g := engine.NewGame(1)
	g.ProcessCommand(engine.Command{Type: engine.CmdNewGame})
	g.Tick(50)
	w := g.World()

	pos, _ := ecs.Get[domain.Position](w, g.Player(), domain.CPosition)
	trap := w.Create()
	w.Add(trap, domain.CPosition, &domain.Position{X: pos.X, Y: pos.Y})
	w.Add(trap, domain.CRenderable, &domain.Renderable{Glyph: "^", FG: "#FF0000", BG: "#000000", RenderOrder: 2})
	w.Add(trap, domain.CHidden, &domain.Hidden{})

	for _, view := range buildFrame(g).Entities {
		if view.ID == uint64(trap) {
			t.Fatal("hidden entity must not be sent to the client")
		}
	}
}

func TestFrameListsBackpackAndEquipment(t *testing.T) {
	t.Setenv("SAVE_PATH", filepath.Join(t.TempDir(), "savegame.json"))
	g := engine.NewGame(1)
	g.ProcessCommand(engine.Command{Type: engine.CmdNewGame})
	g.Tick(50)
	w := g.World()

	potion := w.Create()
	w.Add(potion, domain.CName, &domain.Name{Name: "Зелье лечения"})
	w.Add(potion, domain.CInBackpack, &domain.InBackpack{Owner: g.Player()})

	sword := w.Create()
	w.Add(sword, domain.CName, &domain.Name{Name: "Длинный меч"})
	w.Add(sword, domain.CEquipped, &domain.Equipped{Owner: g.Player(), Slot: domain.SlotMelee})

	items := buildFrame(g).Items
	var carried, equipped bool
	for _, item := range items {
		switch item.ID {
		case uint64(potion):
			carried = !item.Equipped
		case uint64(sword):
			equipped = item.Equipped
		}
	}
	if !carried {
		t.Error("backpack item must be listed as carried")
	}
	if !equipped {
		t.Error("equipped item must be flagged as equipped")
	}
}
