package engine

import (
	"os"
	"path/filepath"
	"testing"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/internal/infrastructure/storage"
	"roguie-server/pkg/logger"
)

func TestMain(m *testing.M) {
	// Initialize the global logger before running any tests
	logger.Init()

	os.Exit(m.Run())
}

// newRunningGame поднимает сессию до первого ожидания ввода.
func newRunningGame(t *testing.T, seed int64) *Game {
	t.Helper()
	t.Setenv("SAVE_PATH", filepath.Join(t.TempDir(), "savegame.json"))

	g := NewGame(seed)
	g.ProcessCommand(Command{Type: CmdNewGame})
	if g.State() != domain.StatePreRun {
		t.Fatalf("expected PreRun after NEWGAME, got %s", g.State())
	}
	g.Tick(50)
	if g.State() != domain.StateAwaitingInput {
		t.Fatalf("expected AwaitingInput after the PreRun tick, got %s", g.State())
	}
	return g
}

func TestNewGameStartsInMainMenu(t *testing.T) {
	g := NewGame(1)
	if g.State() != domain.StateMainMenu {
		t.Errorf("fresh session must sit in the main menu, got %s", g.State())
	}
	if g.Map() != nil {
		t.Error("no map before the first game starts")
	}
	// Тик в меню безопасен и ничего не меняет.
	g.Tick(50)
	if g.State() != domain.StateMainMenu {
		t.Error("ticking the menu must be a no-op")
	}
}

func TestStartNewGamePlacesPlayerOnFloor(t *testing.T) {
	g := newRunningGame(t, 1)

	m := g.Map()
	if m == nil || m.Depth != 1 {
		t.Fatal("expected a depth 1 map after a new game")
	}
	player := g.Player()
	if !g.World().Alive(player) {
		t.Fatal("player entity must exist")
	}
	pos, ok := ecs.Get[domain.Position](g.World(), player, domain.CPosition)
	if !ok {
		t.Fatal("player must have a position")
	}
	if m.Tiles[m.Idx(pos.X, pos.Y)] == domain.TileWall {
		t.Error("player must start on a walkable tile")
	}
	if !m.Visible[m.Idx(pos.X, pos.Y)] {
		t.Error("player tile must be visible after the PreRun pass")
	}
}

func TestWaitCyclesThroughTurns(t *testing.T) {
	g := newRunningGame(t, 1)

	g.ProcessCommand(Command{Type: CmdWait})
	if g.State() != domain.StatePlayerTurn {
		t.Fatalf("expected PlayerTurn after WAIT, got %s", g.State())
	}
	g.Tick(50)
	if g.State() != domain.StateMonsterTurn {
		t.Fatalf("expected MonsterTurn, got %s", g.State())
	}
	g.Tick(50)
	if g.State() != domain.StateAwaitingInput {
		t.Fatalf("expected AwaitingInput, got %s", g.State())
	}
}

func TestCommandsOutOfStateAreIgnored(t *testing.T) {
	g := NewGame(1)
	g.ProcessCommand(Command{Type: CmdWait})
	if g.State() != domain.StateMainMenu {
		t.Error("WAIT in the menu must be ignored")
	}

	running := newRunningGame(t, 1)
	running.ProcessCommand(Command{Type: CmdNewGame})
	if running.State() != domain.StateAwaitingInput {
		t.Error("NEWGAME mid-run must be ignored")
	}
}

func TestMenuStatesOpenAndCancel(t *testing.T) {
	g := newRunningGame(t, 1)

	g.ProcessCommand(Command{Type: CmdInventory})
	if g.State() != domain.StateShowInventory {
		t.Fatalf("expected inventory state, got %s", g.State())
	}
	g.ProcessCommand(Command{Type: CmdCancel})
	if g.State() != domain.StateAwaitingInput {
		t.Fatal("CANCEL must close the inventory without spending a turn")
	}

	g.ProcessCommand(Command{Type: CmdDropMenu})
	if g.State() != domain.StateShowDropItem {
		t.Fatalf("expected drop menu, got %s", g.State())
	}
	g.ProcessCommand(Command{Type: CmdCancel})

	g.ProcessCommand(Command{Type: CmdRemoveMenu})
	if g.State() != domain.StateShowRemoveItem {
		t.Fatalf("expected remove menu, got %s", g.State())
	}
	g.ProcessCommand(Command{Type: CmdCancel})
}

func TestRangedItemGoesThroughTargeting(t *testing.T) {
	g := newRunningGame(t, 1)
	w := g.World()

	scroll := w.Create()
	w.Add(scroll, domain.CName, &domain.Name{Name: "Свиток волшебной стрелы"})
	w.Add(scroll, domain.CItem, &domain.Item{})
	w.Add(scroll, domain.CConsumable, &domain.Consumable{})
	w.Add(scroll, domain.CRanged, &domain.Ranged{Range: 6})
	w.Add(scroll, domain.CInflictsDamage, &domain.InflictsDamage{Damage: 8})
	w.Add(scroll, domain.CInBackpack, &domain.InBackpack{Owner: g.Player()})

	g.ProcessCommand(Command{Type: CmdInventory})
	g.ProcessCommand(Command{Type: CmdUse, Item: uint64(scroll)})
	if g.State() != domain.StateShowTargeting {
		t.Fatalf("ranged item without target must ask for one, got %s", g.State())
	}

	// Невидимая клетка отклоняется, состояние не меняется.
	g.ProcessCommand(Command{Type: CmdTarget, Target: &domain.Position{X: 0, Y: 0}})
	if g.State() != domain.StateShowTargeting {
		t.Fatal("unreachable target must keep the targeting state")
	}

	// Собственная клетка всегда видима и в радиусе.
	pos, _ := ecs.Get[domain.Position](w, g.Player(), domain.CPosition)
	g.ProcessCommand(Command{Type: CmdTarget, Target: &domain.Position{X: pos.X, Y: pos.Y}})
	if g.State() != domain.StatePlayerTurn {
		t.Fatalf("accepted target must spend the turn, got %s", g.State())
	}
	if !w.Has(g.Player(), domain.CWantsToUseItem) {
		t.Error("accepted target must queue the use intent")
	}
}

func TestMoveRejectsNonUnitSteps(t *testing.T) {
	g := newRunningGame(t, 1)
	pos, _ := ecs.Get[domain.Position](g.World(), g.Player(), domain.CPosition)
	startX, startY := pos.X, pos.Y

	// Дельты приходят из клиентского JSON и могут быть любыми.
	for _, step := range []struct{ dx, dy int }{
		{-6, -20}, {2, 0}, {0, -3}, {0, 0},
	} {
		g.ProcessCommand(Command{Type: CmdMove, DX: step.dx, DY: step.dy})
		if pos.X != startX || pos.Y != startY {
			t.Fatalf("step (%d,%d) teleported the player to (%d,%d)", step.dx, step.dy, pos.X, pos.Y)
		}
		if g.State() != domain.StateAwaitingInput {
			t.Fatalf("step (%d,%d) must not spend the turn, got %s", step.dx, step.dy, g.State())
		}
	}
	if g.World().Has(g.Player(), domain.CWantsToMelee) {
		t.Error("oversized step must not open a melee attack")
	}
}

func TestSaveThenLoadRestoresSession(t *testing.T) {
	g := newRunningGame(t, 1)
	path := os.Getenv("SAVE_PATH")

	g.ProcessCommand(Command{Type: CmdSave})
	if g.State() != domain.StateSaveGame {
		t.Fatalf("expected SaveGame, got %s", g.State())
	}
	g.Tick(50)
	if g.State() != domain.StateMainMenu {
		t.Fatalf("expected MainMenu after saving, got %s", g.State())
	}
	if !storage.Exists(path) {
		t.Fatal("save file must exist after SaveGame")
	}

	g.ProcessCommand(Command{Type: CmdLoad})
	if g.State() != domain.StatePreRun {
		t.Fatalf("expected PreRun after loading, got %s", g.State())
	}
	if storage.Exists(path) {
		t.Error("save file is one-shot and must be deleted on load")
	}
	g.Tick(50)
	if g.State() != domain.StateAwaitingInput {
		t.Fatalf("expected AwaitingInput, got %s", g.State())
	}
	if !g.World().Alive(g.Player()) {
		t.Error("loaded session must have a live player")
	}
}

func TestDescendOnlyOnStairs(t *testing.T) {
	g := newRunningGame(t, 1)
	m := g.Map()
	pos, _ := ecs.Get[domain.Position](g.World(), g.Player(), domain.CPosition)

	if m.Tiles[m.Idx(pos.X, pos.Y)] == domain.TileDownStairs {
		t.Skip("player happened to start on the stairs")
	}
	g.ProcessCommand(Command{Type: CmdDescend})
	if g.State() != domain.StateAwaitingInput {
		t.Fatal("descending off the stairs must not spend the turn")
	}

	m.Tiles[m.Idx(pos.X, pos.Y)] = domain.TileDownStairs
	g.ProcessCommand(Command{Type: CmdDescend})
	if g.State() != domain.StateNextLevel {
		t.Fatalf("expected NextLevel, got %s", g.State())
	}
	g.Tick(50)
	if g.State() != domain.StatePreRun {
		t.Fatalf("expected PreRun on the new level, got %s", g.State())
	}
	if g.Map().Depth != 2 {
		t.Errorf("expected depth 2, got %d", g.Map().Depth)
	}
	if !g.World().Alive(g.Player()) {
		t.Error("player must survive the descent")
	}
}

func TestPlayerDeathEndsTheGame(t *testing.T) {
	g := newRunningGame(t, 1)

	domain.AddSufferDamage(g.World(), g.Player(), 999)
	g.ProcessCommand(Command{Type: CmdWait})
	g.Tick(50)

	if g.State() != domain.StateGameOver {
		t.Fatalf("expected GameOver, got %s", g.State())
	}
	// Из финального экрана можно начать заново.
	g.ProcessCommand(Command{Type: CmdNewGame})
	if g.State() != domain.StatePreRun {
		t.Errorf("expected a fresh PreRun, got %s", g.State())
	}
}
