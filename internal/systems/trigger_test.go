package systems

import (
	"testing"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
)

func spawnTestTrap(ctx *Context, x, y int) ecs.Entity {
	trap := ctx.World.Create()
	ctx.World.Add(trap, domain.CPosition, &domain.Position{X: x, Y: y})
	ctx.World.Add(trap, domain.CName, &domain.Name{Name: "Медвежий капкан"})
	ctx.World.Add(trap, domain.CHidden, &domain.Hidden{})
	ctx.World.Add(trap, domain.CEntryTrigger, &domain.EntryTrigger{})
	ctx.World.Add(trap, domain.CInflictsDamage, &domain.InflictsDamage{Damage: 6})
	ctx.World.Add(trap, domain.CSingleActivation, &domain.SingleActivation{})
	return trap
}

func TestTriggerDamagesTheMover(t *testing.T) {
	ctx := newTestContext()
	victim := spawnFighter(ctx, "Герой", 5, 5, 30, 2, 5)
	trap := spawnTestTrap(ctx, 5, 5)
	ctx.World.Add(victim, domain.CEntityMoved, &domain.EntityMoved{})

	RunMapIndexing(ctx)
	RunTriggers(ctx)

	dmg, ok := ecsGet[domain.SufferDamage](ctx, victim, domain.CSufferDamage)
	if !ok || len(dmg.Amounts) != 1 || dmg.Amounts[0] != 6 {
		t.Fatalf("expected mover to take 6 damage, got %+v", dmg)
	}
	if ctx.World.Has(trap, domain.CHidden) {
		t.Error("fired trap must lose its hidden marker")
	}
	if ctx.World.Has(victim, domain.CEntityMoved) {
		t.Error("moved markers must be cleared at the end of the pass")
	}
	if !logContains(ctx, "срабатывает") {
		t.Error("expected a trigger message in the game log")
	}
}

func TestSingleActivationFiresOnce(t *testing.T) {
	ctx := newTestContext()
	victim := spawnFighter(ctx, "Герой", 5, 5, 30, 2, 5)
	trap := spawnTestTrap(ctx, 5, 5)

	ctx.World.Add(victim, domain.CEntityMoved, &domain.EntityMoved{})
	RunMapIndexing(ctx)
	RunTriggers(ctx)
	RunDamage(ctx)
	ctx.World.Commit()

	if ctx.World.Alive(trap) {
		t.Fatal("single-activation trap must be destroyed on commit")
	}

	// Повторный заход на клетку безопасен.
	ctx.World.Add(victim, domain.CEntityMoved, &domain.EntityMoved{})
	RunMapIndexing(ctx)
	RunTriggers(ctx)
	RunDamage(ctx)

	stats, _ := ecsGet[domain.CombatStats](ctx, victim, domain.CCombatStats)
	if stats.HP != 24 {
		t.Errorf("expected a single 6-damage hit, HP = %d", stats.HP)
	}
}

func TestTriggerIgnoresStandingStill(t *testing.T) {
	ctx := newTestContext()
	victim := spawnFighter(ctx, "Герой", 5, 5, 30, 2, 5)
	spawnTestTrap(ctx, 5, 5)

	RunMapIndexing(ctx)
	RunTriggers(ctx)

	if ctx.World.Has(victim, domain.CSufferDamage) {
		t.Error("trap must only fire on entry, not on standing")
	}
}

func TestPeriodicHidingToggles(t *testing.T) {
	ctx := newTestContext()
	trap := spawnTestTrap(ctx, 5, 5)
	ctx.World.Remove(trap, domain.CHidden) // видимая и взведенная
	ctx.World.Add(trap, domain.CPeriodicHiding, &domain.PeriodicHiding{Period: 4, Offset: 3})

	// Счетчик доходит до нуля: ловушка прячется и разряжается.
	RunPeriodicHiding(ctx)
	if !ctx.World.Has(trap, domain.CHidden) || ctx.World.Has(trap, domain.CEntryTrigger) {
		t.Fatal("expected the trap to go hidden and inert on wrap")
	}

	// Три тика тишины, на четвертом - снова видимая и взведенная.
	for i := 0; i < 3; i++ {
		RunPeriodicHiding(ctx)
		if !ctx.World.Has(trap, domain.CHidden) {
			t.Fatal("trap must stay hidden mid-cycle")
		}
	}
	RunPeriodicHiding(ctx)
	if ctx.World.Has(trap, domain.CHidden) || !ctx.World.Has(trap, domain.CEntryTrigger) {
		t.Error("expected the trap to resurface armed on the next wrap")
	}
}
