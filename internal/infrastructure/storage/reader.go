package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/pkg/logger"
)

// Load восстанавливает мир из файла сохранения.
//
// Мир очищается целиком, сущности пересоздаются с новыми
// идентификаторами, ссылки между ними переписываются через сохраненные
// маркеры. Возвращаются карта и сущность игрока. Кэши видимости и
// индекс содержимого клеток не читаются из файла, а помечаются на
// пересчет.
func Load(w *ecs.World, path string) (*domain.GameMap, ecs.Entity, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, ecs.Null, fmt.Errorf("storage: read %s: %w", path, err)
	}

	var file saveFile
	if err := json.Unmarshal(payload, &file); err != nil {
		return nil, ecs.Null, fmt.Errorf("storage: parse %s: %w", path, err)
	}
	if file.Version != saveVersion {
		return nil, ecs.Null, fmt.Errorf("storage: unsupported save version %d", file.Version)
	}

	codecByName := make(map[string]componentCodec, len(codecs))
	for _, codec := range codecs {
		codecByName[codec.name] = codec
	}

	w.Clear()

	// Первый проход: сущность на каждый маркер.
	remap := make(map[uint64]ecs.Entity)
	for _, block := range file.Blocks {
		for _, item := range block.Items {
			if _, ok := remap[item.ID]; !ok {
				remap[item.ID] = w.Create()
			}
		}
	}

	// Второй проход: компоненты с переписанными ссылками.
	for _, block := range file.Blocks {
		codec, ok := codecByName[block.Component]
		if !ok {
			return nil, ecs.Null, fmt.Errorf("storage: unknown component %q in %s", block.Component, path)
		}
		for _, item := range block.Items {
			value := codec.new()
			if err := json.Unmarshal(item.Data, value); err != nil {
				return nil, ecs.Null, fmt.Errorf("storage: parse %s of %d: %w", codec.name, item.ID, err)
			}
			remapRefs(value, remap)
			w.Add(remap[item.ID], codec.id, value)
		}
	}

	m, player, err := extractResources(w)
	if err != nil {
		return nil, ecs.Null, err
	}

	logger.WithComponent("storage").WithField("path", path).
		WithField("entities", w.Count()).Info("Game loaded.")
	return m, player, nil
}

// remapRefs переписывает ссылки на сущности внутри компонента со
// старых маркеров на новые идентификаторы.
func remapRefs(value any, remap map[uint64]ecs.Entity) {
	lookup := func(e ecs.Entity) ecs.Entity {
		if mapped, ok := remap[uint64(e)]; ok {
			return mapped
		}
		return ecs.Null
	}

	switch v := value.(type) {
	case *domain.WantsToMelee:
		v.Target = lookup(v.Target)
	case *domain.InBackpack:
		v.Owner = lookup(v.Owner)
	case *domain.Equipped:
		v.Owner = lookup(v.Owner)
	case *domain.WantsToPickupItem:
		v.CollectedBy = lookup(v.CollectedBy)
		v.Item = lookup(v.Item)
	case *domain.WantsToUseItem:
		v.Item = lookup(v.Item)
	case *domain.WantsToDropItem:
		v.Item = lookup(v.Item)
	case *domain.WantsToRemoveItem:
		v.Item = lookup(v.Item)
	}
}

// extractResources вынимает из загруженного мира карту и игрока.
// Синтетический носитель снимка карты уничтожается.
func extractResources(w *ecs.World) (*domain.GameMap, ecs.Entity, error) {
	var m *domain.GameMap
	for _, e := range w.Join(domain.CMapSnapshot) {
		snapshot, _ := ecs.Get[domain.MapSnapshot](w, e, domain.CMapSnapshot)
		m = snapshot.Map
		w.Destroy(e)
	}
	if m == nil {
		return nil, ecs.Null, fmt.Errorf("storage: save has no map snapshot")
	}
	if m.Bloodstains == nil {
		m.Bloodstains = make(map[int]bool)
	}
	m.ResetContentIndex()

	player := ecs.Null
	for _, e := range w.Join(domain.CPlayer) {
		player = e
	}
	if player == ecs.Null {
		return nil, ecs.Null, fmt.Errorf("storage: save has no player")
	}

	// Кэши видимости пересчитываются, а не читаются.
	for _, e := range w.Join(domain.CViewshed) {
		viewshed, _ := ecs.Get[domain.Viewshed](w, e, domain.CViewshed)
		viewshed.VisibleTiles = make(map[int]bool)
		viewshed.Dirty = true
	}

	return m, player, nil
}
