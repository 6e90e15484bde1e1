package storage

import (
	"encoding/json"
	"fmt"
	"os"

	"roguie-server/internal/domain"
	"roguie-server/internal/ecs"
	"roguie-server/pkg/logger"
)

// saveFile - корень файла сохранения.
type saveFile struct {
	Version int         `json:"version"`
	Blocks  []saveBlock `json:"blocks"`
}

// saveBlock - все значения одного компонента, по маркерам сущностей.
type saveBlock struct {
	Component string     `json:"component"`
	Items     []saveItem `json:"items"`
}

type saveItem struct {
	ID   uint64          `json:"id"`
	Data json.RawMessage `json:"data"`
}

// Save сбрасывает мир и карту в JSON по указанному пути.
//
// Карта едет внутри синтетической сущности со снимком: она создается
// на время записи и уничтожается до возврата. Частицы не сохраняются,
// их жизнь привязана к настенным часам.
func Save(w *ecs.World, m *domain.GameMap, path string) error {
	saveLogger := logger.WithComponent("storage")

	snapshotCarrier := w.Create()
	w.Add(snapshotCarrier, domain.CMapSnapshot, &domain.MapSnapshot{Map: m})
	defer w.Destroy(snapshotCarrier)

	file := saveFile{Version: saveVersion}
	for _, codec := range codecs {
		block := saveBlock{Component: codec.name, Items: []saveItem{}}
		for _, e := range w.Join(codec.id) {
			if w.Has(e, domain.CParticleLifetime) {
				continue
			}
			value, _ := w.Component(e, codec.id)
			data, err := json.Marshal(value)
			if err != nil {
				return fmt.Errorf("storage: marshal %s of %v: %w", codec.name, e, err)
			}
			block.Items = append(block.Items, saveItem{ID: uint64(e), Data: data})
		}
		file.Blocks = append(file.Blocks, block)
	}

	payload, err := json.Marshal(file)
	if err != nil {
		return fmt.Errorf("storage: marshal save file: %w", err)
	}
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}

	saveLogger.WithField("path", path).WithField("entities", w.Count()).
		Info("Game saved.")
	return nil
}

// Delete убирает файл сохранения. Отсутствие файла не ошибка.
func Delete(path string) error {
	err := os.Remove(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("storage: delete %s: %w", path, err)
	}
	return nil
}

// Exists сообщает, лежит ли по пути сохранение.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
