package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Save сериализует лог интервью в JSON файл с отступами.
func (l *Logger) Save(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("ошибка создания директории %s: %w", dir, err)
		}
	}

	jsonData, err := json.MarshalIndent(l.ToDocument(), "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации лога интервью: %w", err)
	}

	if err := os.WriteFile(path, jsonData, 0644); err != nil {
		return fmt.Errorf("ошибка записи файла %s: %w", path, err)
	}

	return nil
}

// Load загружает сохраненный лог интервью.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("ошибка десериализации JSON: %w", err)
	}

	return &doc, nil
}
