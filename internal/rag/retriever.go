package rag

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	chromem "github.com/philippgille/chromem-go"

	"interview-coach/internal/config"
)

// Reference — один опорный вопрос/ответ из базы интервью.
type Reference struct {
	Category  string  `json:"category"`
	Skill     string  `json:"skill"`
	Level     string  `json:"level"`
	Question  string  `json:"question"`
	Answer    string  `json:"answer"`
	Relevance float32 `json:"relevance"`
}

// Retriever ищет похожие вопросы/ответы по векторному индексу. Отсутствие
// или сбой базы выключает поиск: Search возвращает пустой список, никогда
// не ошибку.
type Retriever struct {
	collection *chromem.Collection
	cfg        config.RAGConfig
}

// NewRetriever загружает базу опорных вопросов в chromem. Любая проблема
// (нет файла данных, не создается индекс) отключает retriever, но не мешает
// запуску интервью.
func NewRetriever(cfg config.RAGConfig, embed chromem.EmbeddingFunc) *Retriever {
	r := &Retriever{cfg: cfg}
	if !cfg.Enabled {
		return r
	}

	entries, err := loadReferenceData(cfg.DataPath)
	if err != nil {
		log.Printf("Предупреждение: не удалось загрузить базу опорных материалов: %v", err)
		log.Printf("Продолжаем работу без RAG.")
		return r
	}

	var db *chromem.DB
	if cfg.PersistPath != "" {
		persistFile := filepath.Join(cfg.PersistPath, "chromem.gob")
		db, err = chromem.NewPersistentDB(persistFile, false)
		if err != nil {
			log.Printf("Предупреждение: не удалось открыть векторную базу: %v", err)
			return r
		}
	} else {
		db = chromem.NewDB()
	}

	collection, err := db.GetOrCreateCollection(cfg.Collection, nil, embed)
	if err != nil {
		log.Printf("Предупреждение: не удалось создать коллекцию %s: %v", cfg.Collection, err)
		return r
	}

	for i, entry := range entries {
		doc := chromem.Document{
			ID:      fmt.Sprintf("qa-%d", i),
			Content: "Вопрос: " + entry.Question + "\nОтвет: " + entry.Answer,
			Metadata: map[string]string{
				"category": entry.Category,
				"skill":    entry.Skill,
				"level":    entry.Level,
				"question": entry.Question,
				"answer":   entry.Answer,
			},
		}
		if err := collection.AddDocument(context.Background(), doc); err != nil {
			log.Printf("Предупреждение: не удалось добавить документ в индекс: %v", err)
			return r
		}
	}

	log.Printf("RAG: загружено %d опорных вопросов", len(entries))
	r.collection = collection
	return r
}

type referenceEntry struct {
	Category string `json:"category"`
	Skill    string `json:"skill"`
	Level    string `json:"level"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

func loadReferenceData(path string) ([]referenceEntry, error) {
	if path == "" {
		return nil, fmt.Errorf("data_path не задан")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения файла %s: %w", path, err)
	}
	var entries []referenceEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("ошибка парсинга %s: %w", path, err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("файл %s не содержит записей", path)
	}
	return entries, nil
}

// IsAvailable сообщает, загружен ли индекс.
func (r *Retriever) IsAvailable() bool {
	return r != nil && r.collection != nil
}

// Search возвращает до topK опорных записей с релевантностью не ниже
// minRelevance. Сбой поиска эквивалентен пустому результату.
func (r *Retriever) Search(ctx context.Context, query string, topK int, minRelevance float32) []Reference {
	if !r.IsAvailable() || strings.TrimSpace(query) == "" {
		return nil
	}

	if count := r.collection.Count(); topK > count {
		topK = count
	}
	if topK <= 0 {
		return nil
	}

	results, err := r.collection.Query(ctx, query, topK, nil, nil)
	if err != nil {
		log.Printf("Предупреждение: ошибка поиска в RAG: %v", err)
		return nil
	}

	references := make([]Reference, 0, len(results))
	for _, result := range results {
		if result.Similarity < minRelevance {
			continue
		}
		references = append(references, Reference{
			Category:  result.Metadata["category"],
			Skill:     result.Metadata["skill"],
			Level:     result.Metadata["level"],
			Question:  result.Metadata["question"],
			Answer:    result.Metadata["answer"],
			Relevance: result.Similarity,
		})
	}
	return references
}

// FormatReferenceMaterials рендерит найденные записи в блок для промпта
// Observer. Пустой вход дает пустую строку.
func FormatReferenceMaterials(references []Reference) string {
	if len(references) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("ОПОРНЫЕ МАТЕРИАЛЫ ИЗ БАЗЫ ДАННЫХ ИНТЕРВЬЮ:\n\n")
	b.WriteString("ВАЖНО: Используй эти материалы ТОЛЬКО если они релевантны теме ответа кандидата. ")
	b.WriteString("Не предлагай темы на основе материалов, которые кандидат не упоминал.\n\n")

	for i, ref := range references {
		b.WriteString(fmt.Sprintf("%d. Категория: %s | Навык: %s | Уровень: %s\n", i+1, ref.Category, ref.Skill, ref.Level))
		b.WriteString(fmt.Sprintf("   Вопрос: %s\n", ref.Question))
		b.WriteString(fmt.Sprintf("   Ожидаемый ответ: %s\n", ref.Answer))
		b.WriteString(fmt.Sprintf("   Релевантность: %.2f\n\n", ref.Relevance))
	}

	return b.String()
}
