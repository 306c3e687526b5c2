package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"interview-coach/internal/config"
	"interview-coach/internal/llm"
	"interview-coach/internal/metrics"
	"interview-coach/internal/orchestrator"
	"interview-coach/internal/rag"
	"interview-coach/internal/session"
	"interview-coach/internal/web"
)

const logsDir = "logs"

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Файл .env не найден, используем переменные окружения")
	}

	inputPath := flag.String("input", "input.json", "путь к JSON с данными кандидата")
	configPath := flag.String("config", "config/runtime.yaml", "путь к конфигурации интервью")
	webMode := flag.Bool("web", false, "запустить HTTP сервер вместо консоли")
	port := flag.Int("port", 0, "порт HTTP сервера (перекрывает SERVER_PORT)")
	check := flag.Bool("check", false, "проверить доступность LLM и выйти")
	flag.Parse()

	appCfg := config.LoadAppConfig()
	if *port > 0 {
		appCfg.Server.Port = *port
	}

	runtimeCfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	m := metrics.NewMetrics()

	baseClient, err := llm.NewClient(appCfg.LLM)
	if err != nil {
		log.Fatalf("Ошибка инициализации LLM клиента: %v", err)
	}
	client := llm.NewCountingClient(baseClient, m)

	if *check {
		runCheck(client)
		return
	}

	retriever := buildRetriever(runtimeCfg.Observer.RAG, appCfg.LLM)

	teamName := os.Getenv("TEAM_NAME")
	if teamName == "" {
		teamName = "interview-coach"
	}

	if *webMode {
		sessions := web.NewSessionManager(runtimeCfg, client, m, retriever, teamName, logsDir)
		server := web.NewServer(appCfg.Server, sessions, m)
		if err := server.Run(); err != nil {
			log.Fatalf("Ошибка сервера: %v", err)
		}
		return
	}

	meta := loadMeta(*inputPath)
	sessionID := session.NextSessionID(logsDir)
	logger := session.NewLogger(teamName, meta, runtimeCfg.FinalFeedback, runtimeCfg.Interviewer.DefaultTopic, sessionID)
	iv := orchestrator.New(runtimeCfg, client, m, retriever, logger)

	if err := orchestrator.RunConsole(iv, os.Stdin, logsDir); err != nil {
		log.Fatalf("Ошибка интервью: %v", err)
	}
}

// runCheck делает пробный запрос к LLM и завершает процесс с кодом,
// отражающим результат.
func runCheck(client llm.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	response, err := client.Chat(ctx, "Ты проверка доступности.", "Ответь одним словом: работаю", 0.0)
	if err != nil {
		fmt.Printf("LLM недоступен: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("LLM доступен. Ответ: %s\n", response)
}

// buildRetriever собирает RAG с функцией эмбеддингов под выбранного
// провайдера; без ключа эмбеддингов поиск просто отключается.
func buildRetriever(cfg config.RAGConfig, llmCfg config.LLMConfig) *rag.Retriever {
	if !cfg.Enabled {
		return rag.NewRetriever(cfg, nil)
	}
	embed, err := llm.NewEmbeddingFunc(llmCfg)
	if err != nil {
		log.Printf("Предупреждение: %v. Продолжаем без RAG.", err)
		cfg.Enabled = false
		return rag.NewRetriever(cfg, nil)
	}
	return rag.NewRetriever(cfg, embed)
}

// loadMeta читает данные кандидата; отсутствие файла не препятствует старту.
func loadMeta(path string) session.Meta {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("Не удалось прочитать %s: %v. Интервью начнется без данных кандидата.", path, err)
		return session.Meta{}
	}
	var meta session.Meta
	if err := json.Unmarshal(data, &meta); err != nil {
		log.Printf("Не удалось разобрать %s: %v. Интервью начнется без данных кандидата.", path, err)
		return session.Meta{}
	}
	return meta
}
