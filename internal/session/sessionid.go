package session

import (
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/google/uuid"
)

var logNamePattern = regexp.MustCompile(`^interview_log_0*(\d+)\.json$`)

// LogFileName возвращает имя файла лога для идентификатора сессии.
func LogFileName(sessionID string) string {
	return "interview_log_" + sessionID + ".json"
}

func maxExistingSessionID(logsDir string) int {
	entries, err := os.ReadDir(logsDir)
	if err != nil {
		return 0
	}

	maxID := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := logNamePattern.FindStringSubmatch(filepath.Base(entry.Name()))
		if match == nil {
			continue
		}
		if id, err := strconv.Atoi(match[1]); err == nil && id > maxID {
			maxID = id
		}
	}
	return maxID
}

// NextSessionID выдает следующий инкрементный идентификатор по содержимому
// директории логов. Если директорию не удается подготовить, возвращается
// случайный UUID, чтобы старт интервью не блокировался.
func NextSessionID(logsDir string) string {
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return uuid.New().String()
	}
	return strconv.Itoa(maxExistingSessionID(logsDir) + 1)
}
