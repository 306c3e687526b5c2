package orchestrator

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"interview-coach/internal/agents"
)

// Команды завершения интервью из консоли.
var exitCommands = map[string]bool{
	"exit": true, "quit": true, "stop": true,
	"стоп": true, "выход": true, "хватит": true, "завершить": true,
}

// RunConsole ведет интервью в консоли: печатает сообщения интервью, читает
// реплики кандидата построчно и по завершении выводит отчет и сохраняет лог.
func RunConsole(iv *Interview, in io.Reader, logsDir string) error {
	visible := color.New(color.FgCyan, color.Bold)
	internal := color.New(color.FgHiBlack)
	status := color.New(color.FgYellow)

	stopped := make(chan struct{})
	printerDone := make(chan struct{})
	go func() {
		defer close(printerDone)
		stopSeen := false
		for msg := range iv.Out() {
			switch msg.Type {
			case agents.OutVisible:
				visible.Println("\nИнтервьюер: " + msg.Text)
			case agents.OutInternal:
				internal.Println("  " + msg.Text)
			case agents.OutStatus:
				status.Println("  " + msg.Text)
			case agents.OutStop:
				if !stopSeen {
					stopSeen = true
					close(stopped)
				}
			}
		}
	}()

	iv.Start()

	lines := make(chan string)
	readerDone := make(chan struct{})
	defer close(readerDone)
	go func() {
		scanner := bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-readerDone:
				return
			}
		}
		close(lines)
	}()

loop:
	for {
		select {
		case <-stopped:
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}
			if exitCommands[strings.ToLower(text)] {
				break loop
			}
			iv.SendReply(text)
		}
	}

	status.Println("\nФормируем финальный отчет...")
	report := iv.Finalize()
	<-printerDone

	PrintReport(report)

	path, err := iv.Save(logsDir)
	if err != nil {
		return fmt.Errorf("ошибка сохранения лога интервью: %w", err)
	}
	fmt.Printf("\nЛог интервью сохранен: %s\n", path)
	return nil
}
