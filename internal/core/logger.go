package core

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// LogDir — каталог дневных лог-файлов.
var LogDir = "logs"

// logRetentionDays — сколько дней хранить старые логи
const logRetentionDays = 7

type Logger struct {
	mainLogger  *zerolog.Logger
	errorLogger *zerolog.Logger
	mainFile    *os.File
	errorFile   *os.File
	mu          sync.Mutex
}

var (
	globalLogger *Logger
	globalMu     sync.RWMutex
	cleanupOnce  sync.Once

	// До InitDailyLog (и в тестах) пишем в stderr
	consoleLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()
)

// InitDailyLog открывает logs/DD-MM-YYYY.log и logs/errors-DD-MM-YYYY.log.
// Повторный вызов (ротация раз в сутки) закрывает предыдущие файлы.
func InitDailyLog() error {
	if err := os.MkdirAll(LogDir, 0755); err != nil {
		return fmt.Errorf("создание директории %s: %w", LogDir, err)
	}

	dateStr := time.Now().Format("02-01-2006")
	mainPath := filepath.Join(LogDir, dateStr+".log")
	errorPath := filepath.Join(LogDir, "errors-"+dateStr+".log")

	mainFile, err := os.OpenFile(mainPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("открытие основного лог-файла: %w", err)
	}

	errorFile, err := os.OpenFile(errorPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		_ = mainFile.Close()
		return fmt.Errorf("открытие файла ошибок: %w", err)
	}

	mainLogger := zerolog.New(zerolog.MultiLevelWriter(mainFile, os.Stdout)).With().Timestamp().Logger()
	errorLogger := zerolog.New(zerolog.MultiLevelWriter(errorFile, mainFile, os.Stderr)).With().Timestamp().Logger()

	next := &Logger{
		mainLogger:  &mainLogger,
		errorLogger: &errorLogger,
		mainFile:    mainFile,
		errorFile:   errorFile,
	}

	globalMu.Lock()
	prev := globalLogger
	globalLogger = next
	globalMu.Unlock()

	if prev != nil {
		prev.close()
	}

	cleanupOnce.Do(func() { go cleanupOldLogs(LogDir, logRetentionDays) })
	return nil
}

func LogInfo(msg string, fields map[string]interface{}) {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalLogger == nil {
		withFields(consoleLogger.Info(), fields).Msg(msg)
		return
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	withFields(globalLogger.mainLogger.Info(), fields).Msg(msg)
}

func LogError(msg string, fields map[string]interface{}) {
	globalMu.RLock()
	defer globalMu.RUnlock()

	if globalLogger == nil {
		withFields(consoleLogger.Error(), fields).Msg(msg)
		return
	}
	globalLogger.mu.Lock()
	defer globalLogger.mu.Unlock()
	withFields(globalLogger.errorLogger.Error(), fields).Msg(msg)
}

func withFields(event *zerolog.Event, fields map[string]interface{}) *zerolog.Event {
	for k, v := range fields {
		if err, ok := v.(error); ok {
			event = event.AnErr(k, err)
			continue
		}
		event = event.Interface(k, v)
	}
	return event
}

// RequestLogger — одна строка zerolog на запрос (вместо middleware.Logger из chi).
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			fields := map[string]interface{}{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
				"remote":      r.RemoteAddr,
			}
			if ww.Status() >= http.StatusInternalServerError {
				LogError("http request", fields)
				return
			}
			LogInfo("http request", fields)
		}()
		next.ServeHTTP(ww, r)
	})
}

func cleanupOldLogs(dir string, days int) {
	files, err := os.ReadDir(dir)
	if err != nil {
		LogError("Не удалось прочитать каталог логов", map[string]interface{}{"dir": dir, "error": err})
		return
	}

	cutoff := time.Now().AddDate(0, 0, -days)
	for _, file := range files {
		if file.IsDir() {
			continue
		}
		info, err := file.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			path := filepath.Join(dir, file.Name())
			if err := os.Remove(path); err != nil {
				LogError("Удаление старого лога", map[string]interface{}{"path": path, "error": err})
			}
		}
	}
}

func (l *Logger) close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.mainFile.Close(); err != nil {
		consoleLogger.Error().Msgf("Закрытие mainFile: %v", err)
	}
	if err := l.errorFile.Close(); err != nil {
		consoleLogger.Error().Msgf("Закрытие errorFile: %v", err)
	}
}

// Close закрывает файлы логов при завершении.
func Close() {
	globalMu.Lock()
	prev := globalLogger
	globalLogger = nil
	globalMu.Unlock()

	if prev != nil {
		prev.close()
	}
}
