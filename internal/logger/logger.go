package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu      sync.RWMutex
	current *slog.Logger
	output  *os.File
)

// Init настраивает глобальный логгер на вывод в stdout
func Init(level string, json bool) {
	install(os.Stdout, level, json)
}

// InitWithFile дублирует записи в файл path. Пустой путь - только stdout.
// При ошибке открытия файла логгер всё равно пишет в stdout.
func InitWithFile(level string, json bool, path string) error {
	if path == "" {
		Init(level, json)
		return nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		Init(level, json)
		return fmt.Errorf("open log file: %w", err)
	}
	_ = Close()
	install(io.MultiWriter(os.Stdout, f), level, json)

	mu.Lock()
	output = f
	mu.Unlock()
	return nil
}

func install(w io.Writer, level string, json bool) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var h slog.Handler = slog.NewTextHandler(w, opts)
	if json {
		h = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(h)
	mu.Lock()
	current = l
	mu.Unlock()
	slog.SetDefault(l)
}

// Close закрывает файл логов, если он открыт
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if output == nil {
		return nil
	}
	err := output.Close()
	output = nil
	return err
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Get возвращает текущий логгер, при необходимости создавая логгер по умолчанию
func Get() *slog.Logger {
	mu.RLock()
	l := current
	mu.RUnlock()
	if l != nil {
		return l
	}
	Init("info", false)
	return Get()
}

func With(args ...any) *slog.Logger {
	return Get().With(args...)
}

// Component - логгер подсистемы (bot, mines, games ...)
func Component(name string) *slog.Logger {
	return With("component", name)
}

func Info(msg string, args ...any)  { Get().Info(msg, args...) }
func Debug(msg string, args ...any) { Get().Debug(msg, args...) }
func Warn(msg string, args ...any)  { Get().Warn(msg, args...) }
func Error(msg string, args ...any) { Get().Error(msg, args...) }

// Fatal пишет ошибку и завершает процесс
func Fatal(msg string, args ...any) {
	Get().Error(msg, args...)
	_ = Close()
	os.Exit(1)
}
