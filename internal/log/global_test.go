package log

import (
	"context"
	"sync"
	"testing"
)

func resetDefault(t *testing.T) {
	t.Helper()
	original := defaultLogger.Load()
	defaultLogger.Store(nil)
	t.Cleanup(func() { defaultLogger.Store(original) })
}

func TestSetDefaultLogger(t *testing.T) {
	resetDefault(t)

	custom := New(VerboseConfig())
	SetDefaultLogger(custom)

	if got := DefaultLogger(); got != custom {
		t.Error("DefaultLogger did not return the logger passed to SetDefaultLogger")
	}
}

func TestDefaultLoggerLazyInit(t *testing.T) {
	resetDefault(t)

	logger := DefaultLogger()
	if logger == nil {
		t.Fatal("DefaultLogger returned nil when no default was set")
	}
	if logger.Enabled(context.Background(), LevelWarn) || !logger.Enabled(context.Background(), LevelError) {
		t.Error("lazy default should log errors only")
	}
	if DefaultLogger() != logger {
		t.Error("DefaultLogger did not return the same logger on second call")
	}
}

func TestDefaultLoggerConcurrency(t *testing.T) {
	resetDefault(t)

	const goroutines = 100
	loggers := make([]*Logger, goroutines)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			loggers[index] = DefaultLogger()
		}(i)
	}
	wg.Wait()

	for i := 1; i < goroutines; i++ {
		if loggers[i] != loggers[0] {
			t.Errorf("logger at index %d differs from the first logger", i)
		}
	}
}
