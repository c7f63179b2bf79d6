package debug

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options controls where the debug log goes
type Options struct {
	Path       string // defaults to ~/.config/go-soundboard/debug.log
	MaxSizeMB  int
	MaxBackups int
}

var (
	mu      sync.Mutex
	logger  *zap.Logger
	sink    *lumberjack.Logger
	enabled bool
)

// DefaultPath returns ~/.config/go-soundboard/debug.log
func DefaultPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config", "go-soundboard", "debug.log")
}

// Enable starts debug logging to a rotating file
func Enable(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if enabled {
		return nil
	}

	if opts.Path == "" {
		opts.Path = DefaultPath()
	}
	if opts.MaxSizeMB <= 0 {
		opts.MaxSizeMB = 5
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0755); err != nil {
		return fmt.Errorf("create log dir: %w", err)
	}

	sink = &lumberjack.Logger{
		Filename:   opts.Path,
		MaxSize:    opts.MaxSizeMB,
		MaxBackups: opts.MaxBackups,
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:     "ts",
		NameKey:     "category",
		MessageKey:  "msg",
		LineEnding:  zapcore.DefaultLineEnding,
		EncodeTime:  zapcore.TimeEncoderOfLayout("15:04:05.000"),
		EncodeName:  zapcore.FullNameEncoder,
		EncodeLevel: zapcore.LowercaseLevelEncoder,
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(sink),
		zapcore.DebugLevel,
	)
	logger = zap.New(core)
	enabled = true

	logger.Named("debug").Info("=== Debug logging started ===")
	return nil
}

// Disable stops debug logging
func Disable() {
	mu.Lock()
	defer mu.Unlock()

	if logger != nil {
		_ = logger.Sync()
		logger = nil
	}
	if sink != nil {
		sink.Close()
		sink = nil
	}
	enabled = false
}

// Enabled reports whether Log writes anywhere
func Enabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return enabled
}

// Log writes a message to the debug log
func Log(category, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if !enabled || logger == nil {
		return
	}

	logger.Named(category).Info(fmt.Sprintf(format, args...))
}

// LogEvery logs only every N calls (use for high-frequency events)
var counters = make(map[string]int)

func LogEvery(n int, category, format string, args ...any) {
	mu.Lock()
	key := category + format
	counters[key]++
	count := counters[key]
	mu.Unlock()

	if count%n == 0 {
		Log(category, format+" (every %d, count=%d)", append(args, n, count)...)
	}
}
