package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileName = "opsim.log"

// Options controls where log output goes.
type Options struct {
	Verbose bool
	Dir     string
	// Console defaults to os.Stderr. Stdout is never used because the MCP
	// stdio transport owns it.
	Console *os.File
}

// New builds a logger writing to the console and a rotating file in
// opts.Dir. The returned closer releases the file.
func New(opts Options) (zerolog.Logger, io.Closer, error) {
	if opts.Console == nil {
		opts.Console = os.Stderr
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("failed to create log directory %q: %w", opts.Dir, err)
	}
	testFile := filepath.Join(opts.Dir, ".write-test")
	if err := os.WriteFile(testFile, []byte("test"), 0644); err != nil {
		return zerolog.Nop(), nil, fmt.Errorf("log directory %q is not writable: %w", opts.Dir, err)
	}
	_ = os.Remove(testFile)

	fd := opts.Console.Fd()
	consoleWriter := zerolog.ConsoleWriter{
		Out:        opts.Console,
		TimeFormat: time.RFC3339,
		NoColor:    !(isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)),
	}

	fileWriter := &lumberjack.Logger{
		Filename:   filepath.Join(opts.Dir, logFileName),
		MaxSize:    16, // megabytes
		MaxBackups: 32,
		MaxAge:     365, // days
		Compress:   true,
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(zerolog.MultiLevelWriter(consoleWriter, fileWriter)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return logger, fileWriter, nil
}

// Init installs the global logger. It runs before config.Load, so it reads
// LOGS_FOLDER from the binary-relative .env itself.
func Init(verbose bool) {
	exePath, err := os.Executable()
	if err == nil {
		_ = godotenv.Load(filepath.Join(filepath.Dir(exePath), ".env"))
	}

	logDir := os.Getenv("LOGS_FOLDER")
	if logDir == "" {
		if err == nil {
			logDir = filepath.Join(filepath.Dir(exePath), "logs")
		} else {
			logDir = "logs"
		}
	}

	logger, _, err := New(Options{Verbose: verbose, Dir: logDir})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	log.Logger = logger
}
