package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Config opciones del logger, normalmente tomadas de pkg/config (APP_ENV,
// APP_LOG_LEVEL).
type Config struct {
	Env   string // development -> consola legible; cualquier otro -> JSON
	Level string // debug, info, warn, error; vacío -> según Env
}

// Logger envuelve zerolog para inyectarlo por constructor en vez de usar el
// global directamente.
type Logger struct {
	zl zerolog.Logger
}

// New crea el logger de la aplicación. En development escribe consola legible
// y baja el nivel a debug por defecto; en el resto de entornos, JSON a stdout
// con nivel info salvo que la configuración diga otra cosa.
func New(cfg Config) *Logger {
	var w io.Writer = os.Stdout
	if cfg.Env == "development" {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}

	zl := zerolog.New(w).Level(level(cfg)).With().Timestamp().Logger()

	// Las librerías que loguean por el global de zerolog salen por aquí también.
	log.Logger = zl

	return &Logger{zl: zl}
}

func level(cfg Config) zerolog.Level {
	switch cfg.Level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	}
	if cfg.Env == "development" {
		return zerolog.DebugLevel
	}
	return zerolog.InfoLevel
}

// Debug, Info, Warn, Error y Fatal delegan en zerolog.
func (l *Logger) Debug() *zerolog.Event { return l.zl.Debug() }
func (l *Logger) Info() *zerolog.Event  { return l.zl.Info() }
func (l *Logger) Warn() *zerolog.Event  { return l.zl.Warn() }
func (l *Logger) Error() *zerolog.Event { return l.zl.Error() }
func (l *Logger) Fatal() *zerolog.Event { return l.zl.Fatal() }

// With crea un sublogger con campos fijos (por ejemplo, el nombre del componente).
func (l *Logger) With() zerolog.Context {
	return l.zl.With()
}
