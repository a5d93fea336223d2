package migrations

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

var logger logging.Logger = logging.Nop{}

// SetLogger routes goose progress output to l. Pass nil to discard it.
func SetLogger(l logging.Logger) {
	mu.Lock()
	defer mu.Unlock()
	if l == nil {
		l = logging.Nop{}
	}
	logger = l
}

// gooseLogger adapts logging.Logger to goose.Logger for the duration of one
// Up call.
type gooseLogger struct {
	ctx    context.Context
	logger logging.Logger
}

func (g gooseLogger) Printf(format string, v ...any) {
	g.logger.Info(g.ctx, strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf panics instead of exiting so Up can turn it into an error.
func (g gooseLogger) Fatalf(format string, v ...any) {
	msg := strings.TrimSpace(fmt.Sprintf(format, v...))
	g.logger.Error(g.ctx, msg)
	panic(fatalError(msg))
}

type fatalError string
