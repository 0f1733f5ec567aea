// Copyright (c) 2025 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/apex/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// GITFORGE_LOG env variable. When GITFORGE_LOG_FILE is set entries go to a
// size rotated file instead of stderr.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("GITFORGE_LOG"))
	if level == "" {
		level = "ERROR"
	}

	var w io.Writer = os.Stderr
	if path := os.Getenv("GITFORGE_LOG_FILE"); path != "" {
		w = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}

	log.SetHandler(NewHandler(w))

	l, err := log.ParseLevel(strings.ToLower(level))
	if err != nil {
		log.SetLevel(log.ErrorLevel)
		log.Errorf("unknown GITFORGE_LOG level %q, using ERROR", level)
		return
	}
	log.SetLevel(l)
}

// CustomHandler formats log entries one per line.
type CustomHandler struct {
	mu sync.Mutex
	w  io.Writer
}

// NewHandler returns a CustomHandler writing to w.
func NewHandler(w io.Writer) *CustomHandler {
	return &CustomHandler{w: w}
}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())

	var fields strings.Builder
	names := e.Fields.Names()
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(&fields, " %s=%v", name, e.Fields.Get(name))
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := fmt.Fprintf(h.w, "%s %.1s %s%s\n", timestamp, level, e.Message, fields.String())
	return err
}
