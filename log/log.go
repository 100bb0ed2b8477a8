/* Copyright (c) 2016 Jason Ish
 * All rights reserved.
 *
 * Redistribution and use in source and binary forms, with or without
 * modification, are permitted provided that the following conditions
 * are met:
 *
 * 1. Redistributions of source code must retain the above copyright
 *    notice, this list of conditions and the following disclaimer.
 * 2. Redistributions in binary form must reproduce the above copyright
 *    notice, this list of conditions and the following disclaimer in the
 *    documentation and/or other materials provided with the distribution.
 *
 * THIS SOFTWARE IS PROVIDED ``AS IS'' AND ANY EXPRESS OR IMPLIED
 * WARRANTIES, INCLUDING, BUT NOT LIMITED TO, THE IMPLIED WARRANTIES OF
 * MERCHANTABILITY AND FITNESS FOR A PARTICULAR PURPOSE ARE
 * DISCLAIMED. IN NO EVENT SHALL THE AUTHOR BE LIABLE FOR ANY DIRECT,
 * INDIRECT, INCIDENTAL, SPECIAL, EXEMPLARY, OR CONSEQUENTIAL DAMAGES
 * (INCLUDING, BUT NOT LIMITED TO, PROCUREMENT OF SUBSTITUTE GOODS OR
 * SERVICES; LOSS OF USE, DATA, OR PROFITS; OR BUSINESS INTERRUPTION)
 * HOWEVER CAUSED AND ON ANY THEORY OF LIABILITY, WHETHER IN CONTRACT,
 * STRICT LIABILITY, OR TORT (INCLUDING NEGLIGENCE OR OTHERWISE) ARISING
 * IN ANY WAY OUT OF THE USE OF THIS SOFTWARE, EVEN IF ADVISED OF THE
 * POSSIBILITY OF SUCH DAMAGE.
 */

package log

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

type LogLevel int

const (
	ERROR LogLevel = iota
	WARNING
	INFO
	DEBUG
)

var logLevel LogLevel = INFO

const (
	GREEN  = "\x1b[32m"
	BLUE   = "\x1b[34m"
	YELLOW = "\x1b[33m"
	RED    = "\x1b[31m"
	RESET  = "\x1b[0m"
)

var (
	lock   sync.Mutex
	output io.Writer = os.Stderr
	color            = isatty.IsTerminal(os.Stderr.Fd())
)

// SetOutput redirects log output. Colour is only used on a terminal.
func SetOutput(w io.Writer) {
	lock.Lock()
	defer lock.Unlock()
	output = w
	if file, ok := w.(*os.File); ok {
		color = isatty.IsTerminal(file.Fd())
	} else {
		color = false
	}
}

func colorize(code string, v interface{}) string {
	if !color {
		return fmt.Sprint(v)
	}
	return fmt.Sprintf("%s%v%s", code, v, RESET)
}

func Green(v interface{}) string {
	return colorize(GREEN, v)
}

func Blue(v interface{}) string {
	return colorize(BLUE, v)
}

func Yellow(v interface{}) string {
	return colorize(YELLOW, v)
}

func Red(v interface{}) string {
	return colorize(RED, v)
}

func Timestamp() string {
	now := time.Now()
	return now.Format("2006-01-02 15:04:05")
}

func SetLevel(level LogLevel) {
	logLevel = level
}

// ParseLevel converts a level name, such as "debug", to a LogLevel.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(name) {
	case "error":
		return ERROR, nil
	case "warning", "warn":
		return WARNING, nil
	case "info":
		return INFO, nil
	case "debug":
		return DEBUG, nil
	}
	return INFO, fmt.Errorf("unknown log level: %s", name)
}

func doLog(calldepth int, level LogLevel, format string, v ...interface{}) {

	if level > logLevel {
		return
	}

	_, filename, line, _ := runtime.Caller(calldepth)

	var label string
	message := fmt.Sprintf(format, v...)

	switch level {
	case ERROR:
		label = Red("Error")
		message = Red(message)
	case WARNING:
		label = Yellow("Warning")
	case INFO:
		label = Blue("Info")
	case DEBUG:
		label = Yellow("Debug")
	}

	lock.Lock()
	defer lock.Unlock()
	fmt.Fprintf(output, "%s (%s:%s) <%s> -- %s\n",
		Green(Timestamp()),
		Blue(filepath.Base(filename)),
		Green(line),
		label,
		message)
}

func Error(format string, v ...interface{}) {
	doLog(2, ERROR, format, v...)
}

func Warning(format string, v ...interface{}) {
	doLog(2, WARNING, format, v...)
}

func Info(format string, v ...interface{}) {
	doLog(2, INFO, format, v...)
}

func Debug(format string, v ...interface{}) {
	doLog(2, DEBUG, format, v...)
}

// Promote to info...
func Println(v ...interface{}) {
	doLog(2, INFO, "%s", fmt.Sprint(v...))
}

// To be compatible with standard logging, promote to info.
func Printf(format string, v ...interface{}) {
	doLog(2, INFO, format, v...)
}

func Fatal(v ...interface{}) {
	doLog(2, ERROR, "%s", fmt.Sprint(v...))
	os.Exit(1)
}

// LevelLogger logs every message at a fixed level. It can be used where
// an io.Writer or a Println style logger is expected.
type LevelLogger struct {
	level LogLevel
}

func (l LevelLogger) Write(p []byte) (int, error) {
	doLog(2, l.level, "%s", strings.TrimRight(string(p), "\r\n"))
	return len(p), nil
}

func (l LevelLogger) Println(v ...interface{}) {
	doLog(2, l.level, "%s", strings.TrimRight(fmt.Sprintln(v...), "\n"))
}

// AtLevel returns a logger for the given level.
func AtLevel(level LogLevel) LevelLogger {
	return LevelLogger{level: level}
}

// Writer returns a writer that logs each write as a message at the given
// level, for packages that log to an io.Writer.
func Writer(level LogLevel) io.Writer {
	return AtLevel(level)
}
