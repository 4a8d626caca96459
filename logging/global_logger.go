package logging

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/gookit/color"
)

const (
	errPrefix   = "[ERROR]:"
	warnPrefix  = "[WARN]:"
	infoPrefix  = "[INFO]:"
	debugPrefix = "[DEBUG]:"
)

var GlobalLogsWriter io.Writer

var LogLevel = UNKNOWN

type Config struct {
	FileName    string
	FileDir     string
	RotationMin int64
	MaxBackups  int
	Compress    bool
}

func (c Config) Validate() error {
	if c.FileName == "" {
		return errors.New("Logger file name can't be empty")
	}
	if c.FileDir == "" {
		return errors.New("Logger file dir can't be empty")
	}

	return nil
}

//InitGlobalLogger initializes main logger
func InitGlobalLogger(writer io.Writer, levelStr string) error {
	level, err := ParseLevel(levelStr)
	if err != nil {
		return err
	}

	log.SetOutput(NewDateTimeWriterProxy(writer))
	log.SetFlags(0)
	LogLevel = level

	return nil
}

func SystemErrorf(format string, v ...interface{}) {
	SystemError(fmt.Sprintf(format, v...))
}

//SystemError is an error which isn't caused by input data or remote systems
func SystemError(v ...interface{}) {
	msg := []interface{}{"System error:"}
	msg = append(msg, v...)
	Error(msg...)
}

func Errorf(format string, v ...interface{}) {
	Error(fmt.Sprintf(format, v...))
}

func Error(v ...interface{}) {
	if ERROR.Enabled() {
		log.Println(errMsg(v...))
	}
}

func Infof(format string, v ...interface{}) {
	Info(fmt.Sprintf(format, v...))
}

func Info(v ...interface{}) {
	if INFO.Enabled() {
		log.Println(append([]interface{}{infoPrefix}, v...)...)
	}
}

func Debugf(format string, v ...interface{}) {
	Debug(fmt.Sprintf(format, v...))
}

func Debug(v ...interface{}) {
	if DEBUG.Enabled() {
		log.Println(append([]interface{}{debugPrefix}, v...)...)
	}
}

func Warnf(format string, v ...interface{}) {
	Warn(fmt.Sprintf(format, v...))
}

func Warn(v ...interface{}) {
	if WARN.Enabled() {
		log.Println(append([]interface{}{warnPrefix}, v...)...)
	}
}

func Fatal(v ...interface{}) {
	if FATAL.Enabled() {
		log.Fatal(errMsg(v...))
	}
}

func Fatalf(format string, v ...interface{}) {
	if FATAL.Enabled() {
		log.Fatal(errMsg(fmt.Sprintf(format, v...)))
	}
}

func errMsg(values ...interface{}) string {
	valuesStr := []string{errPrefix}
	for _, v := range values {
		valuesStr = append(valuesStr, fmt.Sprint(v))
	}
	return color.Red.Sprint(strings.Join(valuesStr, " "))
}
