package logging

import (
	"fmt"
	"io"
	"log"
	"path/filepath"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const logFileMaxSizeMB = 100

//NewRollingWriter returns lumberjack writer which rotates the file every config.RotationMin minutes
func NewRollingWriter(config Config) io.WriteCloser {
	fileNamePath := filepath.Join(config.FileDir, fmt.Sprintf("%s.log", config.FileName))
	log.Println("Constructing new Lumberjack rolling writer for:", fileNamePath)
	lWriter := &lumberjack.Logger{
		Filename: fileNamePath,
		MaxSize:  logFileMaxSizeMB,
		Compress: config.Compress,
	}
	if config.MaxBackups > 0 {
		lWriter.MaxBackups = config.MaxBackups
	}

	if config.RotationMin > 0 {
		ticker := time.NewTicker(time.Duration(config.RotationMin) * time.Minute)
		go func() {
			for range ticker.C {
				if err := lWriter.Rotate(); err != nil {
					log.Println(errMsg("Error rotating log file", fileNamePath, err))
				}
			}
		}()
	}

	return lWriter
}
