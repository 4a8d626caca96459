package logging

import (
	"io"
	"time"

	"github.com/CommonGateway/GeboorteVrijBRPBundle/timestamp"
)

//DateTimeWriterProxy prefixes every log line with UTC date time
type DateTimeWriterProxy struct {
	writer io.Writer
}

func (wp DateTimeWriterProxy) Write(bytes []byte) (int, error) {
	return wp.writer.Write([]byte(timestamp.Now().UTC().Format(timestamp.LogsLayout) + " " + string(bytes)))
}

//NewDateTimeWriterProxy wraps writer
func NewDateTimeWriterProxy(writer io.Writer) DateTimeWriterProxy {
	return DateTimeWriterProxy{writer: writer}
}

var _ io.Writer = DateTimeWriterProxy{}

func init() {
	//default UTC
	time.Local = time.UTC
}
