package console

import (
	"fmt"
	"io"
	"os"
	"time"

	"feedgen/internal/application/port"
)

type Sink struct {
	out io.Writer
}

func NewSink() port.Sink { return &Sink{out: os.Stdout} }

// NewSinkTo writes to w instead of stdout
func NewSinkTo(w io.Writer) port.Sink { return &Sink{out: w} }

// WriteReport 打印一行带时间戳的摘要，其后缩进输出每一行，末尾留空行
func (s *Sink) WriteReport(ts time.Time, header string, lines []string) error {
	if _, err := fmt.Fprintf(s.out, "%s %s\n", ts.Format("2006-01-02 15:04:05"), header); err != nil {
		return err
	}
	for _, l := range lines {
		if _, err := fmt.Fprintf(s.out, "  %s\n", l); err != nil {
			return err
		}
	}
	return s.NewLine()
}

func (s *Sink) NewLine() error {
	_, err := fmt.Fprint(s.out, "\n")
	return err
}
