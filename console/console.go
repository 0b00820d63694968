// Package console serves the interpreter over a line oriented stream,
// such as a USB serial console.
//
// Every line is answered grbl style: the report for the line, then
// "ok" or "error:<reason>".
package console

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"

	"github.com/tarm/serial"

	"github.com/mastercactapus/gcinterp/gcode"
	"github.com/mastercactapus/gcinterp/report"
	"github.com/mastercactapus/gcinterp/vm"
)

// maxLine bounds a single input line.
const maxLine = 256

// OpenSerial opens a serial device for use with Serve.
func OpenSerial(name string, baud int) (io.ReadWriteCloser, error) {
	p, err := serial.OpenPort(&serial.Config{Name: name, Baud: baud})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// ErrLineTooLong answers lines longer than maxLine. The rest of such a
// line is discarded.
var ErrLineTooLong = errors.New("line too long")

// lineReader reads lines ending in "\n", "\r" or "\r\n".
type lineReader struct {
	br  *bufio.Reader
	buf []byte

	// a "\n" directly after "\r" ends no line
	skipLF bool
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{br: bufio.NewReader(r), buf: make([]byte, 0, maxLine)}
}

// next returns the next line without its terminator. Bytes past maxLine
// are dropped and long is set. The final line needs no terminator.
func (lr *lineReader) next() (line string, long bool, err error) {
	lr.buf = lr.buf[:0]
	for {
		c, err := lr.br.ReadByte()
		if err == io.EOF && (len(lr.buf) > 0 || long) {
			return string(lr.buf), long, nil
		}
		if err != nil {
			return "", false, err
		}

		skip := lr.skipLF
		lr.skipLF = false
		switch {
		case c == '\n' && skip:
		case c == '\r':
			lr.skipLF = true
			return string(lr.buf), long, nil
		case c == '\n':
			return string(lr.buf), long, nil
		case len(lr.buf) == maxLine:
			long = true
		default:
			lr.buf = append(lr.buf, c)
		}
	}
}

// Serve interprets lines read from rw until EOF or until ctx is done.
//
// ctx is only checked between lines; closing rw is the way to
// interrupt a blocked read.
func Serve(ctx context.Context, rw io.ReadWriter, m *vm.Machine) error {
	lr := newLineReader(rw)

	w := bufio.NewWriter(rw)
	rep := report.NewConsole(w)
	rep.EOL = "\r\n"

	var n int
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, long, err := lr.next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		n++

		var res vm.Result
		if long {
			res = vm.Result{Text: line, Outcome: vm.FieldLimitExceeded, Err: ErrLineTooLong}
		} else {
			res = m.Exec(gcode.StripComment(line))
		}
		res.Line = n
		err = rep.Report(res)
		if err != nil {
			return err
		}

		if res.OK() {
			_, err = w.WriteString("ok\r\n")
		} else {
			_, err = w.WriteString("error:" + reason(res) + "\r\n")
		}
		if err != nil {
			return err
		}
		err = w.Flush()
		if err != nil {
			return err
		}
	}
}

func reason(res vm.Result) string {
	if res.Err == nil {
		return res.Outcome.String()
	}
	return strings.Replace(res.Err.Error(), "\n", " ", -1)
}
