package display

import (
	"fmt"
	"time"

	"github.com/lestrrat-go/strftime"
	"github.com/pkg/term"

	"github.com/andrewsil1/wwvbclock/internal/clockstore"
)

// SerialDebugWriter writes one formatted line per committed minute
// frame to a plain debug UART, the way the teacher's serial_port.go
// writes raw bytes to a term.Term.
type SerialDebugWriter struct {
	fd         *term.Term
	timeFormat *strftime.Strftime
}

// OpenSerialDebugWriter opens devicename at baud and prepares the
// timestamp formatter used on every line.
func OpenSerialDebugWriter(devicename string, baud int) (*SerialDebugWriter, error) {
	fd, err := term.Open(devicename, term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("display: open serial debug port %q: %w", devicename, err)
	}
	switch baud {
	case 0:
	case 1200, 2400, 4800, 9600, 19200, 38400, 57600, 115200:
		fd.SetSpeed(baud)
	default:
		fd.SetSpeed(9600)
	}

	format, err := strftime.New("%Y-%m-%d %H:%M:%S")
	if err != nil {
		return nil, fmt.Errorf("display: compile timestamp format: %w", err)
	}
	return &SerialDebugWriter{fd: fd, timeFormat: format}, nil
}

// WriteDebugLine implements display.DebugWriter.
func (w *SerialDebugWriter) WriteDebugLine(line string) error {
	_, err := w.fd.Write([]byte(line + "\r\n"))
	return err
}

// WriteCommit formats a committed calendar time the way the teacher's
// dw_printf diagnostics format a decoded packet, and writes it as one
// debug line.
func (w *SerialDebugWriter) WriteCommit(t clockstore.CalendarTime, dst clockstore.DSTState, gmtOffsetHours int8) error {
	stamp := w.timeFormat.FormatString(time.Date(t.Year, time.Month(t.Month), t.Day, t.Hour, t.Minute, t.Second, 0, time.UTC))
	return w.WriteDebugLine(fmt.Sprintf("%s UTC dst=%s gmt_offset=%dh", stamp, dst, gmtOffsetHours))
}

// Close releases the underlying serial port.
func (w *SerialDebugWriter) Close() error {
	if w.fd == nil {
		return nil
	}
	return w.fd.Close()
}
