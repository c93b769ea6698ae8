package hw

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/golang/glog"
	"go.bug.st/serial"

	"github.com/robotalks/livelamp/pkg/framework"
)

// Defaults of the radar UART.
const (
	DefaultBaudRate   = 256000
	DefaultUARTBuffer = 4096

	readTimeout = 100 * time.Millisecond
)

// UART buffers bytes from a serial port in a background goroutine and
// exposes them without blocking (ld2410.ByteSource).
type UART struct {
	Path    string
	Dropped uint64 // bytes discarded on buffer overflow

	port     io.ReadWriteCloser
	capacity int

	lock sync.Mutex
	buf  []byte
}

// OpenUART opens a serial port, 8N1.
func OpenUART(path string, baudRate int) (*UART, error) {
	if baudRate <= 0 {
		baudRate = DefaultBaudRate
	}
	port, err := serial.Open(path, &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// a read timeout lets the read loop notice a closed port.
	if err := port.SetReadTimeout(readTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("set read timeout %s: %w", path, err)
	}
	u := NewUART(port, DefaultUARTBuffer)
	u.Path = path
	return u, nil
}

// NewUART wraps an opened port. capacity bounds the buffered bytes; on
// overflow the oldest bytes are dropped.
func NewUART(port io.ReadWriteCloser, capacity int) *UART {
	if capacity <= 0 {
		capacity = DefaultUARTBuffer
	}
	return &UART{port: port, capacity: capacity}
}

// Run implements framework.Runnable. The port is closed when it returns.
func (u *UART) Run(ctx context.Context) error {
	return framework.RunWithContextCloser(ctx, u.port, u.readLoop)
}

func (u *UART) readLoop() error {
	chunk := make([]byte, 256)
	for {
		n, err := u.port.Read(chunk)
		if n > 0 {
			u.push(chunk[:n])
		}
		if err != nil {
			return fmt.Errorf("uart %s: %w", u.Path, err)
		}
	}
}

func (u *UART) push(p []byte) {
	u.lock.Lock()
	defer u.lock.Unlock()
	u.buf = append(u.buf, p...)
	if over := len(u.buf) - u.capacity; over > 0 {
		u.Dropped += uint64(over)
		u.buf = append(u.buf[:0], u.buf[over:]...)
		glog.V(2).Infof("uart %s: overflow, dropped %d bytes", u.Path, over)
	}
}

// Available returns the number of buffered bytes.
func (u *UART) Available() int {
	u.lock.Lock()
	defer u.lock.Unlock()
	return len(u.buf)
}

// Read reads buffered bytes. It never blocks and returns 0 when empty.
func (u *UART) Read(p []byte) (int, error) {
	u.lock.Lock()
	defer u.lock.Unlock()
	n := copy(p, u.buf)
	u.buf = append(u.buf[:0], u.buf[n:]...)
	return n, nil
}

// Write writes to the port directly, e.g. radar commands.
func (u *UART) Write(p []byte) (int, error) {
	return u.port.Write(p)
}
