package serial

import (
	"io"
	"sync"

	"go.bug.st/serial"
)

// openPort is replaced in tests.
var openPort = serial.Open

// Monitor manages a serial port connection.
type Monitor struct {
	port     serial.Port
	portName string
	baudRate int
	mu       sync.Mutex
	running  bool
	err      error
	dataCh   chan []byte
	done     chan struct{}
	stopped  chan struct{}
}

// NewMonitor creates a new serial monitor.
func NewMonitor() *Monitor {
	return &Monitor{
		dataCh: make(chan []byte, 64),
	}
}

// Connect opens a serial port with the given settings.
func (m *Monitor) Connect(portName string, baudRate int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.disconnectLocked()
	}

	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}

	port, err := openPort(portName, mode)
	if err != nil {
		return err
	}

	m.port = port
	m.portName = portName
	m.baudRate = baudRate
	m.running = true
	m.err = nil
	m.done = make(chan struct{})
	m.stopped = make(chan struct{})

	go m.readLoop(port, m.done, m.stopped)
	return nil
}

// Disconnect closes the serial port.
func (m *Monitor) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.disconnectLocked()
}

func (m *Monitor) disconnectLocked() {
	if !m.running {
		return
	}
	m.running = false
	close(m.done)
	if m.port != nil {
		m.port.Close()
		m.port = nil
	}
}

// Write sends data to the serial port.
func (m *Monitor) Write(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.port == nil {
		return io.ErrClosedPipe
	}
	_, err := m.port.Write(data)
	return err
}

// DataChan returns the channel that receives serial data.
func (m *Monitor) DataChan() <-chan []byte {
	return m.dataCh
}

// Stopped is closed when the read loop of the current connection exits,
// either after Disconnect or because the port failed (e.g. unplugged).
func (m *Monitor) Stopped() <-chan struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Err returns the read error that ended the last connection, if any.
func (m *Monitor) Err() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.err
}

// Connected returns whether the monitor is connected.
func (m *Monitor) Connected() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) readLoop(port serial.Port, done, stopped chan struct{}) {
	defer close(stopped)

	buf := make([]byte, 1024)
	for {
		n, err := port.Read(buf)
		if n > 0 {
			data := append([]byte(nil), buf[:n]...)
			select {
			case m.dataCh <- data:
			case <-done:
				return
			}
		}
		if err != nil {
			select {
			case <-done:
				// closed by Disconnect
			default:
				m.mu.Lock()
				m.err = err
				m.running = false
				port.Close()
				if m.port == port {
					m.port = nil
				}
				m.mu.Unlock()
			}
			return
		}
		if n == 0 {
			select {
			case <-done:
				return
			default:
			}
		}
	}
}
