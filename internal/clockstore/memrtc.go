package clockstore

import "sync"

// MemRTC is an in-memory RTC used by tests and by the --simulate mode
// of cmd/wwvbclockd, standing in for the real I2C chip behind the RTC
// interface.
type MemRTC struct {
	mu       sync.Mutex
	calendar CalendarTime
	nvram    [5]byte
	oscFail  bool
}

func NewMemRTC() *MemRTC {
	return &MemRTC{}
}

func (m *MemRTC) ReadCalendar() (CalendarTime, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calendar, nil
}

func (m *MemRTC) WriteCalendar(t CalendarTime) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calendar = t
	return nil
}

func (m *MemRTC) WriteSeconds(seconds int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calendar.Second = seconds
	return nil
}

func (m *MemRTC) ReadNVRAM() ([5]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.nvram, nil
}

func (m *MemRTC) WriteNVRAM(data [5]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nvram = data
	return nil
}

func (m *MemRTC) OscillatorFailed() (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.oscFail, nil
}

// SetRegister forces the oscillator-failed bit for testing the
// clock-invalid path (§6's set_register contract).
func (m *MemRTC) SetRegister(failed bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.oscFail = failed
}
