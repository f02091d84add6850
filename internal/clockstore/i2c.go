package clockstore

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Register offsets for a DS3231-class TCXO RTC. Calendar registers are
// BCD-packed per the chip datasheet; NVRAM is emulated in a block of
// general-purpose battery-backed registers, since not every RTC family
// exposes true NVRAM the way the original hardware's chip did (§9's
// "treat the RTC as an abstract time store" open question).
const (
	regSeconds    = 0x00
	regMinutes    = 0x01
	regHours      = 0x02
	regDay        = 0x03 // day of week
	regDate       = 0x04
	regMonth      = 0x05
	regYear       = 0x06
	regStatus     = 0x0F // bit 7: oscillator stop flag (OSF)
	regNVRAMStart = 0x14 // 5 bytes of scratch NVRAM
)

// I2CRTC implements RTC over a periph.io I2C bus. It is the low-level
// I2C transport to the Clock Store's RTC chip that spec.md §1 and §6
// name as an external collaborator: the engine never refers to this
// type; it reaches the chip only through Store and the RTC interface.
type I2CRTC struct {
	dev *i2c.Dev
}

// OpenI2CRTC initializes the host's I2C drivers (via periph.io/x/host)
// and opens busName, addressing the RTC at addr. A failure here is the
// RTCAbsent fatal condition of §7.
func OpenI2CRTC(busName string, addr uint16) (*I2CRTC, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("clockstore: host init: %w", err)
	}
	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("clockstore: open i2c bus %q: %w", busName, err)
	}
	return &I2CRTC{dev: &i2c.Dev{Addr: addr, Bus: bus}}, nil
}

func (r *I2CRTC) readRegs(start byte, n int) ([]byte, error) {
	out := make([]byte, n)
	if err := r.dev.Tx([]byte{start}, out); err != nil {
		return nil, fmt.Errorf("clockstore: i2c read reg 0x%02x: %w", start, err)
	}
	return out, nil
}

func (r *I2CRTC) writeRegs(start byte, data []byte) error {
	buf := append([]byte{start}, data...)
	if err := r.dev.Tx(buf, nil); err != nil {
		return fmt.Errorf("clockstore: i2c write reg 0x%02x: %w", start, err)
	}
	return nil
}

func bcdEncode(v int) byte { return byte((v/10)<<4 | v%10) }
func bcdDecode(b byte) int { return int(b>>4)*10 + int(b&0x0f) }

func (r *I2CRTC) ReadCalendar() (CalendarTime, error) {
	regs, err := r.readRegs(regSeconds, 7)
	if err != nil {
		return CalendarTime{}, err
	}
	return CalendarTime{
		Second:  bcdDecode(regs[regSeconds] & 0x7f),
		Minute:  bcdDecode(regs[regMinutes] & 0x7f),
		Hour:    bcdDecode(regs[regHours] & 0x3f),
		Weekday: int(regs[regDay]&0x07) - 1,
		Day:     bcdDecode(regs[regDate] & 0x3f),
		Month:   bcdDecode(regs[regMonth] & 0x1f),
		Year:    2000 + bcdDecode(regs[regYear]),
	}, nil
}

func (r *I2CRTC) WriteCalendar(t CalendarTime) error {
	regs := []byte{
		bcdEncode(t.Second),
		bcdEncode(t.Minute),
		bcdEncode(t.Hour),
		byte(t.Weekday + 1),
		bcdEncode(t.Day),
		bcdEncode(t.Month),
		bcdEncode(t.Year - 2000),
	}
	return r.writeRegs(regSeconds, regs)
}

func (r *I2CRTC) WriteSeconds(seconds int) error {
	return r.writeRegs(regSeconds, []byte{bcdEncode(seconds % 60)})
}

func (r *I2CRTC) ReadNVRAM() ([5]byte, error) {
	var out [5]byte
	regs, err := r.readRegs(regNVRAMStart, 5)
	if err != nil {
		return out, err
	}
	copy(out[:], regs)
	return out, nil
}

func (r *I2CRTC) WriteNVRAM(data [5]byte) error {
	return r.writeRegs(regNVRAMStart, data[:])
}

func (r *I2CRTC) OscillatorFailed() (bool, error) {
	regs, err := r.readRegs(regStatus, 1)
	if err != nil {
		return false, err
	}
	return regs[0]&0x80 != 0, nil
}
