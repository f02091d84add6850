// Command wwvbclockd runs the WWVB signal-decoding engine against a
// real GPIO receiver and I2C real-time clock, or (with --simulate)
// against an in-memory stand-in for the RTC chip; the GPIO receiver
// line is real in both modes.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/jochenvg/go-udev"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/andrewsil1/wwvbclock/internal/clockstore"
	"github.com/andrewsil1/wwvbclock/internal/wwvb"
)

// fileConfig is the YAML overlay on top of wwvb.DefaultConfig(),
// following the teacher's deviceid.go pattern of unmarshaling a small
// document straight into a typed struct rather than a generic map.
type fileConfig struct {
	ToleranceMS       *int  `yaml:"tolerance_ms"`
	PhaseToleranceMS  *int  `yaml:"phase_tolerance_ms"`
	NoiseFloorMS      *int  `yaml:"noise_floor_ms"`
	SNRWindowSize     *int  `yaml:"snr_window_size"`
	ResyncBaseDelayMS *int  `yaml:"resync_base_delay_ms"`
	ScratchWorkerLimit *int `yaml:"scratch_worker_limit"`
}

func (fc fileConfig) applyTo(cfg wwvb.Config) wwvb.Config {
	if fc.ToleranceMS != nil {
		cfg.ToleranceMS = *fc.ToleranceMS
	}
	if fc.PhaseToleranceMS != nil {
		cfg.PhaseToleranceMS = *fc.PhaseToleranceMS
	}
	if fc.NoiseFloorMS != nil {
		cfg.NoiseFloorMS = *fc.NoiseFloorMS
	}
	if fc.SNRWindowSize != nil {
		cfg.SNRWindowSize = *fc.SNRWindowSize
	}
	if fc.ResyncBaseDelayMS != nil {
		cfg.ResyncBaseDelayMS = *fc.ResyncBaseDelayMS
	}
	if fc.ScratchWorkerLimit != nil {
		cfg.ScratchWorkerLimit = *fc.ScratchWorkerLimit
	}
	return cfg
}

func loadFileConfig(path string) (fileConfig, error) {
	var fc fileConfig
	if path == "" {
		return fc, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fc, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fc, fmt.Errorf("parse config %q: %w", path, err)
	}
	return fc, nil
}

func main() {
	var (
		configPath  = pflag.StringP("config", "c", "", "path to YAML config overlay")
		gpioChip    = pflag.String("gpio-chip", "gpiochip0", "GPIO chip holding the WWVB receiver line")
		gpioLine    = pflag.Int("gpio-line", 4, "GPIO line offset for the WWVB receiver")
		i2cBus      = pflag.String("i2c-bus", "i2c1", "I2C bus name for the RTC chip")
		i2cAddr     = pflag.Uint16("i2c-addr", 0x68, "I2C address of the RTC chip")
		gmtOffset   = pflag.Int8("gmt-offset", 0, "initial GMT offset in hours, written to NVRAM only if the stored offset cannot be read")
		logLevel    = pflag.String("log-level", "info", "log level: debug, info, warn, error")
		simulate    = pflag.BoolP("simulate", "s", false, "run against an in-memory RTC stand-in instead of the I2C RTC chip (GPIO capture stays real)")
	)
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if level, err := log.ParseLevel(*logLevel); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warn("unrecognized log level, defaulting to info", "requested", *logLevel)
	}

	fc, err := loadFileConfig(*configPath)
	if err != nil {
		logger.Fatal("config load failed", "err", err)
	}
	cfg := fc.applyTo(wwvb.DefaultConfig())

	if err := checkDeviceExists(logger, "gpio", *gpioChip); err != nil {
		logger.Fatal("device discovery failed", "err", err)
	}
	if !*simulate {
		if err := checkDeviceExists(logger, "i2c-dev", *i2cBus); err != nil {
			logger.Fatal("device discovery failed", "err", err)
		}
	}

	capture, rtc, err := buildHardware(logger, *simulate, *gpioChip, *gpioLine, *i2cBus, *i2cAddr)
	if err != nil {
		logger.Fatal("hardware init failed", "err", err)
	}
	defer capture.Close()

	store := clockstore.New(rtc, logger)
	if _, err := store.GMTOffsetHours(); err != nil {
		if err := store.SetGMTOffsetHours(*gmtOffset); err != nil {
			logger.Warn("could not seed initial GMT offset", "err", err)
		}
	}

	engine := wwvb.NewEngine(cfg, capture, store, logger)

	stop := make(chan struct{})
	go store.Run(stop)

	logger.Info("wwvbclockd starting",
		"gpio_chip", *gpioChip, "gpio_line", *gpioLine,
		"i2c_bus", *i2cBus, "i2c_addr", *i2cAddr, "simulate", *simulate)

	if err := engine.Run(stop); err != nil {
		close(stop)
		logger.Fatal("engine halted", "err", err, "fatal", isFatal(err))
	}
}

// isFatal reports whether err is one of the three kinds spec.md §7
// treats as unrecoverable (WorkerSpawnFailed, RTCAbsent,
// PulseCaptureStartFailed), for inclusion in the fatal log line.
func isFatal(err error) bool {
	return errors.Is(err, wwvb.ErrWorkerSpawnFailed) ||
		errors.Is(err, wwvb.ErrRTCAbsent) ||
		errors.Is(err, wwvb.ErrPulseCaptureStartFailed)
}

// buildHardware wires the GPIO pulse capture and either a real I2C RTC
// or an in-memory stand-in, depending on --simulate. Pulse capture
// always needs a real (or kernel gpio-sim) GPIO chip; --simulate exists
// to let an operator exercise the Clock Store and engine logic without
// a real RTC chip wired up.
func buildHardware(logger *log.Logger, simulate bool, gpioChip string, gpioLine int, i2cBus string, i2cAddr uint16) (*wwvb.PulseCapture, clockstore.RTC, error) {
	capture, err := wwvb.NewPulseCapture(gpioChip, gpioLine, logger)
	if err != nil {
		return nil, nil, err
	}

	if simulate {
		return capture, clockstore.NewMemRTC(), nil
	}

	rtc, err := clockstore.OpenI2CRTC(i2cBus, i2cAddr)
	if err != nil {
		capture.Close()
		return nil, nil, fmt.Errorf("%w: %v", wwvb.ErrRTCAbsent, err)
	}
	return capture, rtc, nil
}

// checkDeviceExists uses go-udev to confirm a device under subsystem
// exists before init proceeds, per SPEC_FULL.md §11 and §12: a missing
// receiver or RTC adapter becomes a named fatal error here instead of
// an opaque hang inside gpiocdev/periph.io.
func checkDeviceExists(logger *log.Logger, subsystem, name string) error {
	u := udev.Udev{}
	enum := u.NewEnumerate()
	if err := enum.AddMatchSubsystem(subsystem); err != nil {
		return fmt.Errorf("udev enumerate subsystem %q: %w", subsystem, err)
	}
	devices, err := enum.Devices()
	if err != nil {
		return fmt.Errorf("udev list subsystem %q: %w", subsystem, err)
	}
	for _, d := range devices {
		if d.Sysname() == name {
			logger.Debug("device discovery found device", "subsystem", subsystem, "name", name, "syspath", d.Syspath())
			return nil
		}
	}
	return fmt.Errorf("no %s device named %q found", subsystem, name)
}
