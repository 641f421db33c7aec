// Command rtcctl reads, sets and monitors a battery-backed real-time clock
// (RX8900, PCF8523 or DS3231) attached to a Linux I2C bus.
package main // import "github.com/ajanata/rtcdrivers/cmd/rtcctl"

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/drivers"

	"github.com/ajanata/rtcdrivers/hostbus"
)

func main() {
	cfg, args, err := parseArgs(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "rtcctl: %v\n", err)
		os.Exit(2)
	}
	log := newLogger(cfg.LogLevel, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err = xmain(ctx, cfg, args, os.Stdout, log)
	stop()
	if err != nil {
		log.WithError(err).Error("rtcctl failed")
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func xmain(ctx context.Context, cfg config, args []string, out io.Writer, log *logrus.Entry) error {
	bus, err := openBus(cfg)
	if err != nil {
		return fmt.Errorf("could not open I2C bus %d: %w", cfg.Bus, err)
	}
	defer bus.Close()

	a, err := newApp(cfg, bus, out, log)
	if err != nil {
		return err
	}
	// flags stay readable on a chip that fails to configure
	if err := a.chip.Configure(); err != nil {
		a.log.WithError(err).Error("could not configure the chip")
	}
	return a.run(ctx, args)
}

type closableBus interface {
	drivers.I2C
	io.Closer
}

func openBus(cfg config) (closableBus, error) {
	if !cfg.SMBus {
		d, err := hostbus.Open(cfg.Bus)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	if cfg.Address > 0x7F {
		return nil, fmt.Errorf("SMBus cannot reach 10-bit address 0x%x", cfg.Address)
	}
	s, err := hostbus.OpenSMBus(cfg.Bus, uint8(cfg.Address))
	if err != nil {
		return nil, err
	}
	return s, nil
}
