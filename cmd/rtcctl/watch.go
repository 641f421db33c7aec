package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ajanata/rtcdrivers/internal/publish"
	"github.com/ajanata/rtcdrivers/rtc"
)

// watch samples the clock every interval and hands the readings to a
// publishing goroutine. Without a broker the encoded readings are printed.
// A count of 0 runs until ctx is done.
func (a *app) watch(ctx context.Context, args []string) error {
	count := 0
	if len(args) > 1 {
		return errUsage
	}
	if len(args) == 1 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 0 {
			return fmt.Errorf("invalid count %q", args[0])
		}
		count = n
	}
	log := a.log.WithField("prefix", "watch")

	var pub publish.Publisher
	if a.cfg.MQTT.Broker != "" {
		cfg := a.cfg.MQTT
		cfg.Log = log.WithField("prefix", "mqtt")
		var err error
		if pub, err = a.newPublisher(ctx, cfg); err != nil {
			return fmt.Errorf("could not connect to broker: %w", err)
		}
		defer pub.Close()
	}

	readings := make(chan publish.Reading)
	grp, ctx := errgroup.WithContext(ctx)
	grp.Go(func() error {
		defer close(readings)
		tick := time.NewTicker(a.cfg.Interval)
		defer tick.Stop()

		for n := 0; count == 0 || n < count; n++ {
			if n > 0 {
				select {
				case <-ctx.Done():
					return nil
				case <-tick.C:
				}
			}
			r, err := a.sample()
			if err != nil {
				log.WithError(err).Warn("could not read the clock")
				a.reconfigure()
				continue
			}
			select {
			case readings <- r:
			case <-ctx.Done():
				return nil
			}
		}
		return nil
	})
	grp.Go(func() error {
		for r := range readings {
			payload, err := publish.Encode(r, a.cfg.Encoding)
			if err != nil {
				return fmt.Errorf("could not encode reading: %w", err)
			}
			if pub == nil {
				a.print(payload)
				continue
			}
			if err := pub.Publish(ctx, a.cfg.Topic, payload); err != nil {
				log.WithError(err).Warn("could not publish reading")
				continue
			}
			log.WithField("time", r.Time).Debug("published")
		}
		return nil
	})
	return grp.Wait()
}

// reconfigure reconfigures a chip that stopped being Ready after a bus error.
func (a *app) reconfigure() {
	if a.chip.State() == rtc.Ready {
		return
	}
	if err := a.chip.Configure(); err != nil {
		a.log.WithError(err).Error("could not reconfigure the chip")
		return
	}
	a.log.Info("chip reconfigured")
}

func (a *app) sample() (publish.Reading, error) {
	t, err := a.chip.Now()
	if err != nil {
		return publish.Reading{}, err
	}
	flags, _, err := a.chip.FlagReport()
	if err != nil {
		return publish.Reading{}, err
	}
	stopped, err := a.chip.OscillatorStopped()
	if err != nil {
		return publish.Reading{}, err
	}
	r := publish.Reading{
		Chip:    a.chip.Name(),
		Time:    t,
		Valid:   !stopped,
		Flags:   flags,
		State:   a.chip.State().String(),
		Sampled: a.now().UTC(),
	}
	switch mc, err := a.chip.Temperature(); {
	case err == nil:
		r.TempMC = &mc
	case !errors.Is(err, rtc.ErrUnsupported):
		return publish.Reading{}, err
	}
	return r, nil
}

func (a *app) print(payload []byte) {
	if a.cfg.Encoding == publish.CBOR {
		fmt.Fprintln(a.out, hex.EncodeToString(payload))
		return
	}
	fmt.Fprintf(a.out, "%s\n", payload)
}
