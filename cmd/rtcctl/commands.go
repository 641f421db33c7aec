package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"tinygo.org/x/drivers"

	"github.com/ajanata/rtcdrivers/internal/publish"
	"github.com/ajanata/rtcdrivers/rtc"
)

const usage = `  show                          print the date and time
  set <RFC3339|now>             set the date and time
  sync [host[:port]]            set the date and time from an NTP server
  flags                         print the status flags
  clear-flags                   clear the event flags
  alarm [show]                  print the alarm
  alarm set <HH:MM> [days]      set the alarm; fields may be *, days is mon,fri or day=N
  alarm off                     disable the alarm
  timer <duration>              start the countdown timer
  timer off                     stop the countdown timer
  temp                          print the chip temperature
  watch [count]                 read the clock every -interval and publish the readings
  shell                         interactive prompt running these commands
`

var errUsage = errors.New("invalid usage, see rtcctl -h")

type app struct {
	cfg  config
	chip chip
	out  io.Writer
	log  *logrus.Entry

	newPublisher func(context.Context, publish.Config) (publish.Publisher, error)
	queryNTP     func(ctx context.Context, host string, timeout time.Duration) (time.Time, error)
	now          func() time.Time
}

func newApp(cfg config, bus drivers.I2C, out io.Writer, log *logrus.Entry) (*app, error) {
	c, err := newChip(cfg.Chip, bus, cfg.Address)
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:          cfg,
		chip:         c,
		out:          out,
		log:          log.WithField("prefix", c.Name()),
		newPublisher: publish.New,
		queryNTP:     queryNTP,
		now:          time.Now,
	}, nil
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, args := args[0], args[1:]
	a.log.WithField("args", args).Debugf("running %s", cmd)

	switch cmd {
	case "show":
		return a.show()
	case "set":
		return a.set(args)
	case "sync":
		return a.sync(ctx, args)
	case "flags":
		return a.flags()
	case "clear-flags":
		return a.chip.ClearAllFlags()
	case "alarm":
		return a.alarm(args)
	case "timer":
		return a.timer(args)
	case "temp":
		return a.temp()
	case "watch":
		return a.watch(ctx, args)
	case "shell":
		return a.shell(ctx)
	case "help":
		fmt.Fprint(a.out, usage)
		return nil
	}
	return fmt.Errorf("unknown command %q: %w", cmd, errUsage)
}

func (a *app) show() error {
	dt, err := a.chip.DateTime()
	if err != nil {
		return fmt.Errorf("could not read the clock: %w", err)
	}
	stopped, err := a.chip.OscillatorStopped()
	if err != nil {
		return fmt.Errorf("could not read the flags: %w", err)
	}
	fmt.Fprintln(a.out, dt)
	if stopped {
		fmt.Fprintln(a.out, "warning: the oscillator stopped, the time is not valid")
	}
	return nil
}

func (a *app) set(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	var t time.Time
	if args[0] == "now" {
		t = a.now()
	} else {
		var err error
		if t, err = time.Parse(time.RFC3339, args[0]); err != nil {
			return fmt.Errorf("could not parse time: %w", err)
		}
	}
	t = t.UTC().Truncate(time.Second)
	if err := a.chip.Set(t); err != nil {
		return fmt.Errorf("could not set the clock: %w", err)
	}
	a.log.WithField("time", t).Info("clock set")
	fmt.Fprintf(a.out, "clock set to %s\n", t.Format(time.RFC3339))
	return nil
}

func (a *app) flags() error {
	now, powerOn, err := a.chip.FlagReport()
	if err != nil {
		return fmt.Errorf("could not read the flags: %w", err)
	}
	fmt.Fprintf(a.out, "flags:          %s\npower-on flags: %s\nstate:          %v\n", now, powerOn, a.chip.State())
	return nil
}

func (a *app) alarm(args []string) error {
	if len(args) == 0 || args[0] == "show" {
		s, err := a.chip.Armed()
		if err != nil {
			return fmt.Errorf("could not read the alarm: %w", err)
		}
		fmt.Fprintln(a.out, s)
		return nil
	}
	switch args[0] {
	case "off":
		return a.chip.Disarm()
	case "set":
		s, err := parseAlarm(args[1:])
		if err != nil {
			return err
		}
		if err := a.chip.Arm(s); err != nil {
			return fmt.Errorf("could not set the alarm: %w", err)
		}
		return nil
	}
	return errUsage
}

func parseAlarm(args []string) (alarmSpec, error) {
	var s alarmSpec
	if len(args) < 1 || len(args) > 2 {
		return s, errUsage
	}
	hm := strings.Split(args[0], ":")
	if len(hm) != 2 {
		return s, fmt.Errorf("invalid alarm time %q, want HH:MM", args[0])
	}
	var err error
	if s.Hour, err = parseAlarmField(hm[0]); err != nil {
		return s, err
	}
	if s.Minute, err = parseAlarmField(hm[1]); err != nil {
		return s, err
	}
	if len(args) == 1 {
		return s, nil
	}
	if day, ok := strings.CutPrefix(args[1], "day="); ok {
		s.Day, err = parseAlarmField(day)
		return s, err
	}
	s.Weekdays, err = parseWeekdays(args[1])
	return s, err
}

func parseAlarmField(s string) (rtc.AlarmField, error) {
	if s == "*" {
		return rtc.Every, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return rtc.Every, fmt.Errorf("invalid alarm field %q", s)
	}
	return rtc.At(v), nil
}

func parseWeekdays(s string) (rtc.Weekdays, error) {
	var w rtc.Weekdays
	for _, name := range strings.Split(s, ",") {
		found := false
		for d := time.Sunday; d <= time.Saturday; d++ {
			if strings.EqualFold(name, d.String()[:3]) || strings.EqualFold(name, d.String()) {
				w, found = w.With(d), true
				break
			}
		}
		if !found {
			return 0, fmt.Errorf("invalid weekday %q", name)
		}
	}
	return w, nil
}

func (a *app) timer(args []string) error {
	if len(args) != 1 {
		return errUsage
	}
	if args[0] == "off" {
		return a.chip.StopTimer()
	}
	d, err := time.ParseDuration(args[0])
	if err != nil {
		return fmt.Errorf("could not parse timer interval: %w", err)
	}
	if err := a.chip.StartTimer(d); err != nil {
		return fmt.Errorf("could not start the timer: %w", err)
	}
	fmt.Fprintf(a.out, "timer fires every %v\n", d)
	return nil
}

func (a *app) temp() error {
	mc, err := a.chip.Temperature()
	if err != nil {
		return fmt.Errorf("could not read the temperature: %w", err)
	}
	fmt.Fprintf(a.out, "%.3f °C\n", float64(mc)/1000)
	return nil
}
