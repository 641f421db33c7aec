package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/ajanata/rtcdrivers/internal/publish"
)

// config is the rtcctl configuration. It is read from a YAML file and then
// overridden by the flags given on the command line.
type config struct {
	Chip    string `yaml:"chip"`
	Bus     int    `yaml:"bus"`     // N in /dev/i2c-N
	Address uint16 `yaml:"address"` // 0 means the chip's default
	SMBus   bool   `yaml:"smbus"`

	LogLevel int `yaml:"loglevel"`

	Interval time.Duration    `yaml:"interval"`
	Topic    string           `yaml:"topic"`
	Encoding publish.Encoding `yaml:"encoding"`
	MQTT     publish.Config   `yaml:"mqtt"`
}

func defaultConfig() config {
	return config{
		Chip:     "rx8900",
		Bus:      1,
		LogLevel: int(logrus.InfoLevel),
		Interval: 10 * time.Second,
		Topic:    "rtcctl/reading",
	}
}

func loadConfig(path string, cfg *config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("could not open config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("could not decode config %q: %w", path, err)
	}
	return nil
}

// parseArgs builds the configuration from the optional -config file and the
// flags, and returns the remaining arguments (the subcommand).
func parseArgs(args []string) (config, []string, error) {
	cfg := defaultConfig()

	fset := flag.NewFlagSet("rtcctl", flag.ContinueOnError)
	var (
		path     = fset.String("config", "", "path to a YAML configuration file")
		chipName = fset.String("chip", cfg.Chip, "chip type: rx8900, pcf8523 or ds3231")
		bus      = fset.Int("bus", cfg.Bus, "I2C bus number (/dev/i2c-N)")
		addr     = fset.Uint("addr", 0, "I2C address of the chip (0 for the chip's default)")
		smbus    = fset.Bool("smbus", false, "use SMBus block transfers instead of I2C_RDWR")
		loglevel = fset.Int("loglevel", cfg.LogLevel, "The loglevel to use. Valid values are from 0 to 6. Higher values output more information")
		interval = fset.Duration("interval", cfg.Interval, "watch: time between two readings")
		topic    = fset.String("topic", cfg.Topic, "watch: MQTT topic")
		broker   = fset.String("broker", "", "watch: MQTT broker URL (tcp://host:port), readings are printed when empty")
		backend  = fset.String("backend", "", "watch: MQTT client, paho or natiu")
		encoding = fset.String("encoding", "", "watch: payload encoding, json or cbor")
	)
	fset.Usage = func() {
		fmt.Fprintf(fset.Output(), "Usage: rtcctl [flags] <command> [args]\n\nCommands:\n%s\nFlags:\n", usage)
		fset.PrintDefaults()
	}
	if err := fset.Parse(args); err != nil {
		return cfg, nil, err
	}

	if *path != "" {
		if err := loadConfig(*path, &cfg); err != nil {
			return cfg, nil, err
		}
	}

	var err error
	fset.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "chip":
			cfg.Chip = *chipName
		case "bus":
			cfg.Bus = *bus
		case "addr":
			if *addr > 0x3FF {
				err = fmt.Errorf("invalid I2C address 0x%x", *addr)
			}
			cfg.Address = uint16(*addr)
		case "smbus":
			cfg.SMBus = *smbus
		case "loglevel":
			cfg.LogLevel = *loglevel
		case "interval":
			cfg.Interval = *interval
		case "topic":
			cfg.Topic = *topic
		case "broker":
			cfg.MQTT.Broker = *broker
		case "backend":
			cfg.MQTT.Backend = publish.Backend(*backend)
		case "encoding":
			e, perr := publish.ParseEncoding(*encoding)
			if perr != nil {
				err = perr
			}
			cfg.Encoding = e
		}
	})
	if err != nil {
		return cfg, nil, err
	}
	if cfg.Address == 0 {
		if cfg.Address, err = defaultAddress(cfg.Chip); err != nil {
			return cfg, nil, err
		}
	}
	if cfg.Interval <= 0 {
		return cfg, nil, fmt.Errorf("invalid watch interval %v", cfg.Interval)
	}
	return cfg, fset.Args(), nil
}
