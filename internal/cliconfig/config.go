package cliconfig

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DefaultPort is the TCP port OpenOCD serves its GDB interface on.
const DefaultPort = 3333

// Config holds CLI configuration for agdiflash.
type Config struct {
	// Target endpoint. SerialDevice, when set, takes precedence over
	// Host/Port.
	Host         string
	Port         int
	SerialDevice string
	BaudRate     int

	// Image is the firmware image file to program.
	Image string

	// Address is the flash base address the image is written to,
	// as a hex string. Parse with ParseHexAddress.
	Address string

	ChunkSize   int
	SegmentSize int
	DialTimeout time.Duration

	Watch   bool
	Verbose bool
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	return Config{
		Host:        "localhost",
		Port:        DefaultPort,
		BaudRate:    115200,
		Address:     "0x08000000",
		ChunkSize:   256,
		SegmentSize: 4096,
		DialTimeout: 5 * time.Second,
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Image == "" {
		return fmt.Errorf("image path is required")
	}
	if c.SerialDevice == "" {
		if c.Host == "" {
			return fmt.Errorf("host is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("port %d out of range", c.Port)
		}
	} else if c.BaudRate <= 0 {
		return fmt.Errorf("baud rate must be positive")
	}
	if _, err := ParseHexAddress(c.Address); err != nil {
		return fmt.Errorf("address %q: %w", c.Address, err)
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive")
	}
	// Chunks are padded to the 4-byte flash word size and the write
	// address advances by the padded length, so an unaligned chunk size
	// would replace trailing image bytes with pad bytes.
	if c.ChunkSize%4 != 0 {
		return fmt.Errorf("chunk size must be a multiple of 4")
	}
	if c.SegmentSize <= 0 {
		return fmt.Errorf("segment size must be positive")
	}
	return nil
}

// ParseHexAddress parses a flash address given as a 0x-prefixed or bare
// hexadecimal string.
func ParseHexAddress(s string) (uint32, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, err
	}
	return uint32(v), nil
}

// configSetter helps apply configuration values while respecting flag precedence.
// It only applies values if the corresponding flag hasn't been explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setInt sets an int value if positive and flag not changed.
func (s *configSetter) setInt(flag string, value int, dst *int) {
	if value <= 0 || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setIntFromString parses a string to int and sets the destination if valid.
// Used for environment variables that come as strings.
func (s *configSetter) setIntFromString(flag, value string, dst *int) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	i, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	if i <= 0 {
		return nil
	}
	*dst = i
	return nil
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
