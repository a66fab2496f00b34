package cliconfig

import "os"

// ApplyEnvConfig applies configuration from environment variables (AGDIFLASH_*).
// It respects flags that have been explicitly set (changed map).
// Returns error if any environment variable has an invalid format.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("host", os.Getenv("AGDIFLASH_HOST"), &cfg.Host)
	s.setString("serial", os.Getenv("AGDIFLASH_SERIAL"), &cfg.SerialDevice)
	s.setString("image", os.Getenv("AGDIFLASH_IMAGE"), &cfg.Image)
	s.setString("address", os.Getenv("AGDIFLASH_ADDRESS"), &cfg.Address)

	if err := s.setIntFromString("port", os.Getenv("AGDIFLASH_PORT"), &cfg.Port); err != nil {
		return err
	}
	if err := s.setIntFromString("baud", os.Getenv("AGDIFLASH_BAUD_RATE"), &cfg.BaudRate); err != nil {
		return err
	}
	if err := s.setIntFromString("chunk-size", os.Getenv("AGDIFLASH_CHUNK_SIZE"), &cfg.ChunkSize); err != nil {
		return err
	}
	if err := s.setIntFromString("segment-size", os.Getenv("AGDIFLASH_SEGMENT_SIZE"), &cfg.SegmentSize); err != nil {
		return err
	}

	if err := s.setDuration("dial-timeout", os.Getenv("AGDIFLASH_DIAL_TIMEOUT"), &cfg.DialTimeout); err != nil {
		return err
	}

	s.setBoolFromString("watch", os.Getenv("AGDIFLASH_WATCH"), &cfg.Watch)
	s.setBoolFromString("verbose", os.Getenv("AGDIFLASH_VERBOSE"), &cfg.Verbose)

	return nil
}
