package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	pflag "github.com/spf13/pflag"

	"github.com/hempflower/openocd-agdi/internal/cliconfig"
	"github.com/hempflower/openocd-agdi/internal/watch"
	"github.com/hempflower/openocd-agdi/pkg/flash"
	"github.com/hempflower/openocd-agdi/pkg/log"
	"github.com/hempflower/openocd-agdi/pkg/rsp"
	"github.com/hempflower/openocd-agdi/pkg/transport"
)

const helpDescription = `
Program a firmware image into an embedded target through a GDB remote
stub such as OpenOCD or a serial-attached monitor.

Highlights:
  - Speaks the GDB remote serial protocol directly; no gdb binary needed.
  - Discovers flash geometry from the target's memory map.
  - Re-flashes automatically when the image changes (--watch).
  - Configure via file, environment (AGDIFLASH_*), or flags.
`

var exampleUsage = strings.TrimSpace(`
  agdiflash --image build/firmware.bin
  agdiflash --host 192.168.1.20 --port 3333 --image fw.bin --address 0x08004000
  agdiflash --serial /dev/ttyUSB0 --baud 921600 --image fw.bin --watch
`)

func getVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "dev"
}

func main() {
	cfg := cliconfig.DefaultConfig()
	var cfgPath string

	root := &cobra.Command{
		Use:     "agdiflash",
		Short:   "Flash firmware through a GDB remote stub",
		Long:    strings.TrimSpace(helpDescription),
		Example: exampleUsage,
		Version: fmt.Sprintf("%s %s/%s", getVersion(), runtime.GOOS, runtime.GOARCH),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgFile := cfgPath
			if cfgFile == "" {
				cfgFile = cliconfig.DefaultConfigPath()
			}

			// Flags win over environment, environment wins over file.
			changed := map[string]bool{}
			cmd.Flags().Visit(func(f *pflag.Flag) { changed[f.Name] = true })

			if cfgFile != "" && cliconfig.FileExists(cfgFile) {
				fc, err := cliconfig.LoadFileConfig(cfgFile)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				if err := cliconfig.ApplyFileConfig(&cfg, fc, changed); err != nil {
					return err
				}
			}
			if err := cliconfig.ApplyEnvConfig(&cfg, changed); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger := newLogger(cfg.Verbose)
			return run(cmd.Context(), cfg, logger)
		},
	}

	root.Flags().StringVar(&cfgPath, "config", "", "path to config file (default: $HOME/.agdiflash/config.toml)")
	root.Flags().StringVar(&cfg.Host, "host", cfg.Host, "GDB stub host")
	root.Flags().IntVar(&cfg.Port, "port", cfg.Port, "GDB stub TCP port")
	root.Flags().StringVar(&cfg.SerialDevice, "serial", cfg.SerialDevice, "serial device to use instead of TCP (e.g. /dev/ttyUSB0)")
	root.Flags().IntVar(&cfg.BaudRate, "baud", cfg.BaudRate, "serial baud rate")
	root.Flags().StringVar(&cfg.Image, "image", cfg.Image, "firmware image file to program")
	root.Flags().StringVar(&cfg.Address, "address", cfg.Address, "flash base address (hex)")
	root.Flags().IntVar(&cfg.ChunkSize, "chunk-size", cfg.ChunkSize, "bytes per vFlashWrite packet")
	root.Flags().IntVar(&cfg.SegmentSize, "segment-size", cfg.SegmentSize, "bytes per image segment")
	root.Flags().DurationVar(&cfg.DialTimeout, "dial-timeout", cfg.DialTimeout, "TCP connect timeout")
	root.Flags().BoolVar(&cfg.Watch, "watch", cfg.Watch, "re-flash whenever the image file changes")
	root.Flags().BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "enable debug logging")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "agdiflash: %v\n", err)
		os.Exit(1)
	}
}

func newLogger(verbose bool) log.Logger {
	level := zerolog.InfoLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	base := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).With().Timestamp().Logger()
	return log.NewZerologAdapterWithLogger(base)
}

func run(ctx context.Context, cfg cliconfig.Config, logger log.Logger) error {
	if err := flashImage(cfg, logger); err != nil {
		if !cfg.Watch {
			return err
		}
		// In watch mode a failed download is not fatal; the next image
		// change gets another attempt.
		logger.Error("flash failed", log.Err(err))
	}

	if !cfg.Watch {
		return nil
	}

	w := watch.NewWatcher(cfg.Image, func(context.Context) {
		if err := flashImage(cfg, logger); err != nil {
			logger.Error("flash failed", log.Err(err))
		}
	}, watch.WithLogger(logger))

	if err := w.Run(ctx); err != nil && err != context.Canceled {
		return err
	}
	return nil
}

// flashImage runs one complete download against a fresh connection.
func flashImage(cfg cliconfig.Config, logger log.Logger) error {
	addr, err := cliconfig.ParseHexAddress(cfg.Address)
	if err != nil {
		return fmt.Errorf("address %q: %w", cfg.Address, err)
	}
	image, err := os.ReadFile(cfg.Image)
	if err != nil {
		return fmt.Errorf("read image: %w", err)
	}

	var t transport.Transport
	if cfg.SerialDevice != "" {
		t = transport.NewSerial(cfg.SerialDevice, cfg.BaudRate)
	} else {
		t = transport.NewTCPWithTimeout(cfg.Host, cfg.Port, cfg.DialTimeout)
	}

	client := rsp.NewClient(t, rsp.WithLogger(logger))
	if err := client.Connect(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer client.Disconnect()

	logger.Info("flashing image",
		log.String("image", cfg.Image),
		log.Int("bytes", len(image)),
		log.Hex("address", uint64(addr)),
	)

	d := flash.NewDownloader(client,
		flash.WithLogger(logger),
		flash.WithProgress(&consoleProgress{out: os.Stderr}),
		flash.WithChunkSize(cfg.ChunkSize),
		flash.WithLabel(filepath.Base(cfg.Image)),
	)
	return d.Download(flash.NewBytesSource(addr, image, cfg.SegmentSize))
}

// consoleProgress renders download progress as a single updating line.
type consoleProgress struct {
	out   *os.File
	label string
}

func (p *consoleProgress) Report(r flash.ProgressReport) {
	switch r.Job {
	case flash.ProgressInit:
		p.label = r.Label
	case flash.ProgressSetPos:
		fmt.Fprintf(p.out, "\r%s %3d%%", p.label, r.Pos)
	case flash.ProgressKill:
		fmt.Fprintf(p.out, "\r%s done\n", p.label)
	}
}
