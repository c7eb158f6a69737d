// Package cli implements the fitdump commands on top of cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/fitstream/decoder"
	"github.com/arloliu/fitstream/internal/log"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	configFile string
	cfg        *Config
	log        *log.Logger
}

// newRootCommand builds the fitdump command tree and the state its commands share.
func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	root := &cobra.Command{
		Use:   "fitdump",
		Short: "Inspect FIT activity files",
		Long: `fitdump decodes FIT (Flexible and Interoperable Data Transfer) files.

Inputs may be plain or wrapped in gzip, zstd, s2 or lz4 compression; the
wrapper is detected from its magic bytes. Use "-" to read from stdin.

Configuration is read from an optional YAML file (--config), overridden by
FITDUMP_* environment variables (FITDUMP_DECODE_STRICT=true) and flags.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(a.configFile, cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := log.New(cfg.Log, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.log = logger

			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.configFile, "config", "c", "", "YAML config file path")
	pf.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.String("log-format", "text", "log format (text, json)")
	pf.String("log-file", "", "also write logs to this file, rotated")
	pf.Bool("strict", false, "reject reserved record header bits")
	pf.Int("max-fields", 255, "maximum fields per definition (1-255)")
	pf.Bool("header-crc", true, "verify the file header CRC")

	root.AddCommand(newDumpCommand(a))
	root.AddCommand(newCheckCommand(a))
	root.AddCommand(newStatsCommand(a))

	return root, a
}

// run executes root and closes the logger whether or not the command failed.
func (a *app) run(root *cobra.Command) error {
	err := root.Execute()
	if cerr := a.close(); err == nil {
		err = cerr
	}

	return err
}

// close releases the logger and its file appender. It is safe to call twice.
func (a *app) close() error {
	if a.log == nil {
		return nil
	}

	err := a.log.Close()
	a.log = nil

	return err
}

// newDecoder opens path and creates a decoder configured from the loaded config.
func (a *app) newDecoder(cmd *cobra.Command, path string) (*decoder.Decoder, *input, error) {
	in, err := openInput(path, cmd.InOrStdin())
	if err != nil {
		return nil, nil, err
	}

	dec, err := decoder.New(in, a.cfg.Decode.Options()...)
	if err != nil {
		_ = in.Close()
		return nil, nil, err
	}

	a.log.WithField("file", path).WithField("compression", in.compression).Debug("opened input")

	return dec, in, nil
}

// Execute runs fitdump with the process arguments and returns the exit code.
func Execute() int {
	root, a := newRootCommand()
	if err := a.run(root); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	return 0
}
