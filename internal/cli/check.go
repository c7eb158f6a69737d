package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/arloliu/fitstream/decoder"
)

// ErrCheckFailed is returned when at least one checked file is not a valid FIT file.
var ErrCheckFailed = errors.New("check failed")

func newCheckCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "check FILE...",
		Short: "Verify that files decode cleanly and their checksums match",
		Long: `Decode each file to the end and verify its trailing checksum.

Prints one OK or FAIL line per file and exits with status 1 when any file fails.

Examples:
  fitdump check ride.fit run.fit.gz
  fitdump check --strict *.fit`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			failed := 0
			for _, path := range args {
				records, err := a.checkFile(cmd, path)
				if err != nil {
					failed++
					a.log.WithField("file", path).WithError(err).Warn("check failed")
					fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)

					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "OK   %s (%d records)\n", path, records)
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d files", ErrCheckFailed, failed, len(args))
			}

			return nil
		},
	}
}

func (a *app) checkFile(cmd *cobra.Command, path string) (int, error) {
	dec, in, err := a.newDecoder(cmd, path)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	for ev, err := range dec.All() {
		if err != nil {
			return dec.Stats().Data, err
		}
		if cs, ok := ev.(*decoder.ChecksumEvent); ok {
			if err := cs.Err(); err != nil {
				return dec.Stats().Data, err
			}
		}
	}

	return dec.Stats().Data, nil
}
