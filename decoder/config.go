package decoder

import (
	"fmt"

	"github.com/arloliu/fitstream/errs"
	"github.com/arloliu/fitstream/format"
	"github.com/arloliu/fitstream/internal/options"
)

// Config holds the decoder settings fixed at construction time.
type Config struct {
	strict         bool
	maxFields      int
	checkHeaderCRC bool
}

// NewConfig returns the default configuration: lenient header validation,
// format.MaxFieldCount fields per definition and header CRC verification.
func NewConfig() *Config {
	return &Config{
		maxFields:      format.MaxFieldCount,
		checkHeaderCRC: true,
	}
}

// Strict reports whether reserved record header bits are rejected.
func (c *Config) Strict() bool {
	return c.strict
}

// MaxFields returns the per-definition field capacity.
func (c *Config) MaxFields() int {
	return c.maxFields
}

// CheckHeaderCRC reports whether a non-zero header CRC is verified.
func (c *Config) CheckHeaderCRC() bool {
	return c.checkHeaderCRC
}

func (c *Config) setMaxFields(n int) error {
	if n < 1 || n > format.MaxFieldCount {
		return fmt.Errorf("%w: max fields %d outside 1..%d", errs.ErrInvalidOption, n, format.MaxFieldCount)
	}
	c.maxFields = n

	return nil
}

// Option represents a functional option for configuring the Decoder.
type Option = options.Option[*Config]

// WithStrict makes reserved record header bits a decode error (errs.ErrReservedBitSet).
// By default they are tolerated.
func WithStrict(strict bool) Option {
	return options.NoError(func(c *Config) {
		c.strict = strict
	})
}

// WithMaxFields sets the number of fields a single definition may declare.
//
// The definition table reserves storage for 16*n descriptors up front. A
// definition declaring more fields fails with errs.ErrTooManyFields.
// n must be within 1..255.
func WithMaxFields(n int) Option {
	return options.New(func(c *Config) error {
		return c.setMaxFields(n)
	})
}

// WithHeaderCRCCheck enables or disables verification of the file header CRC.
func WithHeaderCRCCheck(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.checkHeaderCRC = enabled
	})
}
