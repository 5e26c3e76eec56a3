package index

import (
	"fmt"
	"log/slog"

	"github.com/arloliu/posidx/compress"
	"github.com/arloliu/posidx/errs"
	"github.com/arloliu/posidx/format"
	"github.com/arloliu/posidx/internal/bitstream"
	"github.com/arloliu/posidx/internal/options"
	"github.com/arloliu/posidx/section"
)

// BuildConfig holds the settings of one build.
type BuildConfig struct {
	stats        section.PositionStats
	code         bitstream.Code
	codec        compress.Codec
	fixedBitSize int // -1 selects the optimal width
	logger       *Logger
}

// BuildOption is a functional option for configuring Build.
type BuildOption = options.Option[*BuildConfig]

func newBuildConfig(opts ...BuildOption) (*BuildConfig, error) {
	cfg := &BuildConfig{
		stats:        *section.NewPositionStats(),
		code:         bitstream.Fibonacci{},
		codec:        compress.NewNoOpCompressor(),
		fixedBitSize: -1,
		logger:       NoopLogger(),
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *BuildConfig) setCoding(coding format.CodingType) error {
	code, ok := bitstream.CodeFor(coding)
	if !ok {
		return fmt.Errorf("%w: %s", errs.ErrInvalidCoding, coding)
	}
	c.code = code
	c.stats.Coding = coding

	return nil
}

func (c *BuildConfig) setCompression(comp format.CompressionType) error {
	codec, err := compress.CreateCodec(comp, "index")
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrInvalidCompression, err)
	}
	c.codec = codec
	c.stats.Compression = comp

	return nil
}

// WithCoding selects the universal code of the overflow section.
// Valid values are format.CodingFibonacci (default) and format.CodingEliasDelta.
func WithCoding(coding format.CodingType) BuildOption {
	return options.New(func(c *BuildConfig) error {
		return c.setCoding(coding)
	})
}

// WithCompression selects the codec of the stored index file.
// Available compression types: format.CompressionNone (default),
// format.CompressionZstd, format.CompressionS2, format.CompressionLZ4.
func WithCompression(comp format.CompressionType) BuildOption {
	return options.New(func(c *BuildConfig) error {
		return c.setCompression(comp)
	})
}

// WithLittleEndian stores the stats record little-endian. This is the default.
func WithLittleEndian() BuildOption {
	return options.NoError(func(c *BuildConfig) {
		c.stats.Flag.WithLittleEndian()
	})
}

// WithBigEndian stores the stats record big-endian.
func WithBigEndian() BuildOption {
	return options.NoError(func(c *BuildConfig) {
		c.stats.Flag.WithBigEndian()
	})
}

// WithFixedBitSize forces the slot width instead of selecting the optimal
// one. The encoded size stays exact. It has no effect on an empty source.
func WithFixedBitSize(f uint8) BuildOption {
	return options.New(func(c *BuildConfig) error {
		if f > section.MaxFixedBitSize {
			return fmt.Errorf("%w: %d", errs.ErrInvalidFixedBitSize, f)
		}
		c.fixedBitSize = int(f)

		return nil
	})
}

// WithLogger sets the logger for build records. Builds are silent by default.
func WithLogger(l *slog.Logger) BuildOption {
	return options.NoError(func(c *BuildConfig) {
		c.logger = NewLogger(l)
	})
}

// ReaderConfig holds the settings of an opened index.
type ReaderConfig struct {
	logger *Logger
}

// ReaderOption is a functional option for configuring Open.
type ReaderOption = options.Option[*ReaderConfig]

func newReaderConfig(opts ...ReaderOption) (*ReaderConfig, error) {
	cfg := &ReaderConfig{logger: NoopLogger()}
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	return cfg, nil
}

// WithReaderLogger sets the logger for open records.
func WithReaderLogger(l *slog.Logger) ReaderOption {
	return options.NoError(func(c *ReaderConfig) {
		c.logger = NewLogger(l)
	})
}
