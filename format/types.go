package format

type (
	CodingType      uint8
	CompressionType uint8
)

const (
	CodingFibonacci  CodingType = 0x1 // CodingFibonacci represents Fibonacci (Zeckendorf) coding of overflow pairs.
	CodingEliasDelta CodingType = 0x2 // CodingEliasDelta represents Elias delta coding of overflow pairs.

	CompressionNone CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2   CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4  CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
)

func (c CodingType) String() string {
	switch c {
	case CodingFibonacci:
		return "Fibonacci"
	case CodingEliasDelta:
		return "EliasDelta"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known coding identifier.
func (c CodingType) IsValid() bool {
	return c == CodingFibonacci || c == CodingEliasDelta
}

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	default:
		return "Unknown"
	}
}

// IsValid reports whether c is a known compression type.
func (c CompressionType) IsValid() bool {
	switch c {
	case CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4:
		return true
	default:
		return false
	}
}

// ParseCodingType maps a coding name back to its identifier.
func ParseCodingType(s string) (CodingType, bool) {
	switch s {
	case "Fibonacci", "fibonacci", "fib":
		return CodingFibonacci, true
	case "EliasDelta", "elias-delta", "delta":
		return CodingEliasDelta, true
	default:
		return 0, false
	}
}

// ParseCompressionType maps a compression name back to its identifier.
func ParseCompressionType(s string) (CompressionType, bool) {
	switch s {
	case "None", "none", "":
		return CompressionNone, true
	case "Zstd", "zstd":
		return CompressionZstd, true
	case "S2", "s2":
		return CompressionS2, true
	case "LZ4", "lz4":
		return CompressionLZ4, true
	default:
		return 0, false
	}
}
