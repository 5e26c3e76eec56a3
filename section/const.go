package section

const (
	// Bit masks of StatsFlag.Options
	EndiannessMask   = 0x0002 // Mask for endianness bit (bit 1)
	ReservedBitsMask = 0x000D // Mask for reserved bits 0, 2 and 3
	MagicNumberMask  = 0xFFF0 // Mask for magic number (bits 4-15)

	// MagicPositionStatsV1 identifies version 1 of the position stats record.
	MagicPositionStatsV1 = 0xEC10
)

// offsets and sizes in the stats record
const (
	StatsSize = 64 // fixed stats record size in bytes

	offsetOptions       = 0
	offsetCoding        = 2
	offsetCompression   = 3
	offsetFixedBitSize  = 4
	offsetReserved      = 5
	offsetRecordCount   = 8
	offsetBottom        = 16
	offsetTop           = 24
	offsetBitsWritten   = 32
	offsetStoredSize    = 40
	offsetIndexChecksum = 48
	offsetStatsChecksum = 56

	// MaxFixedBitSize is the widest fixed field of the index.
	MaxFixedBitSize = 64
)
