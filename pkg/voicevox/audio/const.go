package audio

// ----------------------------------------------------------------------
// WAV ファイル定数 (動的チャンク探索ベース)
// ----------------------------------------------------------------------

const (
	RiffChunkIDSize   = 4 // "RIFF"
	RiffChunkSizeSize = 4 // ファイルサイズ - 8
	WaveIDSize        = 4 // "WAVE"

	ChunkIDSize     = 4
	ChunkSizeSize   = 4
	ChunkHeaderSize = ChunkIDSize + ChunkSizeSize // 8バイト

	FmtChunkDataSize = 16 // PCM の fmt チャンク本体

	WavRiffHeaderSize  = RiffChunkIDSize + RiffChunkSizeSize + WaveIDSize                         // 12バイト
	WavTotalHeaderSize = WavRiffHeaderSize + ChunkHeaderSize + FmtChunkDataSize + ChunkHeaderSize // 44バイト
)

// PCM の AudioFormat 値
const formatPCM = 1

// DefaultFormat はVOICEVOXエンジンの既定出力 (24kHz, モノラル, 16bit) です。
// クリップが1つもないトラックを組み立てるときに使います。
var DefaultFormat = Format{
	AudioFormat:   formatPCM,
	Channels:      1,
	SampleRate:    24000,
	ByteRate:      48000,
	BlockAlign:    2,
	BitsPerSample: 16,
}
