package voicevox

import "time"

// ----------------------------------------------------------------------
// 合成処理定数
// ----------------------------------------------------------------------

const (
	// DefaultAPIURL はローカルで起動したVOICEVOXエンジンの既定URLです。
	DefaultAPIURL = "http://localhost:50021"

	DefaultMaxParallelSegments = 6
	DefaultSegmentTimeout      = 300 * time.Second
	// DefaultSegmentRateLimit はエンジンへのリクエスト開始間隔です。
	DefaultSegmentRateLimit = 100 * time.Millisecond
)
