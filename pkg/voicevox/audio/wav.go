package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"time"
)

// Format はWAVの fmt チャンクの内容です。
type Format struct {
	AudioFormat   uint16
	Channels      uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Clip は解析済みのWAVです。PCM は元データのスライスを共有します。
type Clip struct {
	Format Format
	PCM    []byte
}

// Duration は PCM の再生時間 (秒) です。
func (c Clip) Duration() float64 {
	if c.Format.ByteRate == 0 {
		return 0
	}
	return float64(len(c.PCM)) / float64(c.Format.ByteRate)
}

// Parse はWAVバイト列から fmt と data チャンクを探して返します。
// LIST などのメタデータチャンクは読み飛ばします。
func Parse(wav []byte, index int) (Clip, error) {
	if len(wav) < WavRiffHeaderSize {
		return Clip{}, &ErrInvalidWAVHeader{Index: index, Details: fmt.Sprintf("RIFFヘッダーが不足しています (%dバイト)", len(wav))}
	}
	if string(wav[0:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return Clip{}, &ErrInvalidWAVHeader{Index: index, Details: "RIFF/WAVE 識別子がありません"}
	}

	var clip Clip
	fmtFound, dataFound := false, false

	offset := WavRiffHeaderSize
	for offset+ChunkHeaderSize <= len(wav) && !(fmtFound && dataFound) {
		id := string(wav[offset : offset+ChunkIDSize])
		size := int(binary.LittleEndian.Uint32(wav[offset+ChunkIDSize : offset+ChunkHeaderSize]))
		start := offset + ChunkHeaderSize
		end := start + size
		if end > len(wav) {
			return Clip{}, &ErrInvalidWAVHeader{Index: index, Details: fmt.Sprintf("%q チャンクの長さがファイルサイズを超過しています", id)}
		}

		switch id {
		case "fmt ":
			if size < FmtChunkDataSize {
				return Clip{}, &ErrInvalidWAVHeader{Index: index, Details: "fmt チャンクが短すぎます"}
			}
			b := wav[start:end]
			clip.Format = Format{
				AudioFormat:   binary.LittleEndian.Uint16(b[0:2]),
				Channels:      binary.LittleEndian.Uint16(b[2:4]),
				SampleRate:    binary.LittleEndian.Uint32(b[4:8]),
				ByteRate:      binary.LittleEndian.Uint32(b[8:12]),
				BlockAlign:    binary.LittleEndian.Uint16(b[12:14]),
				BitsPerSample: binary.LittleEndian.Uint16(b[14:16]),
			}
			fmtFound = true
		case "data":
			clip.PCM = wav[start:end]
			dataFound = true
		}

		offset = end
		if size%2 != 0 {
			offset++
		}
	}

	if !fmtFound {
		return Clip{}, &ErrInvalidWAVHeader{Index: index, Details: "'fmt ' チャンクが見つかりませんでした"}
	}
	if !dataFound {
		return Clip{}, &ErrInvalidWAVHeader{Index: index, Details: "'data' チャンクが見つかりませんでした"}
	}
	if clip.Format.ByteRate == 0 {
		return Clip{}, &ErrInvalidWAVHeader{Index: index, Details: "ByteRate が 0 です"}
	}
	return clip, nil
}

// Duration はWAVバイト列の再生時間 (秒) を返します。
func Duration(wav []byte) (float64, error) {
	clip, err := Parse(wav, -1)
	if err != nil {
		return 0, err
	}
	return clip.Duration(), nil
}

// Encode は 44 バイトの標準ヘッダーを付けたWAVを構築します。
func Encode(f Format, pcm []byte) []byte {
	out := make([]byte, WavTotalHeaderSize+len(pcm))
	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(WavTotalHeaderSize-RiffChunkIDSize-RiffChunkSizeSize+len(pcm)))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], FmtChunkDataSize)
	binary.LittleEndian.PutUint16(out[20:22], f.AudioFormat)
	binary.LittleEndian.PutUint16(out[22:24], f.Channels)
	binary.LittleEndian.PutUint32(out[24:28], f.SampleRate)
	binary.LittleEndian.PutUint32(out[28:32], f.ByteRate)
	binary.LittleEndian.PutUint16(out[32:34], f.BlockAlign)
	binary.LittleEndian.PutUint16(out[34:36], f.BitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(len(pcm)))
	copy(out[WavTotalHeaderSize:], pcm)
	return out
}

// Silence は d の長さの無音 PCM を返します。長さはブロック境界に揃えます。
func Silence(f Format, d time.Duration) []byte {
	if d <= 0 || f.BlockAlign == 0 {
		return nil
	}
	blocks := int(math.Round(d.Seconds() * float64(f.SampleRate)))
	return make([]byte, blocks*int(f.BlockAlign))
}

// CombineWavData は複数のWAVデータを結合し、単一のWAVを生成します。
// フォーマットは最初のWAVに合わせ、異なるフォーマットが混在する場合はエラーにします。
func CombineWavData(wavDataList [][]byte) ([]byte, error) {
	if len(wavDataList) == 0 {
		return nil, &ErrNoAudioData{}
	}

	items := make([]TrackItem, len(wavDataList))
	for i, w := range wavDataList {
		items[i] = TrackItem{WAV: w}
	}
	return BuildTrack(items, DefaultFormat)
}

// TrackItem はトラックの1区間です。WAV が空の場合は Silence の長さの無音になります。
// WAV がクリップより長い区間に置かれる場合は Silence に区間長を指定し、不足分を無音で埋めます。
type TrackItem struct {
	WAV     []byte
	Silence time.Duration
}

// BuildTrack は区間を順に連結した1本のWAVを構築します。ミキシングは行いません。
// クリップが1つもない場合は fallback のフォーマットを使います。
func BuildTrack(items []TrackItem, fallback Format) ([]byte, error) {
	clips := make([]*Clip, len(items))
	format := fallback
	formatSet := false

	for i, item := range items {
		if len(item.WAV) == 0 {
			continue
		}
		clip, err := Parse(item.WAV, i)
		if err != nil {
			return nil, err
		}
		if !formatSet {
			format = clip.Format
			formatSet = true
		} else if clip.Format != format {
			return nil, &ErrInvalidWAVHeader{Index: i, Details: "フォーマットが先頭のクリップと一致しません"}
		}
		clips[i] = &clip
	}

	var pcm bytes.Buffer
	for i, item := range items {
		if clips[i] == nil {
			pcm.Write(Silence(format, item.Silence))
			continue
		}
		pcm.Write(clips[i].PCM)
		if pad := item.Silence - seconds(clips[i].Duration()); pad > 0 {
			pcm.Write(Silence(format, pad))
		}
	}

	return Encode(format, pcm.Bytes()), nil
}

func seconds(s float64) time.Duration {
	return time.Duration(math.Round(s * float64(time.Second)))
}
