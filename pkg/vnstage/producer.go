package vnstage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/segmentio/ksuid"

	"github.com/shouni/go-vn-stage/pkg/vnstage/asset"
	"github.com/shouni/go-vn-stage/pkg/vnstage/domain"
	"github.com/shouni/go-vn-stage/pkg/vnstage/raster"
	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
	"github.com/shouni/go-vn-stage/pkg/voicevox"
	"github.com/shouni/go-vn-stage/pkg/voicevox/audio"
)

// 1回の実行で書き出すファイル名
const (
	SocialManifestName   = "social.json"
	DialogueManifestName = "dialogue.json"
	SocialTrackName      = "social.wav"
	DialogueTrackName    = "dialogue.wav"
	AudioDirName         = "audio"
	FramesDirName        = "frames"
)

// ----------------------------------------------------------------------
// 構造体定義
// ----------------------------------------------------------------------

// Producer は音声合成、タイムライン合成、描画記述の出力までを1回の実行としてまとめます。
type Producer struct {
	registry   *asset.Registry
	compositor *timeline.Compositor
	emitter    *render.Emitter
	synth      voicevox.ClipSynthesizer
	rasterizer *raster.Rasterizer
	sequence   raster.SequenceOptions
}

// ProducerOption は Producer の任意の依存を設定します。
type ProducerOption func(*Producer)

// WithSynthesizer はクリップ未添付の発話を合成する ClipSynthesizer を設定します。
func WithSynthesizer(s voicevox.ClipSynthesizer) ProducerOption {
	return func(p *Producer) { p.synth = s }
}

// WithRasterizer は静止画の書き出しを有効にします。
func WithRasterizer(r *raster.Rasterizer, opts raster.SequenceOptions) ProducerOption {
	return func(p *Producer) {
		p.rasterizer = r
		p.sequence = opts
	}
}

// NewProducer は新しい Producer を作成します。
func NewProducer(registry *asset.Registry, compositor *timeline.Compositor, emitter *render.Emitter, opts ...ProducerOption) *Producer {
	p := &Producer{registry: registry, compositor: compositor, emitter: emitter}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// executeOptions は1回の実行ごとの設定です。
type executeOptions struct {
	runID      string
	skipFrames bool
}

// ExecuteOption は Execute の実行ごとの設定です。
type ExecuteOption func(*executeOptions)

// WithRunID は出力ディレクトリ名に使う実行 ID を指定します。
func WithRunID(id string) ExecuteOption {
	return func(o *executeOptions) { o.runID = id }
}

// WithoutFrames は静止画の書き出しをこの実行だけ無効にします。
func WithoutFrames() ExecuteOption {
	return func(o *executeOptions) { o.skipFrames = true }
}

// Sequence は書き出した1本のシーケンスです。
type Sequence struct {
	Timeline *timeline.Timeline
	Entries  []render.Entry
	Manifest string
	Track    string
	Frames   []string
}

// Result は Execute の結果です。
type Result struct {
	RunID    string
	Dir      string
	Social   Sequence
	Dialogue Sequence
}

// Manifest は書き出す JSON の形式です。
type Manifest struct {
	RunID        string             `json:"run_id"`
	Title        string             `json:"title,omitempty"`
	Level        string             `json:"level,omitempty"`
	Total        time.Duration      `json:"total"`
	TotalSeconds float64            `json:"total_seconds"`
	Segments     []timeline.Segment `json:"segments"`
	Track        string             `json:"track"`
	Entries      []render.Entry     `json:"entries"`
}

// ----------------------------------------------------------------------
// 実行
// ----------------------------------------------------------------------

// Execute は doc を合成し、outDir/<実行ID>/ 以下に social / dialogue の
// マニフェストと音声トラック、必要なら静止画を書き出します。
// コアのエラー (ErrConfig / ErrLayout / ErrMissingAudio) はラップせずに返します。
func (p *Producer) Execute(ctx context.Context, doc *script.Document, outDir string, opts ...ExecuteOption) (*Result, error) {
	o := executeOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.runID == "" {
		o.runID = ksuid.New().String()
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}

	runDir := filepath.Join(outDir, o.runID)
	slog.InfoContext(ctx, "シーンの生成を開始します", "run_id", o.runID, "lines", len(doc.Script), "dir", runDir)

	// 1. 音声クリップ
	utterances := doc.Utterances()
	clips, err := p.lineClips(ctx, doc, runDir)
	if err != nil {
		return nil, err
	}

	in := timeline.Input{
		Title:      doc.Title,
		Level:      doc.Level,
		Utterances: utterances,
		Clips:      clips,
		Vocab:      doc.Vocab,
	}
	in.VocabClips = p.vocabClips(ctx, doc, in, runDir)

	// 2. 合成
	social, err := p.compositor.Compose(in)
	if err != nil {
		return nil, err
	}
	if err := social.Verify(); err != nil {
		return nil, fmt.Errorf("タイムラインの検証に失敗しました: %w", err)
	}
	dialogue := social.DialogueOnly()

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return nil, fmt.Errorf("出力ディレクトリの作成に失敗しました (%s): %w", runDir, err)
	}

	// 3. 書き出し
	res := &Result{RunID: o.runID, Dir: runDir}
	tracks := newTrackCache()

	res.Social, err = p.writeSequence(ctx, doc, o, runDir, "social", SocialManifestName, SocialTrackName, social, tracks)
	if err != nil {
		return nil, err
	}
	res.Dialogue, err = p.writeSequence(ctx, doc, o, runDir, "dialogue", DialogueManifestName, DialogueTrackName, dialogue, tracks)
	if err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "シーンの生成が完了しました",
		"run_id", o.runID,
		"social_total", social.Total().String(),
		"dialogue_total", dialogue.Total().String(),
		"frames", len(res.Social.Frames)+len(res.Dialogue.Frames))
	return res, nil
}

// lineClips は添付済みのクリップを使い、足りない発話だけを合成します。
func (p *Producer) lineClips(ctx context.Context, doc *script.Document, runDir string) ([]*domain.AudioClipRef, error) {
	clips := doc.Clips()
	if p.synth == nil || doc.HasAllClips() {
		return clips, nil
	}

	var reqs []voicevox.Request
	var indexes []int
	for i, l := range doc.Script {
		if l.Audio.Resolved() {
			continue
		}
		voice, err := p.registry.Voice(l.Speaker)
		if err != nil {
			var cfgErr *domain.ErrConfig
			if errors.As(err, &cfgErr) {
				cfgErr.Index = i
			}
			return nil, err
		}
		reqs = append(reqs, voicevox.Request{
			Text:   l.Text,
			Voice:  voice,
			Output: filepath.Join(runDir, AudioDirName, fmt.Sprintf("line_%03d.wav", i)),
		})
		indexes = append(indexes, i)
	}

	slog.InfoContext(ctx, "未添付の発話を音声合成します", "segments", len(reqs))
	synthesized, err := p.synth.SynthesizeAll(ctx, reqs)
	if err != nil {
		return nil, err
	}
	for k, i := range indexes {
		clips[i] = synthesized[k]
	}
	return clips, nil
}

// vocabClips は語彙の発音クリップを集めます。発音クリップは任意のため、合成に失敗しても警告に留めます。
func (p *Producer) vocabClips(ctx context.Context, doc *script.Document, in timeline.Input, runDir string) map[string]*domain.AudioClipRef {
	out := doc.VocabClips()

	narrator := p.registry.Narrator().Voice
	if p.synth == nil || narrator.Name == "" {
		return out
	}

	var reqs []voicevox.Request
	var keys []string
	for i, term := range p.compositor.VocabTerms(in) {
		key := domain.VocabKey(term.Word)
		if out[key].Resolved() {
			continue
		}
		reqs = append(reqs, voicevox.Request{
			Text:   term.Word,
			Voice:  narrator,
			Output: filepath.Join(runDir, AudioDirName, fmt.Sprintf("vocab_%02d.wav", i)),
		})
		keys = append(keys, key)
	}
	if len(reqs) == 0 {
		return out
	}

	synthesized, err := p.synth.SynthesizeAll(ctx, reqs)
	if err != nil {
		slog.WarnContext(ctx, "語彙の発音クリップを合成できませんでした。固定長のカードを使います。", "error", err)
		return out
	}
	for k, key := range keys {
		if synthesized[k] != nil {
			out[key] = synthesized[k]
		}
	}
	return out
}

func (p *Producer) writeSequence(ctx context.Context, doc *script.Document, o executeOptions, runDir, prefix, manifestName, trackName string, tl *timeline.Timeline, tracks *trackCache) (Sequence, error) {
	seq := Sequence{
		Timeline: tl,
		Entries:  p.emitter.Emit(tl),
		Manifest: filepath.Join(runDir, manifestName),
		Track:    filepath.Join(runDir, trackName),
	}

	track, err := tracks.build(tl)
	if err != nil {
		return Sequence{}, fmt.Errorf("%s の音声トラックの構築に失敗しました: %w", prefix, err)
	}
	if err := os.WriteFile(seq.Track, track, 0o644); err != nil {
		return Sequence{}, fmt.Errorf("failed to write file %s: %w", seq.Track, err)
	}

	m := Manifest{
		RunID:        o.runID,
		Title:        doc.Title,
		Level:        doc.Level,
		Total:        tl.Total(),
		TotalSeconds: tl.Total().Seconds(),
		Segments:     tl.Segments,
		Track:        trackName,
		Entries:      seq.Entries,
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return Sequence{}, fmt.Errorf("マニフェストのエンコードに失敗しました: %w", err)
	}
	if err := os.WriteFile(seq.Manifest, data, 0o644); err != nil {
		return Sequence{}, fmt.Errorf("failed to write file %s: %w", seq.Manifest, err)
	}

	if p.rasterizer != nil && !o.skipFrames {
		opts := p.sequence
		opts.Prefix = prefix
		seq.Frames, err = p.rasterizer.WriteSequence(ctx, seq.Entries, filepath.Join(runDir, FramesDirName), opts)
		if err != nil {
			return Sequence{}, err
		}
	}
	return seq, nil
}

// ----------------------------------------------------------------------
// 音声トラック
// ----------------------------------------------------------------------

// trackCache はクリップファイルの読み込み結果を social と dialogue で共有します。
type trackCache struct {
	files map[string][]byte
}

func newTrackCache() *trackCache {
	return &trackCache{files: make(map[string][]byte)}
}

// build はフレームごとにクリップ (またはフレーム長の無音) を並べた1本のトラックを作ります。
// クリップより長いフレームは末尾を無音で埋めるため、トラック長はタイムライン長と一致します。
// クリップファイルを読み込めない場合は無音で代替せず、エラーにします。
func (t *trackCache) build(tl *timeline.Timeline) ([]byte, error) {
	items := make([]audio.TrackItem, len(tl.Frames))
	for i, f := range tl.Frames {
		items[i] = audio.TrackItem{Silence: f.Duration}
		if f.Audio == nil || f.Audio.FileRef == "" {
			continue
		}
		data, ok := t.files[f.Audio.FileRef]
		if !ok {
			var err error
			data, err = os.ReadFile(f.Audio.FileRef)
			if err != nil {
				return nil, fmt.Errorf("フレーム #%d (%s #%d) のクリップを読み込めません (%s): %w", i, f.Segment, f.Index, f.Audio.FileRef, err)
			}
			t.files[f.Audio.FileRef] = data
		}
		items[i].WAV = data
	}
	return audio.BuildTrack(items, audio.DefaultFormat)
}
