package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	_ "github.com/joho/godotenv/autoload"

	"github.com/shouni/go-vn-stage/pkg/config"
	"github.com/shouni/go-vn-stage/pkg/scriptai"
	"github.com/shouni/go-vn-stage/pkg/server"
	"github.com/shouni/go-vn-stage/pkg/vnstage"
	"github.com/shouni/go-vn-stage/pkg/vnstage/balloon"
	"github.com/shouni/go-vn-stage/pkg/vnstage/layout"
	"github.com/shouni/go-vn-stage/pkg/vnstage/raster"
	"github.com/shouni/go-vn-stage/pkg/vnstage/render"
	"github.com/shouni/go-vn-stage/pkg/vnstage/script"
	"github.com/shouni/go-vn-stage/pkg/vnstage/timeline"
	"github.com/shouni/go-vn-stage/pkg/voicevox"
)

// ----------------------------------------------------------------------
// コマンドライン引数
// ----------------------------------------------------------------------

type options struct {
	configPath string
	scriptPath string // JSON のスクリプト文書
	textPath   string // タグ付きテキスト、または -ai 指定時は自由形式テキスト
	lessonPath string // レッスン HTML
	inputDir   string // 一括実行の入力ディレクトリ
	useAI      bool
	outDir     string
	frames     bool
	serve      bool
}

func parseFlags() options {
	var o options
	flag.StringVar(&o.configPath, "config", "config.yaml", "設定ファイル (YAML)")
	flag.StringVar(&o.scriptPath, "script", "", "スクリプト文書 (JSON)")
	flag.StringVar(&o.textPath, "text", "", "タグ付きテキスト ([話者] 台詞)")
	flag.StringVar(&o.lessonPath, "lesson", "", "レッスン HTML (本文は AI で話者付きスクリプトに変換する)")
	flag.StringVar(&o.inputDir, "dir", "", "入力ディレクトリ内の .json / .html / .htm / .txt を一括で処理する")
	flag.BoolVar(&o.useAI, "ai", false, "-text を自由形式の文章として AI で話者付きスクリプトに変換する")
	flag.StringVar(&o.outDir, "out", "", "出力ディレクトリ (未指定時は設定の output.dir)")
	flag.BoolVar(&o.frames, "frames", false, "静止画 (WebP) を書き出す")
	flag.BoolVar(&o.serve, "serve", false, "HTTP サーバーとして起動する")
	flag.Parse()
	return o
}

func main() {
	o := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o); err != nil {
		slog.Error("処理に失敗しました", "error", err)
		os.Exit(1)
	}
}

// setupLogger は charmbracelet/log を slog のハンドラとして設定します。
func setupLogger(level string) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           lvl,
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
	})
	slog.SetDefault(slog.New(logger))
}

func run(ctx context.Context, o options) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.Logging.Level)

	registry, err := cfg.Registry()
	if err != nil {
		return err
	}
	fonts, err := cfg.FontMeasurer()
	if err != nil {
		return err
	}

	stage := layout.NewEngine(registry, cfg.LayoutConfig())
	balloons := balloon.NewEngine(fonts, cfg.StageBounds(), cfg.BalloonLayout())
	compositor := timeline.NewCompositor(registry, stage, balloons, cfg.TimelineSettings())
	emitter := render.NewEmitter(cfg.RenderStyle())

	if o.serve {
		return serve(ctx, cfg, compositor, emitter)
	}

	synth, err := voicevox.NewClipSynthesizer(ctx, cfg.VoicevoxOptions())
	if err != nil {
		return err
	}
	producerOpts := []vnstage.ProducerOption{vnstage.WithSynthesizer(synth)}
	if o.frames || cfg.Raster.Enabled {
		assets := raster.NewFileLoader(filepath.Dir(o.configPath))
		producerOpts = append(producerOpts, vnstage.WithRasterizer(raster.NewRasterizer(fonts, assets), cfg.SequenceOptions()))
	}
	producer := vnstage.NewProducer(registry, compositor, emitter, producerOpts...)

	outDir := o.outDir
	if outDir == "" {
		outDir = cfg.Output.Dir
	}
	loader := &documentLoader{cfg: cfg, cast: registry.IDs(), useAI: o.useAI}

	if o.inputDir != "" {
		return runBatch(ctx, producer, loader, o.inputDir, outDir)
	}

	doc, err := loader.fromOptions(ctx, o)
	if err != nil {
		return err
	}
	res, err := producer.Execute(ctx, doc, outDir)
	if err != nil {
		return err
	}

	absPath, _ := filepath.Abs(res.Dir)
	slog.Info(fmt.Sprintf("✅ シーンの生成が正常に完了しました。出力: %s", absPath),
		"social", res.Social.Timeline.Total().String(),
		"dialogue", res.Dialogue.Timeline.Total().String())
	return nil
}

// runBatch は入力ディレクトリ内のファイルをすべて処理します。失敗した入力があればエラーを返します。
func runBatch(ctx context.Context, producer *vnstage.Producer, loader *documentLoader, inputDir, outDir string) error {
	inputs, err := vnstage.ListInputs(inputDir, ".json", ".html", ".htm", ".txt")
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		slog.Warn("入力ファイルが見つかりません", "dir", inputDir)
		return nil
	}

	items, err := producer.ExecuteBatch(ctx, inputs, outDir, loader.fromFile)
	for _, it := range items {
		if it.Err == nil {
			slog.Info("✅ 生成完了", "input", filepath.Base(it.Input), "dir", it.Result.Dir)
		}
	}
	return err
}

// ----------------------------------------------------------------------
// 入力の読み込み
// ----------------------------------------------------------------------

// documentLoader は入力ファイルをスクリプト文書に変換します。AI パーサーは必要になった時点で作成します。
type documentLoader struct {
	cfg   *config.Config
	cast  []string
	useAI bool

	parser *scriptai.ScriptParser
}

// fromOptions は -script / -text / -lesson の指定に応じてスクリプト文書を読み込みます。
func (l *documentLoader) fromOptions(ctx context.Context, o options) (*script.Document, error) {
	switch {
	case o.scriptPath != "":
		return l.loadJSON(o.scriptPath)
	case o.lessonPath != "":
		return l.loadLesson(ctx, o.lessonPath)
	case o.textPath != "":
		return l.loadText(ctx, o.textPath)
	default:
		return nil, errors.New("-script / -text / -lesson / -dir のいずれかを指定してください")
	}
}

// fromFile は拡張子で形式を判断して読み込みます。一括実行で使います。
func (l *documentLoader) fromFile(ctx context.Context, path string) (*script.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return l.loadJSON(path)
	case ".html", ".htm":
		return l.loadLesson(ctx, path)
	default:
		return l.loadText(ctx, path)
	}
}

func (l *documentLoader) loadJSON(path string) (*script.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("スクリプト文書を開けません (%s): %w", path, err)
	}
	defer f.Close()
	return script.LoadJSON(f)
}

func (l *documentLoader) loadText(ctx context.Context, path string) (*script.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("テキストファイルの読み込みに失敗しました (%s): %w", path, err)
	}
	if !l.useAI {
		return validated(script.FromUtterances("", l.cfg.TaggedParser().Parse(string(data))))
	}
	return l.generate(ctx, string(data), nil)
}

// loadLesson はレッスン HTML の本文を AI で台本にし、タイトルと語彙はレッスンのものを使います。
func (l *documentLoader) loadLesson(ctx context.Context, path string) (*script.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("レッスンファイルを開けません (%s): %w", path, err)
	}
	defer f.Close()

	lesson, err := script.LoadLesson(f)
	if err != nil {
		return nil, err
	}
	slog.Info("レッスンを読み込みました", "title", lesson.Title, "vocab", len(lesson.Vocab))
	return l.generate(ctx, lesson.Text, lesson)
}

func (l *documentLoader) generate(ctx context.Context, text string, lesson *script.Lesson) (*script.Document, error) {
	if l.parser == nil {
		parser, err := scriptai.NewParser(ctx, l.cfg.ScriptAIOptions())
		if err != nil {
			return nil, err
		}
		l.parser = parser
	}

	res, err := l.parser.Parse(ctx, text, l.cast)
	if err != nil {
		return nil, err
	}
	doc := script.FromUtterances(res.Title, res.Utterances)
	doc.Level = res.Level
	if lesson != nil {
		lesson.Apply(doc)
	}
	return validated(doc)
}

func validated(doc *script.Document) (*script.Document, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// serve は HTTP サーバーを起動し、シグナル受信で停止します。
func serve(ctx context.Context, cfg *config.Config, compositor *timeline.Compositor, emitter *render.Emitter) error {
	srv := server.NewServer(ctx, compositor, emitter, cfg.Logging.Level)
	srv.TaggedParser = cfg.TaggedParser

	finishedShutDown := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		finishedShutDown <- srv.Shutdown(shutdownCtx)
	}()

	if err := srv.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-finishedShutDown
}
