package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/shouni/go-http-kit/pkg/httpkit"
)

// WAV として最低限必要なバイト数 (RIFF + fmt + data ヘッダー)
const minWavSize = 44

// Client はVOICEVOXエンジンへのAPIリクエストを処理するクライアントです。
// httpkit.Client を利用してリトライ機能を内包します。
type Client struct {
	client *httpkit.Client
	apiURL string
}

// NewClient は新しいClientインスタンスを初期化します。
func NewClient(apiURL string, timeout time.Duration) *Client {
	return &Client{
		client: httpkit.New(timeout),
		apiURL: apiURL,
	}
}

// buildURL はベースURLとエンドポイントを結合します。
func (c *Client) buildURL(endpoint string) (*url.URL, error) {
	u, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: endpoint, WrappedErr: fmt.Errorf("API URLのパース失敗: %w", err)}
	}
	u.Path, err = url.JoinPath(u.Path, endpoint)
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: endpoint, WrappedErr: fmt.Errorf("エンドポイント結合失敗: %w", err)}
	}
	return u, nil
}

// ----------------------------------------------------------------------
// API呼び出しロジック
// ----------------------------------------------------------------------

// RunAudioQuery は /audio_query APIを呼び出し、音声合成のためのクエリJSONを返します。
// speedScale が 0 より大きい場合はクエリの話速を上書きします。
func (c *Client) RunAudioQuery(ctx context.Context, text string, styleID int, speedScale float64) ([]byte, error) {
	const endpoint = "/audio_query"

	u, err := c.buildURL(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("text", text)
	q.Set("speaker", strconv.Itoa(styleID))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), nil)
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: endpoint, WrappedErr: fmt.Errorf("リクエスト構築失敗: %w", err)}
	}

	body, err := c.client.DoRequest(req)
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: endpoint, WrappedErr: err}
	}

	// クエリ JSON は他のフィールドを保持したまま speedScale だけ差し替える
	var query map[string]json.RawMessage
	if err := json.Unmarshal(body, &query); err != nil {
		return nil, &ErrInvalidJSON{Details: fmt.Sprintf("%s応答JSONのデコード", endpoint), WrappedErr: err}
	}
	if _, ok := query["accent_phrases"]; !ok {
		return nil, &ErrInvalidJSON{Details: fmt.Sprintf("%s応答に accent_phrases がありません", endpoint)}
	}
	if speedScale <= 0 {
		return body, nil
	}

	query["speedScale"] = json.RawMessage(strconv.FormatFloat(speedScale, 'f', -1, 64))
	patched, err := json.Marshal(query)
	if err != nil {
		return nil, &ErrInvalidJSON{Details: "話速を上書きしたクエリのエンコード", WrappedErr: err}
	}
	return patched, nil
}

// RunSynthesis は /synthesis APIを呼び出し、WAV形式の音声データを返します。
// Accept: audio/wav ヘッダーが必須なため、リクエストは手動で構築します。
func (c *Client) RunSynthesis(ctx context.Context, queryBody []byte, styleID int) ([]byte, error) {
	const endpoint = "/synthesis"

	u, err := c.buildURL(endpoint)
	if err != nil {
		return nil, err
	}
	q := u.Query()
	q.Set("speaker", strconv.Itoa(styleID))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(queryBody))
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: endpoint, WrappedErr: fmt.Errorf("リクエスト構築失敗: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/wav")

	wavData, err := c.client.DoRequest(req)
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: endpoint, WrappedErr: err}
	}
	if len(wavData) < minWavSize {
		return nil, &ErrAPIResponse{
			Endpoint:   endpoint,
			StatusCode: http.StatusOK,
			Body:       fmt.Sprintf("WAVデータのサイズが短すぎます (%dバイト)", len(wavData)),
		}
	}

	return wavData, nil
}

// GetSpeakers は /speakers APIを呼び出し、全てのスピーカー情報（JSONバイトスライス）を返します。
func (c *Client) GetSpeakers(ctx context.Context) ([]byte, error) {
	const endpoint = "/speakers"

	u, err := c.buildURL(endpoint)
	if err != nil {
		return nil, err
	}

	body, err := c.client.FetchBytes(ctx, u.String())
	if err != nil {
		return nil, &ErrAPINetwork{Endpoint: endpoint, WrappedErr: err}
	}
	return body, nil
}
