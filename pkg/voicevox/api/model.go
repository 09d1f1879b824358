package api

// ----------------------------------------------------------------------
// データモデル (API応答)
// ----------------------------------------------------------------------

// Speaker は /speakers APIの応答要素のうち、スタイル解決に必要な部分です。
type Speaker struct {
	Name        string  `json:"name"`
	SpeakerUUID string  `json:"speaker_uuid"`
	Styles      []Style `json:"styles"`
}

// Style は話者のスタイル1つ分です。ID が合成 API の speaker パラメータになります。
type Style struct {
	Name string `json:"name"`
	ID   int    `json:"id"`
}
