package models

// 取得対象のプラットフォーム種別
const (
	ContentTypeReddit   = "reddit"
	ContentTypeFacebook = "facebook"
	ContentTypeImgur    = "imgur"
)

// ContentItem はコンテンツプロバイダから取得した1件のアーカイブ記事。
// 取得後は不変で、IDがそのラウンドの正解IDを兼ねる。
type ContentItem struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	URL       string `json:"url"`
	Content   string `json:"content"`
	Author    string `json:"author"`
	Timestamp string `json:"timestamp"` // アーカイブのスナップショット時刻（"20120315000000"形式）
}
