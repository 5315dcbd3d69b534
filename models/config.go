package models

// Config 構造体はデータベース接続とゲームの設定情報を保持します。
type Config struct {
	DBHost     string `json:"db_host"`
	DBUser     string `json:"db_user"`
	DBPassword string `json:"db_password"`
	DBName     string `json:"db_name"`
	DBSSLMode  string `json:"db_sslmode"`

	RoundDurationMs int    `json:"round_duration_ms"` // 1ラウンドの長さ（ミリ秒）。デフォルト30000
	MaxFakeAnswers  int    `json:"max_fake_answers"`  // ラウンドごとの偽回答の上限。デフォルト3
	WaybackAPIKey   string `json:"wayback_api_key"`   // archive.org のAPIキー
	ContentType     string `json:"content_type"`      // 取得対象のプラットフォーム（例: "reddit"）
	ContentURL      string `json:"content_url"`       // 取得対象のURL
}
