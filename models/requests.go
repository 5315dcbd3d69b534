package models

// SignupRequest は招待コード経由のサインアップリクエストを表します。
type SignupRequest struct {
	InviteCode string `json:"inviteCode"`
	Username   string `json:"username"`
	Password   string `json:"password"`
	Name       string `json:"name"`
}

// LoginRequest は実況者のログインリクエストを表します。
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}
