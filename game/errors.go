package game

import (
	"errors"
)

// Engineの各操作が返すエラー。呼び出し側（actionsパッケージ）はこれを
// errors.Isで判別してクライアント向けのエラーメッセージに変換する。
var (
	ErrInvalidTransition  = errors.New("cannot start a new round while game is in progress")
	ErrNoActiveRound      = errors.New("no active round to end")
	ErrPlayerNotFound     = errors.New("player not found")
	ErrMemberNotFound     = errors.New("audience member not found")
	ErrTooManyFakeAnswers = errors.New("maximum number of fake answers reached")
	ErrNoCohortsAvailable = errors.New("no cohorts available")
)
