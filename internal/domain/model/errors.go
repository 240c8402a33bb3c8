package model

import (
	"errors"
	"fmt"
)

// 書き込み・読み取りパスで使う共通エラー
var (
	// ErrUnauthenticated 呼び出し元の識別子が存在しない
	ErrUnauthenticated = errors.New("認証されていないユーザーです")

	// ErrStorageUnavailable 永続ストアに到達できない（内部シグナル）
	// ユースケース側がデグレードストアへ切り替える契機としてのみ使い、
	// 書き込みパスではそのまま呼び出し元へ返さない。
	ErrStorageUnavailable = errors.New("データベースに接続できません")

	// ErrPixelNotFound 指定座標にアクティブなピクセルが存在しない
	ErrPixelNotFound = errors.New("ピクセルが見つかりません")
)

// InvalidInputError 座標・カラーコード等の入力不正
// ストアやレート状態に触れる前に検出され、そのまま呼び出し元へ返る。
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("入力が不正です (%s): %s", e.Field, e.Reason)
}

// NewInvalidInputError InvalidInputError を作成する
func NewInvalidInputError(field, reason string) *InvalidInputError {
	return &InvalidInputError{Field: field, Reason: reason}
}

// RateLimitedError レート制限による拒否
// RemainingSeconds は呼び出し元がそのままバックオフに使える残り秒数。
type RateLimitedError struct {
	RemainingSeconds int
}

func (e *RateLimitedError) Error() string {
	return fmt.Sprintf("レート制限中です。%d秒後に再試行してください", e.RemainingSeconds)
}

// IsInvalidInput err が入力不正かどうかを判定する
func IsInvalidInput(err error) bool {
	var target *InvalidInputError
	return errors.As(err, &target)
}

// IsRateLimited err がレート制限拒否かどうかを判定し、該当すれば残り秒数を返す
func IsRateLimited(err error) (int, bool) {
	var target *RateLimitedError
	if errors.As(err, &target) {
		return target.RemainingSeconds, true
	}
	return 0, false
}
