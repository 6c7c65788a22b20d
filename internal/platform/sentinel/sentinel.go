package sentinel

import "errors"

// ストアが返す事実としてのエラー（必要ならラップして返す）。
// サービス層が errors.Is で判定し、各パッケージの APIError に変換する。
//   - ErrNotFound: 対象の行が存在しない
//   - ErrConflict: 一意制約・version 不一致で書き込めなかった
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)
