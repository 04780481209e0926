// Package normalize は外部ソースの生レコードを正規化し、ドメインエンティティに変換します。
// スクレイプ結果のキー揺れ（"Change (%)" / "ChangeP" など）はここで一本化し、
// 既知の集合に含まれないキーはエラーとして弾きます。
package normalize

import (
	"fmt"
	"sort"
)

// Record は外部ソースから取得した1件の生レコードです。
// 値はすべて未パースの文字列（カンマ区切りの数値、%付きの数値、各種日付形式）です。
type Record map[string]string

// FieldError はレコード正規化中のフィールド単位の失敗を表します。
// どの銘柄のどのフィールドがなぜ失敗したかを呼び出し元へ伝えます。
type FieldError struct {
	Symbol string
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("%s: field %q: %s", e.Symbol, e.Field, e.Reason)
}

// schema は正規フィールド名と、ソースごとのキー表記揺れの対応表です。
type schema map[string][]string

// lookup は正規フィールド名に対応する値をレコードから取り出します。
// 正規名そのもの、続いて既知のバリアントの順で探します。
func (s schema) lookup(rec Record, field string) (string, bool) {
	if v, ok := rec[field]; ok {
		return v, true
	}
	for _, alias := range s[field] {
		if v, ok := rec[alias]; ok {
			return v, true
		}
	}
	return "", false
}

// checkUnknown はスキーマに含まれないキーを検出します。
// 曖昧なキーを深層へ流さず、境界で大きな音を立てて落とすための検査です。
func (s schema) checkUnknown(rec Record, symbol string) error {
	known := map[string]struct{}{}
	for field, aliases := range s {
		known[field] = struct{}{}
		for _, a := range aliases {
			known[a] = struct{}{}
		}
	}

	var unknown []string
	for k := range rec {
		if _, ok := known[k]; !ok {
			unknown = append(unknown, k)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return &FieldError{Symbol: symbol, Field: unknown[0], Reason: "unknown source key"}
}
