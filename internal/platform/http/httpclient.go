// Package http はPSXポータル呼び出しに共有されるHTTPクライアントを提供します。
package http

import (
	"net"
	"net/http"
	"time"
)

// NewHTTPClient はPSXポータルのスクレイピング用に設定されたHTTPクライアントを作成します。
// ポータルはXLSワークブックや大きなHTMLテーブルを返すため、接続確立は短めに
// 切り上げつつ、ダウンロード全体のタイムアウトは呼び出し元から渡します。
//
// 設定:
//   - Proxy: 環境変数（HTTP_PROXYなど）が設定されている場合に使用
//   - Dialer.Timeout: TCP接続タイムアウト（ポータル無応答を早期検知）
//   - Dialer.KeepAlive: 銘柄履歴の連続取得でTCP接続を再利用するための維持期間
//   - MaxIdleConns / IdleConnTimeout: 並行フェッチ時の接続枯渇防止
//   - TLSHandshakeTimeout: HTTPSハンドシェイクの最大時間
//   - Client.Timeout: リクエスト全体のタイムアウト（呼び出し元から渡される）
//
// http.DefaultClientにはタイムアウトがないため、常にこのクライアントを使うこと。
func NewHTTPClient(timeout time.Duration) *http.Client {
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
