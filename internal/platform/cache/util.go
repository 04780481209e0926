package cache

import (
	"time"
)

// TimeUntilMarketClose は次の17:00（パキスタン時間）までの期間を返します。
// 取引終了後に同期が走るため、キャッシュは次の終値確定まで有効です。
func TimeUntilMarketClose() time.Duration {
	loc, _ := time.LoadLocation("Asia/Karachi")
	now := time.Now().In(loc)

	// 次の17:00を計算
	next := time.Date(now.Year(), now.Month(), now.Day(), 17, 0, 0, 0, loc)

	// 今日の17:00が既に過ぎている場合は翌日を使用
	if now.After(next) {
		next = next.Add(24 * time.Hour)
	}

	return next.Sub(now)
}
