package usecase

import "time"

// BusinessDayPolicy は営業日カレンダーの差し替え点です。
// リトライ回数とは独立に、祝日ルールを個別にテスト・交換できるようにします。
type BusinessDayPolicy func(time.Time) time.Time

// PreviousBusinessDay は指定日の前営業日（週末スキップ）を返します。
func PreviousBusinessDay(date time.Time) time.Time {
	d := date.AddDate(0, 0, -1)
	return LastBusinessDay(d)
}

// LastBusinessDay は指定日以前で最も近い営業日を返します。
// 指定日が平日であればそのまま返します。
func LastBusinessDay(date time.Time) time.Time {
	for date.Weekday() == time.Saturday || date.Weekday() == time.Sunday {
		date = date.AddDate(0, 0, -1)
	}
	return date
}
