package notifier

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"FuelSentinel/internal/calculator"
	"FuelSentinel/internal/model"
)

// Fixed reply texts.
const (
	UsageHint       = "請輸入「查油價」、「油價」、「查趨勢」、「查歷史」或「查說明」"
	Apology         = "處理訊息時發生錯誤，請稍後再試"
	NoDataText      = "目前無法取得油價資訊，請稍後再試"
	ChartFailedText = "無法產生油價趨勢圖表，請稍後再試"
	SubscribedText  = "您已成功訂閱油價推播！"
	AlreadySubText  = "您已經訂閱過油價推播囉！"
	UnsubText       = "您已取消訂閱油價推播。"
	NotSubText      = "您目前沒有訂閱油價推播。"
	TestPushDone    = "已發送測試推播！"
	NotAllowedText  = "此指令僅限管理員使用。"
)

// HelpText lists every command the bot understands.
const HelpText = `⛽ 油價小幫手使用說明
查油價：本週中油油價與漲跌
油價：油價資訊加趨勢圖
查趨勢：油價趨勢圖
查歷史：近幾次調價紀錄
訂閱：每週自動推播油價
取消訂閱：停止推播
訂閱人數：目前訂閱人數
查說明：顯示本說明`

// FormatPrices formats the latest row and its changes from the previous one.
func FormatPrices(series model.TimeSeries) string {
	latest, ok := series.Latest()
	if !ok {
		return NoDataText
	}

	changes := make(map[model.FuelType]model.Comparison)
	for _, c := range calculator.CompareAll(series) {
		changes[c.Fuel] = c
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("⛽ 中油最新油價 | %s 起\n", latest.Date))
	for _, f := range model.FuelTypes {
		p, ok := latest.Price(f)
		if !ok {
			continue
		}
		b.WriteString(fmt.Sprintf("%s: %s 元/公升", f.Name(), formatPrice(p)))
		// a change is only shown when the newest price is from this row
		if c, ok := changes[f]; ok && c.CurrentDate == latest.Date {
			b.WriteString(" " + formatChange(c))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatPush formats the scheduled subscriber notification.
func FormatPush(series model.TimeSeries) string {
	return "📢 本週油價推播\n\n" + FormatPrices(series)
}

// FormatHistory formats the last n rows, newest first, followed by the
// high/low range of each fuel over those rows.
func FormatHistory(series model.TimeSeries, n int) string {
	rows := series.Tail(n)
	if len(rows) == 0 {
		return NoDataText
	}

	var b strings.Builder
	b.WriteString(fmt.Sprintf("📜 近 %d 次調價紀錄\n", len(rows)))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		b.WriteString(r.Date)
		for _, f := range model.FuelTypes {
			v := "-"
			if p, ok := r.Price(f); ok {
				v = formatPrice(p)
			}
			b.WriteString(fmt.Sprintf(" | %s %s", shortName(f), v))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n區間高低:\n")
	for _, f := range model.FuelTypes {
		if high, low, ok := calculator.PriceRange(series, f, n); ok {
			b.WriteString(fmt.Sprintf("%s: %s ~ %s\n", f.Name(), formatPrice(low), formatPrice(high)))
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatSubscriberCount formats the reply to a subscriber count query.
func FormatSubscriberCount(n int) string {
	return fmt.Sprintf("目前共有 %d 位訂閱者", n)
}

// FormatExtractionAlert formats an operator alert about the source page.
func FormatExtractionAlert(err error, unmapped []string) string {
	var b strings.Builder
	b.WriteString("⚠️ FuelSentinel 油價擷取異常\n")
	if err != nil {
		b.WriteString(fmt.Sprintf("錯誤: %v\n", err))
	}
	if len(unmapped) > 0 {
		b.WriteString(fmt.Sprintf("未知油品標籤: %s\n", strings.Join(unmapped, ", ")))
	}
	return strings.TrimRight(b.String(), "\n")
}

func formatChange(c model.Comparison) string {
	switch c.Direction {
	case model.Up:
		return fmt.Sprintf("(▲%s)", formatPrice(c.Delta))
	case model.Down:
		return fmt.Sprintf("(▼%s)", formatPrice(math.Abs(c.Delta)))
	default:
		return "(持平)"
	}
}

func formatPrice(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}

func shortName(f model.FuelType) string {
	if f == model.SuperDiesel {
		return "柴油"
	}
	return string(f)
}
