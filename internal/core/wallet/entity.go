package wallet

import "time"

// TransactionType は取引の種別を表します。
type TransactionType string

const (
	// TypeDeposit は外部決済による入金です。金額は正の値です。
	TypeDeposit TransactionType = "deposit"
	// TypeSpend は有料サービス購入による支出です。金額は負の値です。
	TypeSpend TransactionType = "spend"
)

// Transaction は会社ウォレットの追記専用の取引ログです。
// 会社残高は常に全取引金額の合計と一致します。
type Transaction struct {
	ID                string
	CompanyID         string
	AmountMinor       int64
	Type              TransactionType
	Description       string
	ExternalSessionID *string
	CreatedAt         time.Time
}

// プロモーションプランの価格 (最小通貨単位)。
const (
	PriceHighlightMinor int64 = 500
	PriceTop7Minor      int64 = 1500
)

// PlanPrice はプラン ID に対応する価格を返します。
func PlanPrice(planID string) (int64, bool) {
	switch planID {
	case "highlight":
		return PriceHighlightMinor, true
	case "top_7":
		return PriceTop7Minor, true
	default:
		return 0, false
	}
}
