package wallet

import "context"

// Repository はウォレット残高と取引ログの永続化を行うインターフェースです。
type Repository interface {
	// InsertTransaction は取引ログを追記します。外部決済セッション ID の
	// 一意制約に抵触した場合は ErrSessionAlreadyCredited を返します。
	InsertTransaction(ctx context.Context, txn *Transaction) (*Transaction, error)
	// CreditBalance は会社残高を amount だけ増やします。
	CreditBalance(ctx context.Context, companyID string, amount int64) error
	// DebitBalanceIfSufficient は残高が足りる場合に限り amount を減算します。
	// 減算できた場合 true を返します。残高が負になることはありません。
	DebitBalanceIfSufficient(ctx context.Context, companyID string, amount int64) (bool, error)
	Balance(ctx context.Context, companyID string) (int64, error)
	ListTransactions(ctx context.Context, companyID string) ([]*Transaction, error)
}
