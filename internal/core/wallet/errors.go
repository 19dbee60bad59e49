package wallet

import "errors"

var (
	ErrInvalidID         = errors.New("wallet: invalid id")
	ErrInvalidAmount     = errors.New("wallet: amount must be positive")
	ErrInvalidSession    = errors.New("wallet: external session id is required")
	ErrUnknownPlan       = errors.New("wallet: unknown promotion plan")
	ErrCompanyNotFound   = errors.New("wallet: company not found")
	ErrNotAuthorized     = errors.New("wallet: not authorized")
	// ErrInsufficientFunds は残高不足を表す業務上の却下シグナルです。
	// 書き込みは一切行われません。
	ErrInsufficientFunds = errors.New("wallet: insufficient funds")
	// ErrSessionAlreadyCredited は同一決済セッションによる再入金を表します。
	// 冪等な再実行であり、残高は変化しません。
	ErrSessionAlreadyCredited = errors.New("wallet: session already credited")
)
