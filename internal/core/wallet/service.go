package wallet

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

// Clock は現在時刻を提供します。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now().UTC()
}

// TransactionManager はトランザクション制御の抽象化です。
type TransactionManager interface {
	WithinReadOnly(ctx context.Context, fn func(context.Context) error) error
	WithinReadWrite(ctx context.Context, fn func(context.Context) error) error
}

type noopTransactionManager struct{}

func (noopTransactionManager) WithinReadOnly(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

func (noopTransactionManager) WithinReadWrite(ctx context.Context, fn func(context.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(ctx)
}

// MembershipChecker は会社メンバーシップの照会を行います。
type MembershipChecker interface {
	IsMember(ctx context.Context, companyID, userID string) (bool, error)
}

// Promoter は購入済みプランの効果を求人へ適用します。
// 購入トランザクションの内側からのみ呼び出されるため、
// 支払い完了前にプロモーションが適用されることはありません。
type Promoter interface {
	ApplyPromotion(ctx context.Context, jobID, planID string) error
}

// Service はウォレットに関するユースケースをまとめます。
type Service struct {
	repo     Repository
	members  MembershipChecker
	promoter Promoter
	clock    Clock
	tx       TransactionManager
}

// UseCase はウォレットユースケースの公開インターフェースです。
type UseCase interface {
	RecordDeposit(ctx context.Context, in RecordDepositInput) (*DepositResult, error)
	Spend(ctx context.Context, in SpendInput) (*Transaction, error)
	PurchasePromotion(ctx context.Context, in PurchasePromotionInput) (*Transaction, error)
	GetBalance(ctx context.Context, companyID string) (int64, error)
	ListTransactions(ctx context.Context, companyID string) ([]*Transaction, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, members MembershipChecker, promoter Promoter, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, members: members, promoter: promoter, clock: clock, tx: tx}
}

// RecordDepositInput は入金記録の入力です。
type RecordDepositInput struct {
	CompanyID         string
	AmountMinor       int64
	ExternalSessionID string
}

// DepositResult は入金記録の結果です。
// AlreadyCredited が true の場合は冪等な再実行で、残高は変化していません。
type DepositResult struct {
	Transaction     *Transaction
	AlreadyCredited bool
}

// SpendInput は残高支出の入力です。
type SpendInput struct {
	CompanyID   string
	AmountMinor int64
	Description string
}

// PurchasePromotionInput はプロモーション購入の入力です。
type PurchasePromotionInput struct {
	CompanyID string
	JobID     string
	PlanID    string
}

// RecordDeposit は外部決済セッションによる入金を記録します。
//
// 同一セッション ID による記録は高々 1 回です。冪等性はセッション ID の
// 一意制約で担保され、制約違反は「処理済み」として残高を変えずに返ります。
// 取引ログの追記と残高の加算は 1 トランザクションで行われます。
func (s *Service) RecordDeposit(ctx context.Context, in RecordDepositInput) (*DepositResult, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.CompanyID) == "" {
		return nil, ErrInvalidID
	}
	if in.AmountMinor <= 0 {
		return nil, ErrInvalidAmount
	}
	sessionID := strings.TrimSpace(in.ExternalSessionID)
	if sessionID == "" {
		return nil, ErrInvalidSession
	}

	if err := s.requireMember(ctx, in.CompanyID, principal); err != nil {
		return nil, err
	}

	var result *DepositResult
	err = s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		created, err := s.repo.InsertTransaction(txCtx, &Transaction{
			CompanyID:         in.CompanyID,
			AmountMinor:       in.AmountMinor,
			Type:              TypeDeposit,
			Description:       "Пополнение баланса",
			ExternalSessionID: &sessionID,
			CreatedAt:         s.clock.Now(),
		})
		if err != nil {
			return err
		}

		if err := s.repo.CreditBalance(txCtx, in.CompanyID, in.AmountMinor); err != nil {
			return err
		}

		result = &DepositResult{Transaction: created}
		return nil
	})
	if errors.Is(err, ErrSessionAlreadyCredited) {
		return &DepositResult{AlreadyCredited: true}, nil
	}
	if err != nil {
		return nil, err
	}

	return result, nil
}

// Spend は残高から支出します。
//
// 減算は「残高が足りる場合のみ」の条件付き単一更新で行われるため、
// 並行する支出が重なっても残高が負になることはありません。
// 残高不足の場合は ErrInsufficientFunds を返し、何も書き込みません。
func (s *Service) Spend(ctx context.Context, in SpendInput) (*Transaction, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.validateSpend(in); err != nil {
		return nil, err
	}

	if err := s.requireMember(ctx, in.CompanyID, principal); err != nil {
		return nil, err
	}

	var created *Transaction
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		txn, err := s.spendLocked(txCtx, in)
		if err != nil {
			return err
		}
		created = txn
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// PurchasePromotion は残高からプラン料金を支払い、効果を求人へ適用します。
// 支払いと適用は 1 トランザクションで行われ、残高不足の場合は
// 求人に一切の変更を加えません。
func (s *Service) PurchasePromotion(ctx context.Context, in PurchasePromotionInput) (*Transaction, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.CompanyID) == "" || strings.TrimSpace(in.JobID) == "" {
		return nil, ErrInvalidID
	}

	price, ok := PlanPrice(in.PlanID)
	if !ok {
		return nil, ErrUnknownPlan
	}

	if err := s.requireMember(ctx, in.CompanyID, principal); err != nil {
		return nil, err
	}

	var created *Transaction
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		txn, err := s.spendLocked(txCtx, SpendInput{
			CompanyID:   in.CompanyID,
			AmountMinor: price,
			Description: fmt.Sprintf("Продвижение вакансии: %s", in.PlanID),
		})
		if err != nil {
			return err
		}

		if err := s.promoter.ApplyPromotion(txCtx, in.JobID, in.PlanID); err != nil {
			return err
		}

		created = txn
		return nil
	}); err != nil {
		return nil, err
	}

	return created, nil
}

// GetBalance は会社の残高を返します。メンバーのみ閲覧できます。
func (s *Service) GetBalance(ctx context.Context, companyID string) (int64, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return 0, err
	}

	if strings.TrimSpace(companyID) == "" {
		return 0, ErrInvalidID
	}

	if err := s.requireMember(ctx, companyID, principal); err != nil {
		return 0, err
	}

	return s.repo.Balance(ctx, companyID)
}

// ListTransactions は取引ログを新しい順に返します。メンバーのみ閲覧できます。
func (s *Service) ListTransactions(ctx context.Context, companyID string) ([]*Transaction, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(companyID) == "" {
		return nil, ErrInvalidID
	}

	if err := s.requireMember(ctx, companyID, principal); err != nil {
		return nil, err
	}

	return s.repo.ListTransactions(ctx, companyID)
}

// spendLocked は呼び出し元のトランザクション内で条件付き減算と
// 取引ログ追記を行います。
func (s *Service) spendLocked(ctx context.Context, in SpendInput) (*Transaction, error) {
	debited, err := s.repo.DebitBalanceIfSufficient(ctx, in.CompanyID, in.AmountMinor)
	if err != nil {
		return nil, err
	}
	if !debited {
		return nil, ErrInsufficientFunds
	}

	return s.repo.InsertTransaction(ctx, &Transaction{
		CompanyID:   in.CompanyID,
		AmountMinor: -in.AmountMinor,
		Type:        TypeSpend,
		Description: in.Description,
		CreatedAt:   s.clock.Now(),
	})
}

func (s *Service) validateSpend(in SpendInput) error {
	if strings.TrimSpace(in.CompanyID) == "" {
		return ErrInvalidID
	}
	if in.AmountMinor <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s *Service) requireMember(ctx context.Context, companyID string, principal identity.Principal) error {
	if principal.IsAdmin() {
		return nil
	}

	ok, err := s.members.IsMember(ctx, companyID, principal.UserID)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotAuthorized
	}
	return nil
}
