package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/wallet"
)

// WalletHandler はウォレット関連のエンドポイントを提供します。
type WalletHandler struct {
	wallets wallet.UseCase
}

// NewWalletHandler は WalletHandler を生成します。
func NewWalletHandler(wallets wallet.UseCase) *WalletHandler {
	return &WalletHandler{wallets: wallets}
}

type transactionResponse struct {
	ID                string  `json:"id"`
	CompanyID         string  `json:"company_id"`
	AmountMinor       int64   `json:"amount_minor"`
	Type              string  `json:"type"`
	Description       string  `json:"description"`
	ExternalSessionID *string `json:"external_session_id,omitempty"`
	CreatedAt         string  `json:"created_at"`
}

func toTransactionResponse(txn *wallet.Transaction) transactionResponse {
	return transactionResponse{
		ID:                txn.ID,
		CompanyID:         txn.CompanyID,
		AmountMinor:       txn.AmountMinor,
		Type:              string(txn.Type),
		Description:       txn.Description,
		ExternalSessionID: txn.ExternalSessionID,
		CreatedAt:         txn.CreatedAt.Format(time.RFC3339),
	}
}

type recordDepositRequest struct {
	AmountMinor       int64  `json:"amount_minor"`
	ExternalSessionID string `json:"external_session_id"`
}

type depositResponse struct {
	Transaction     *transactionResponse `json:"transaction,omitempty"`
	AlreadyCredited bool                 `json:"already_credited"`
}

// RecordDeposit は外部決済セッションによる入金を記録します。
// 同一セッションの再実行は 200 で already_credited を返します。
func (h *WalletHandler) RecordDeposit(w http.ResponseWriter, r *http.Request) {
	var req recordDepositRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.wallets.RecordDeposit(r.Context(), wallet.RecordDepositInput{
		CompanyID:         r.PathValue("id"),
		AmountMinor:       req.AmountMinor,
		ExternalSessionID: req.ExternalSessionID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	resp := depositResponse{AlreadyCredited: result.AlreadyCredited}
	if result.Transaction != nil {
		txn := toTransactionResponse(result.Transaction)
		resp.Transaction = &txn
	}

	status := http.StatusCreated
	if result.AlreadyCredited {
		status = http.StatusOK
	}
	writeJSON(w, status, resp)
}

type balanceResponse struct {
	CompanyID    string `json:"company_id"`
	BalanceMinor int64  `json:"balance_minor"`
}

// GetBalance は会社の残高を返します。
func (h *WalletHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	companyID := r.PathValue("id")

	balance, err := h.wallets.GetBalance(r.Context(), companyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, balanceResponse{CompanyID: companyID, BalanceMinor: balance})
}

// ListTransactions は取引ログを新しい順に返します。
func (h *WalletHandler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.wallets.ListTransactions(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]transactionResponse, 0, len(txns))
	for _, txn := range txns {
		resp = append(resp, toTransactionResponse(txn))
	}

	writeJSON(w, http.StatusOK, resp)
}

type purchasePromotionRequest struct {
	JobID  string `json:"job_id"`
	PlanID string `json:"plan_id"`
}

// PurchasePromotion は残高からプラン料金を支払い、求人へ効果を適用します。
func (h *WalletHandler) PurchasePromotion(w http.ResponseWriter, r *http.Request) {
	var req purchasePromotionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	txn, err := h.wallets.PurchasePromotion(r.Context(), wallet.PurchasePromotionInput{
		CompanyID: r.PathValue("id"),
		JobID:     req.JobID,
		PlanID:    req.PlanID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toTransactionResponse(txn))
}
