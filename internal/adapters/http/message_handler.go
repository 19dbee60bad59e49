package http

import (
	"net/http"
	"time"

	"github.com/workfound/workfound-server/internal/core/message"
)

// MessageHandler はメッセージ関連のエンドポイントを提供します。
type MessageHandler struct {
	messages message.UseCase
}

// NewMessageHandler は MessageHandler を生成します。
func NewMessageHandler(messages message.UseCase) *MessageHandler {
	return &MessageHandler{messages: messages}
}

type conversationResponse struct {
	ID          string  `json:"id"`
	EmployerID  string  `json:"employer_id"`
	SeekerID    string  `json:"seeker_id"`
	JobID       *string `json:"job_id,omitempty"`
	LastMessage *string `json:"last_message,omitempty"`
	UpdatedAt   string  `json:"updated_at"`
}

func toConversationResponse(conv *message.Conversation) conversationResponse {
	return conversationResponse{
		ID:          conv.ID,
		EmployerID:  conv.EmployerID,
		SeekerID:    conv.SeekerID,
		JobID:       conv.JobID,
		LastMessage: conv.LastMessage,
		UpdatedAt:   conv.UpdatedAt.Format(time.RFC3339),
	}
}

type messageResponse struct {
	ID             string `json:"id"`
	ConversationID string `json:"conversation_id"`
	SenderID       string `json:"sender_id"`
	Content        string `json:"content"`
	IsRead         bool   `json:"is_read"`
	CreatedAt      string `json:"created_at"`
}

func toMessageResponse(msg *message.Message) messageResponse {
	return messageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		SenderID:       msg.SenderID,
		Content:        msg.Content,
		IsRead:         msg.IsRead,
		CreatedAt:      msg.CreatedAt.Format(time.RFC3339),
	}
}

type startConversationRequest struct {
	OtherUserID string  `json:"other_user_id"`
	JobID       *string `json:"job_id"`
}

// Start は会話を開始します。既存の組み合わせならそれを返します。
func (h *MessageHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req startConversationRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	conv, err := h.messages.StartConversation(r.Context(), message.StartConversationInput{
		OtherUserID: req.OtherUserID,
		JobID:       req.JobID,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toConversationResponse(conv))
}

// ListConversations は呼び出し元の会話一覧を返します。
func (h *MessageHandler) ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := h.messages.ListConversations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]conversationResponse, 0, len(conversations))
	for _, conv := range conversations {
		resp = append(resp, toConversationResponse(conv))
	}

	writeJSON(w, http.StatusOK, resp)
}

type sendMessageRequest struct {
	Content string `json:"content"`
}

// Send はメッセージを送信します。
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	sent, err := h.messages.SendMessage(r.Context(), message.SendMessageInput{
		ConversationID: r.PathValue("id"),
		Content:        req.Content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toMessageResponse(sent))
}

// ListMessages は会話のメッセージ一覧を返し、相手の未読を既読にします。
func (h *MessageHandler) ListMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := h.messages.ListMessages(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]messageResponse, 0, len(messages))
	for _, msg := range messages {
		resp = append(resp, toMessageResponse(msg))
	}

	writeJSON(w, http.StatusOK, resp)
}
