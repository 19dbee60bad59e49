package message

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

var (
	ErrInvalidID            = errors.New("message: invalid id")
	ErrInvalidContent       = errors.New("message: invalid content")
	ErrConversationNotFound = errors.New("message: conversation not found")
	ErrNotParticipant       = errors.New("message: not a participant")
)

// Conversation は採用担当者と求職者の会話スレッドです。
// 同じ組み合わせ (employer, seeker, job) につき 1 つだけ存在します。
type Conversation struct {
	ID          string
	EmployerID  string
	SeekerID    string
	JobID       *string
	UpdatedAt   time.Time
	LastMessage *string
}

// Message は会話内の 1 メッセージです。
type Message struct {
	ID             string
	ConversationID string
	SenderID       string
	Content        string
	IsRead         bool
	CreatedAt      time.Time
}

// Participant は会話の参加者かどうかを判定します。
func (c *Conversation) Participant(userID string) bool {
	return c.EmployerID == userID || c.SeekerID == userID
}

// Repository は会話とメッセージの永続化を行うインターフェースです。
type Repository interface {
	// FindOrCreateConversation は組み合わせに対応する会話を返し、
	// 存在しなければ作成します。
	FindOrCreateConversation(ctx context.Context, conv *Conversation) (*Conversation, error)
	FindConversation(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)
	TouchConversation(ctx context.Context, id string, at time.Time) error

	InsertMessage(ctx context.Context, msg *Message) (*Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
	// MarkRead は会話内で sender 以外が送った未読メッセージを既読にします。
	MarkRead(ctx context.Context, conversationID, readerID string) error
}

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

// Service はメッセージングに関するユースケースをまとめます。
type Service struct {
	repo  Repository
	clock Clock
	tx    TransactionManager
}

// UseCase はメッセージングユースケースの公開インターフェースです。
type UseCase interface {
	StartConversation(ctx context.Context, in StartConversationInput) (*Conversation, error)
	ListConversations(ctx context.Context) ([]*Conversation, error)
	SendMessage(ctx context.Context, in SendMessageInput) (*Message, error)
	ListMessages(ctx context.Context, conversationID string) ([]*Message, error)
}

// NewService は Service を生成します。
func NewService(repo Repository, clock Clock, tx TransactionManager) *Service {
	if clock == nil {
		clock = realClock{}
	}
	if tx == nil {
		tx = noopTransactionManager{}
	}
	return &Service{repo: repo, clock: clock, tx: tx}
}

// StartConversationInput は会話開始時の入力です。
// 呼び出し元の役割に応じて相手が employer / seeker のどちらかになります。
type StartConversationInput struct {
	OtherUserID string
	JobID       *string
}

// SendMessageInput はメッセージ送信時の入力です。
type SendMessageInput struct {
	ConversationID string
	Content        string
}

// StartConversation は会話を開始します。既存の組み合わせならそれを返します。
func (s *Service) StartConversation(ctx context.Context, in StartConversationInput) (*Conversation, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.OtherUserID) == "" {
		return nil, ErrInvalidID
	}

	conv := &Conversation{JobID: in.JobID, UpdatedAt: s.clock.Now()}
	if principal.Role == identity.RoleSeeker {
		conv.EmployerID = in.OtherUserID
		conv.SeekerID = principal.UserID
	} else {
		conv.EmployerID = principal.UserID
		conv.SeekerID = in.OtherUserID
	}

	return s.repo.FindOrCreateConversation(ctx, conv)
}

// ListConversations は呼び出し元が参加する会話を更新順に返します。
func (s *Service) ListConversations(ctx context.Context) ([]*Conversation, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}
	return s.repo.ListConversations(ctx, principal.UserID)
}

// SendMessage はメッセージを送信し、会話の更新時刻を進めます。
// 参加者のみ送信できます。
func (s *Service) SendMessage(ctx context.Context, in SendMessageInput) (*Message, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(in.ConversationID) == "" {
		return nil, ErrInvalidID
	}
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, ErrInvalidContent
	}

	var sent *Message
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		conv, err := s.repo.FindConversation(txCtx, in.ConversationID)
		if err != nil {
			return err
		}
		if !conv.Participant(principal.UserID) {
			return ErrNotParticipant
		}

		now := s.clock.Now()
		msg, err := s.repo.InsertMessage(txCtx, &Message{
			ConversationID: conv.ID,
			SenderID:       principal.UserID,
			Content:        content,
			CreatedAt:      now,
		})
		if err != nil {
			return err
		}

		if err := s.repo.TouchConversation(txCtx, conv.ID, now); err != nil {
			return err
		}

		sent = msg
		return nil
	}); err != nil {
		return nil, err
	}

	return sent, nil
}

// ListMessages は会話のメッセージを古い順に返し、
// 相手からの未読メッセージを既読にします。参加者のみ閲覧できます。
func (s *Service) ListMessages(ctx context.Context, conversationID string) ([]*Message, error) {
	principal, err := identity.FromContext(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidID
	}

	var messages []*Message
	if err := s.tx.WithinReadWrite(ctx, func(txCtx context.Context) error {
		conv, err := s.repo.FindConversation(txCtx, conversationID)
		if err != nil {
			return err
		}
		if !conv.Participant(principal.UserID) {
			return ErrNotParticipant
		}

		if err := s.repo.MarkRead(txCtx, conv.ID, principal.UserID); err != nil {
			return err
		}

		result, err := s.repo.ListMessages(txCtx, conv.ID)
		if err != nil {
			return err
		}

		messages = result
		return nil
	}); err != nil {
		return nil, err
	}

	return messages, nil
}
