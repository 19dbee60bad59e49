package application

import "time"

// Status は応募の選考段階を表します。
type Status string

const (
	// StatusNew は未対応の応募です。
	StatusNew Status = "new"
	// StatusViewed は採用担当者が閲覧済みの応募です。
	StatusViewed Status = "viewed"
	// StatusInterview は面接に進んだ応募です。
	StatusInterview Status = "interview"
	// StatusOffer はオファーを提示した応募です。
	StatusOffer Status = "offer"
	// StatusRejected は不採用の応募です。スクリーニングによる自動却下を含みます。
	StatusRejected Status = "rejected"
)

// Application は求職者の応募エンティティです。
// 状態は明示的な変更操作によってのみ更新され、削除されることはありません。
type Application struct {
	ID          string
	JobID       string
	SeekerID    string
	Status      Status
	ResumeID    *string
	ResumeURL   *string
	CoverLetter *string
	Answers     []*Answer
	CreatedAt   time.Time
}

// Answer はスクリーニング質問への回答です。
type Answer struct {
	QuestionID string
	Text       string
}

// Note は応募に対する社内メモです。
type Note struct {
	ID            string
	ApplicationID string
	AuthorID      string
	Content       string
	CreatedAt     time.Time
}

// PostedJob は応募先求人の要約です。認可判定とスクリーニングに使用します。
type PostedJob struct {
	ID         string
	CompanyID  string
	Title      string
	Published  bool
	AcceptsATS bool
}

// ScreeningQuestion は自動却下判定に必要な質問情報です。
type ScreeningQuestion struct {
	ID             string
	Text           string
	ExpectedAnswer *string
	Disqualifying  bool
}

// IsValidStatus は定義済みの選考段階かどうかを返します。
func IsValidStatus(status Status) bool {
	switch status {
	case StatusNew, StatusViewed, StatusInterview, StatusOffer, StatusRejected:
		return true
	default:
		return false
	}
}
