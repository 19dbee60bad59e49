package job

import "time"

// Status は求人の公開状態を表します。
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusClosed    Status = "closed"
)

// ApplicationMethod は応募の受付方法を表します。
// internal_ats のみサイト内応募 (ATS) を受け付けます。
type ApplicationMethod string

const (
	MethodInternalATS ApplicationMethod = "internal_ats"
	MethodPhone       ApplicationMethod = "phone"
	MethodWhatsApp    ApplicationMethod = "whatsapp"
	MethodViber       ApplicationMethod = "viber"
)

// SalaryPeriod は給与の支払い周期を表します。
type SalaryPeriod string

const (
	SalaryPerHour  SalaryPeriod = "hour"
	SalaryPerMonth SalaryPeriod = "month"
	SalaryPerYear  SalaryPeriod = "year"
)

// PromotionPlan は有料の求人プロモーションプランです。
type PromotionPlan string

const (
	// PlanHighlight は求人カードを強調表示します。手動で解除されるまで有効です。
	PlanHighlight PromotionPlan = "highlight"
	// PlanTop7 は検索結果の上位に 7 日間表示します。
	PlanTop7 PromotionPlan = "top_7"
)

// Top7Duration は PlanTop7 の有効期間です。
const Top7Duration = 7 * 24 * time.Hour

// Job は求人エンティティです。
type Job struct {
	ID            string
	CompanyID     string
	EmployerID    string
	Title         string
	Description   string
	Location      string
	SalaryMin     *int64
	SalaryMax     *int64
	SalaryPeriod  *SalaryPeriod
	Method        ApplicationMethod
	ContactInfo   *string
	Status        Status
	IsHighlighted bool
	PromotedUntil *time.Time
	Views         int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Questions     []*Question
}

// Question は求人に紐づくスクリーニング質問です。
// 求人作成時に登録され、以後変更されません。
type Question struct {
	ID             string
	JobID          string
	Text           string
	ExpectedAnswer *string
	Disqualifying  bool
}

// IsPromoted は時刻 now において TOP 表示が有効かどうかを返します。
func (j *Job) IsPromoted(now time.Time) bool {
	return j.PromotedUntil != nil && j.PromotedUntil.After(now)
}
