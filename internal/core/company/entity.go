package company

import "time"

// MemberRole は会社メンバーの役割を表します。
type MemberRole string

const (
	MemberRoleOwner     MemberRole = "owner"
	MemberRoleAdmin     MemberRole = "admin"
	MemberRoleRecruiter MemberRole = "recruiter"
)

// Company は求人を掲載する会社エンティティです。
// BalanceMinor はウォレット残高 (最小通貨単位) で、
// wallet パッケージの取引ログと常に一致します。
type Company struct {
	ID           string
	Name         string
	Slug         string
	LogoURL      *string
	Website      *string
	Description  *string
	BalanceMinor int64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Member は会社に所属する利用者です。
type Member struct {
	ID        string
	CompanyID string
	UserID    string
	Role      MemberRole
	CreatedAt time.Time
}

// CanManageMembers はメンバー招待が許可された役割かどうかを返します。
func (m *Member) CanManageMembers() bool {
	return m.Role == MemberRoleOwner || m.Role == MemberRoleAdmin
}
