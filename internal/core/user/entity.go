package user

import (
	"time"

	"github.com/workfound/workfound-server/internal/core/identity"
)

// Profile は利用者プロフィールです。求職者・採用担当者の双方が持ちます。
type Profile struct {
	ID          string
	Email       string
	Role        identity.Role
	FullName    string
	CompanyName *string
	Phone       *string
	CreatedAt   time.Time
}
