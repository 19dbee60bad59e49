package company

import "context"

// Repository は会社とメンバーの永続化を行うインターフェースです。
type Repository interface {
	Create(ctx context.Context, company *Company) (*Company, error)
	Update(ctx context.Context, company *Company) (*Company, error)
	FindByID(ctx context.Context, id string) (*Company, error)
	FindBySlug(ctx context.Context, slug string) (*Company, error)

	AddMember(ctx context.Context, member *Member) (*Member, error)
	ListMembers(ctx context.Context, companyID string) ([]*Member, error)
	FindMember(ctx context.Context, companyID, userID string) (*Member, error)
	FindMembershipByUser(ctx context.Context, userID string) (*Member, error)
}
