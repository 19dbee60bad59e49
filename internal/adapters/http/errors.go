package http

import (
	"errors"
	"net/http"

	"github.com/workfound/workfound-server/internal/core/alert"
	"github.com/workfound/workfound-server/internal/core/application"
	"github.com/workfound/workfound-server/internal/core/company"
	"github.com/workfound/workfound-server/internal/core/event"
	"github.com/workfound/workfound-server/internal/core/identity"
	"github.com/workfound/workfound-server/internal/core/job"
	"github.com/workfound/workfound-server/internal/core/message"
	"github.com/workfound/workfound-server/internal/core/resume"
	"github.com/workfound/workfound-server/internal/core/saved"
	"github.com/workfound/workfound-server/internal/core/user"
	"github.com/workfound/workfound-server/internal/core/wallet"
)

// statusOf はドメインエラーを HTTP ステータスに対応付けます。
// 未知のエラーは 500 として扱い、詳細はクライアントへ返しません。
func statusOf(err error) int {
	switch {
	case errors.Is(err, identity.ErrUnauthenticated),
		errors.Is(err, identity.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, user.ErrNotAuthorized),
		errors.Is(err, company.ErrNotAuthorized),
		errors.Is(err, job.ErrNotAuthorized),
		errors.Is(err, application.ErrNotAuthorized),
		errors.Is(err, wallet.ErrNotAuthorized),
		errors.Is(err, resume.ErrNotAuthorized),
		errors.Is(err, event.ErrNotAuthorized),
		errors.Is(err, alert.ErrNotAuthorized),
		errors.Is(err, message.ErrNotParticipant):
		return http.StatusForbidden

	case errors.Is(err, user.ErrProfileNotFound),
		errors.Is(err, company.ErrCompanyNotFound),
		errors.Is(err, company.ErrMemberNotFound),
		errors.Is(err, job.ErrJobNotFound),
		errors.Is(err, application.ErrApplicationNotFound),
		errors.Is(err, application.ErrJobNotFound),
		errors.Is(err, application.ErrNoteNotFound),
		errors.Is(err, wallet.ErrCompanyNotFound),
		errors.Is(err, resume.ErrResumeNotFound),
		errors.Is(err, event.ErrEventNotFound),
		errors.Is(err, alert.ErrAlertNotFound),
		errors.Is(err, message.ErrConversationNotFound):
		return http.StatusNotFound

	case errors.Is(err, company.ErrSlugAlreadyExists),
		errors.Is(err, company.ErrAlreadyMember):
		return http.StatusConflict

	case errors.Is(err, wallet.ErrInsufficientFunds),
		errors.Is(err, application.ErrJobNotOpen):
		return http.StatusUnprocessableEntity

	case errors.Is(err, errBadRequest),
		errors.Is(err, user.ErrInvalidID),
		errors.Is(err, user.ErrInvalidFullName),
		errors.Is(err, user.ErrInvalidPageSize),
		errors.Is(err, user.ErrInvalidPageToken),
		errors.Is(err, company.ErrInvalidID),
		errors.Is(err, company.ErrInvalidName),
		errors.Is(err, company.ErrInvalidSlug),
		errors.Is(err, company.ErrInvalidMemberRole),
		errors.Is(err, job.ErrInvalidID),
		errors.Is(err, job.ErrInvalidTitle),
		errors.Is(err, job.ErrInvalidLocation),
		errors.Is(err, job.ErrInvalidMethod),
		errors.Is(err, job.ErrInvalidStatus),
		errors.Is(err, job.ErrInvalidSalary),
		errors.Is(err, job.ErrInvalidQuestion),
		errors.Is(err, job.ErrInvalidPlan),
		errors.Is(err, job.ErrInvalidPageSize),
		errors.Is(err, job.ErrInvalidPageToken),
		errors.Is(err, application.ErrInvalidID),
		errors.Is(err, application.ErrInvalidStatus),
		errors.Is(err, application.ErrInvalidAnswer),
		errors.Is(err, application.ErrInvalidNote),
		errors.Is(err, wallet.ErrInvalidID),
		errors.Is(err, wallet.ErrInvalidAmount),
		errors.Is(err, wallet.ErrInvalidSession),
		errors.Is(err, wallet.ErrUnknownPlan),
		errors.Is(err, resume.ErrInvalidID),
		errors.Is(err, resume.ErrInvalidTitle),
		errors.Is(err, event.ErrInvalidID),
		errors.Is(err, event.ErrInvalidTitle),
		errors.Is(err, event.ErrInvalidType),
		errors.Is(err, event.ErrInvalidTimeRange),
		errors.Is(err, alert.ErrInvalidID),
		errors.Is(err, alert.ErrEmptyFilter),
		errors.Is(err, saved.ErrInvalidID),
		errors.Is(err, saved.ErrInvalidType),
		errors.Is(err, message.ErrInvalidID),
		errors.Is(err, message.ErrInvalidContent):
		return http.StatusBadRequest
	}

	return http.StatusInternalServerError
}
