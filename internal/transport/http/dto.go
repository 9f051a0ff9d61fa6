package httptransport

import (
	"time"

	appmodels "grantgate/internal/application/models"
	"grantgate/internal/gateway"
	idmodels "grantgate/internal/identity/models"
	scoremodels "grantgate/internal/scoring/models"
	"grantgate/pkg/domain"
)

type createApplicationRequest struct {
	RoundID        string `json:"round_id"`
	Area           string `json:"area"`
	Title          string `json:"title"`
	Summary        string `json:"summary"`
	FundsRequested int64  `json:"funds_requested"`
}

func (r createApplicationRequest) toDraft() *appmodels.Draft {
	return &appmodels.Draft{
		RoundID:        domain.RoundID(r.RoundID),
		Area:           domain.Area(r.Area),
		Title:          r.Title,
		Summary:        r.Summary,
		FundsRequested: r.FundsRequested,
	}
}

type updateApplicationRequest struct {
	Title          *string   `json:"title"`
	Summary        *string   `json:"summary"`
	FundsRequested *int64    `json:"funds_requested"`
	Area           *string   `json:"area"`
	AssignedScorers *[]string `json:"assigned_scorers"`
}

func (r updateApplicationRequest) toPatch() *appmodels.Patch {
	patch := &appmodels.Patch{
		Title:          r.Title,
		Summary:        r.Summary,
		FundsRequested: r.FundsRequested,
	}
	if r.Area != nil {
		area := domain.Area(*r.Area)
		patch.Area = &area
	}
	if r.AssignedScorers != nil {
		scorers := make([]domain.UserID, 0, len(*r.AssignedScorers))
		for _, s := range *r.AssignedScorers {
			scorers = append(scorers, domain.UserID(s))
		}
		patch.AssignedScorers = &scorers
	}
	return patch
}

type submitApplicationRequest struct {
	FieldsComplete bool `json:"fields_complete"`
}

type overrideStatusRequest struct {
	To   string `json:"to"`
	Note string `json:"note"`
}

type applicationResponse struct {
	ID              string     `json:"id"`
	OwnerID         string     `json:"owner_id"`
	RoundID         string     `json:"round_id,omitempty"`
	Area            string     `json:"area"`
	Title           string     `json:"title"`
	Summary         string     `json:"summary,omitempty"`
	FundsRequested  int64      `json:"funds_requested"`
	Status          string     `json:"status"`
	AssignedScorers []string   `json:"assigned_scorers,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
}

func toApplicationResponse(app *appmodels.Application) applicationResponse {
	scorers := make([]string, 0, len(app.AssignedScorers))
	for _, s := range app.AssignedScorers {
		scorers = append(scorers, s.String())
	}
	return applicationResponse{
		ID:              app.ID.String(),
		OwnerID:         app.OwnerID.String(),
		RoundID:         app.RoundID.String(),
		Area:            app.Area.String(),
		Title:           app.Title,
		Summary:         app.Summary,
		FundsRequested:  app.FundsRequested,
		Status:          app.Status.String(),
		AssignedScorers: scorers,
		CreatedAt:       app.CreatedAt,
		SubmittedAt:     app.SubmittedAt,
	}
}

type criterionScoreDTO struct {
	CriterionID string `json:"criterion_id"`
	Points      int    `json:"points"`
	Notes       string `json:"notes,omitempty"`
}

type upsertScoreRequest struct {
	Criteria []criterionScoreDTO `json:"criteria"`
	Final    bool                `json:"final"`
}

func (r upsertScoreRequest) toSheet() *scoremodels.Sheet {
	criteria := make([]scoremodels.CriterionScore, 0, len(r.Criteria))
	for _, c := range r.Criteria {
		criteria = append(criteria, scoremodels.CriterionScore{
			CriterionID: c.CriterionID,
			Points:      c.Points,
			Notes:       c.Notes,
		})
	}
	return &scoremodels.Sheet{Criteria: criteria, Final: r.Final}
}

type scoreResponse struct {
	ApplicationID string              `json:"application_id"`
	ScorerID      string              `json:"scorer_id"`
	Criteria      []criterionScoreDTO `json:"criteria"`
	Total         int                 `json:"total"`
	Final         bool                `json:"final"`
	UpdatedAt     time.Time           `json:"updated_at"`
}

func toScoreResponse(score *scoremodels.Score) scoreResponse {
	criteria := make([]criterionScoreDTO, 0, len(score.Criteria))
	for _, c := range score.Criteria {
		criteria = append(criteria, criterionScoreDTO{
			CriterionID: c.CriterionID,
			Points:      c.Points,
			Notes:       c.Notes,
		})
	}
	return scoreResponse{
		ApplicationID: score.ApplicationID.String(),
		ScorerID:      score.ScorerID.String(),
		Criteria:      criteria,
		Total:         score.Total(),
		Final:         score.Final,
		UpdatedAt:     score.UpdatedAt,
	}
}

type createUserRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
	Bio   string `json:"bio"`
	Role  string `json:"role"`
	Area  string `json:"area"`
}

func (r createUserRequest) toUser() *idmodels.User {
	return &idmodels.User{
		ID:    domain.UserID(r.ID),
		Name:  r.Name,
		Email: r.Email,
		Phone: r.Phone,
		Bio:   r.Bio,
		Role:  domain.Role(r.Role),
		Area:  domain.Area(r.Area),
	}
}

type updateUserRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
	Bio   *string `json:"bio"`

	Role   *string `json:"role"`
	Area   *string `json:"area"`
	Active *bool   `json:"active"`
}

func (r updateUserRequest) toPatch() *idmodels.UserPatch {
	patch := &idmodels.UserPatch{
		Name:   r.Name,
		Email:  r.Email,
		Phone:  r.Phone,
		Bio:    r.Bio,
		Active: r.Active,
	}
	if r.Role != nil {
		role := domain.Role(*r.Role)
		patch.Role = &role
	}
	if r.Area != nil {
		area := domain.Area(*r.Area)
		patch.Area = &area
	}
	return patch
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Role      string    `json:"role"`
	Area      string    `json:"area,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

func toUserResponse(user *idmodels.User) userResponse {
	return userResponse{
		ID:        user.ID.String(),
		Name:      user.Name,
		Email:     user.Email,
		Phone:     user.Phone,
		Bio:       user.Bio,
		Role:      user.Role.String(),
		Area:      user.Area.String(),
		Active:    user.Active,
		CreatedAt: user.CreatedAt,
	}
}

// resultBody picks the JSON body for a gateway result.
func resultBody(result *gateway.Result) any {
	switch {
	case result == nil:
		return nil
	case result.Application != nil:
		return toApplicationResponse(result.Application)
	case result.Score != nil:
		return toScoreResponse(result.Score)
	case result.User != nil:
		return toUserResponse(result.User)
	}
	return nil
}
