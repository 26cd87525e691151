package models

// CreateTeamRequest starts a team.
type CreateTeamRequest struct {
	Name string `json:"name" validate:"required,min=2"`
}

// AddMemberRequest invites an existing account onto the team.
type AddMemberRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// SharedPipelineRequest toggles pipeline sharing.
type SharedPipelineRequest struct {
	Shared bool `json:"shared"`
}

// HandoffRequest transfers a contact to a teammate.
type HandoffRequest struct {
	ToUserID string `json:"toUserId" validate:"required"`
}

// CheckoutRequest starts a subscription checkout.
type CheckoutRequest struct {
	Tier string `json:"tier" validate:"required,oneof=solo team"`
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}
