package request

type CreateHandoffRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type CompleteHandoffRequest struct {
	Success *bool  `json:"success" validate:"required"`
	Detail  string `json:"detail" validate:"omitempty,max=255"`
}
