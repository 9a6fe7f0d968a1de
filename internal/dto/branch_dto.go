package dto

type CreateBranchRequest struct {
	Name     string `json:"name"     validate:"required,min=2,max=120"`
	Location string `json:"location" validate:"required,min=2,max=200"`
}

type UpdateBranchRequest struct {
	Name     *string `json:"name"     validate:"omitempty,min=2,max=120"`
	Location *string `json:"location" validate:"omitempty,min=2,max=200"`
}

type BranchResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	Protected bool   `json:"protected"`
	CreatedAt string `json:"created_at"`
}
