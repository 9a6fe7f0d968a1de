package dto

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,min=2,max=80"`
}

type UpdateCategoryRequest struct {
	Name   *string `json:"name"   validate:"omitempty,min=2,max=80"`
	Active *bool   `json:"active"`
}

type CategoryResponse struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}
