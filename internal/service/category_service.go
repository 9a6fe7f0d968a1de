package service

import (
	"context"
	"errors"

	"branchpos/internal/dto"
	"branchpos/internal/model"
	"branchpos/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryService interface {
	Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	List(ctx context.Context) ([]dto.CategoryResponse, error)
	Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error)
	// Deactivate soft-deletes: the category drops out of listings but rows
	// referencing it keep resolving.
	Deactivate(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	repo repository.CategoryRepository
}

func NewCategoryService(repo repository.CategoryRepository) CategoryService {
	return &categoryService{repo: repo}
}

func (s *categoryService) Create(ctx context.Context, req dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	if _, err := s.repo.FindByName(ctx, req.Name); err == nil {
		return nil, validationf("category %s already exists", req.Name)
	}
	category := &model.Category{Name: req.Name, Active: true}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return categoryToResponse(category), nil
}

func (s *categoryService) List(ctx context.Context) ([]dto.CategoryResponse, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CategoryResponse, 0, len(categories))
	for i := range categories {
		items = append(items, *categoryToResponse(&categories[i]))
	}
	return items, nil
}

func (s *categoryService) Update(ctx context.Context, id uuid.UUID, req dto.UpdateCategoryRequest) (*dto.CategoryResponse, error) {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "category", Key: id.String()}
		}
		return nil, err
	}
	if req.Name != nil {
		category.Name = *req.Name
	}
	if req.Active != nil {
		category.Active = *req.Active
	}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return categoryToResponse(category), nil
}

func (s *categoryService) Deactivate(ctx context.Context, id uuid.UUID) error {
	category, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Resource: "category", Key: id.String()}
		}
		return err
	}
	category.Active = false
	return s.repo.Update(ctx, category)
}

func categoryToResponse(c *model.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:     c.ID.String(),
		Name:   c.Name,
		Active: c.Active,
	}
}
