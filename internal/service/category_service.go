package service

import (
	"context"
	"strings"
	"unicode"

	"region-storefront/internal/domain"
	"region-storefront/internal/repository"

	"go.uber.org/zap"
)

const maxCategoryNameLength = 100

// Slugify lowercases s and joins its whitespace-separated words with '-'.
func Slugify(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), unicode.IsSpace), "-")
}

// CategoryService manages editorial category documents
type CategoryService interface {
	List(ctx context.Context) ([]domain.Category, error)
	Create(ctx context.Context, name, description string) (domain.Category, error)
	Update(ctx context.Context, id string, patch domain.CategoryPatch) error
	Delete(ctx context.Context, id string) error
}

type categoryService struct {
	repo   repository.CategoryRepository
	logger *zap.Logger
}

func NewCategoryService(repo repository.CategoryRepository, logger *zap.Logger) CategoryService {
	return &categoryService{repo: repo, logger: logger}
}

func (s *categoryService) List(ctx context.Context) ([]domain.Category, error) {
	return s.repo.List(ctx)
}

func (s *categoryService) Create(ctx context.Context, name, description string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if err := validateCategory(name, description); err != nil {
		return domain.Category{}, err
	}

	category, err := s.repo.Create(ctx, domain.Category{
		Name:        name,
		Description: description,
		Slug:        Slugify(name),
	})
	if err != nil {
		return domain.Category{}, err
	}

	s.logger.Info("Category created", zap.String("category_id", category.ID), zap.String("slug", category.Slug))
	return category, nil
}

// Update re-derives the slug whenever the name changes
func (s *categoryService) Update(ctx context.Context, id string, patch domain.CategoryPatch) error {
	errs := fieldErrors{}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		patch.Name = &name
		checkText(errs, "name", name, true, maxCategoryNameLength)
		slug := Slugify(name)
		patch.Slug = &slug
	} else {
		patch.Slug = nil
	}
	if patch.Description != nil {
		checkText(errs, "description", *patch.Description, false, maxDescriptionLength)
	}
	if err := errs.err(); err != nil {
		return err
	}

	if err := s.repo.Update(ctx, id, patch); err != nil {
		return err
	}
	s.logger.Info("Category updated", zap.String("category_id", id))
	return nil
}

func (s *categoryService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Category deleted", zap.String("category_id", id))
	return nil
}

func validateCategory(name, description string) error {
	errs := fieldErrors{}
	checkText(errs, "name", name, true, maxCategoryNameLength)
	checkText(errs, "description", description, false, maxDescriptionLength)
	return errs.err()
}
