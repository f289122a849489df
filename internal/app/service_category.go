package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"forum/api/internal/authz"
	"forum/api/internal/store"

	"github.com/google/uuid"
)

type CategoryInput struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
}

const (
	maxCategoryNameLen        = 80
	maxCategoryDescriptionLen = 250
)

func (s *Service) CreateCategory(ctx context.Context, actor authz.Actor, input *CategoryInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Create category request can not be null.")
	}
	if err := s.authz.EnsureCanManageTaxonomy(actor, "categories"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidArgument("Category name is required.")
	}
	if len(name) > maxCategoryNameLen {
		return nil, invalidArgument("Category name is too long.")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, invalidArgument("Category description is required.")
	}
	if len(strings.TrimSpace(input.Description)) > maxCategoryDescriptionLen {
		return nil, invalidArgument("Category description is too long.")
	}

	existing, err := s.store.GetCategoryByName(ctx, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && existing.ID != uuid.Nil {
		return nil, conflict(fmt.Sprintf("Category '%s' already exists.", name))
	}

	category := store.Category{
		ID:          uuid.New(),
		Name:        name,
		Description: strings.TrimSpace(input.Description),
	}
	if err := s.store.AddCategory(ctx, category); err != nil {
		return nil, err
	}

	payload := categoryPayload(category)
	s.broadcast("CategoryCreated", payload)
	return payload, nil
}

func (s *Service) GetCategory(ctx context.Context, categoryID uuid.UUID) (map[string]any, error) {
	if categoryID == uuid.Nil {
		return nil, invalidArgument("Category id can not be empty.")
	}
	category, err := s.store.GetCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Category with id %s not found.", categoryID))
		}
		return nil, err
	}
	return categoryPayload(category), nil
}

func (s *Service) ListCategories(ctx context.Context) ([]map[string]any, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(categories))
	for _, category := range categories {
		payloads = append(payloads, categoryPayload(category))
	}
	return payloads, nil
}

func (s *Service) UpdateCategory(ctx context.Context, actor authz.Actor, input *CategoryInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Update category request can not be null.")
	}
	if err := s.authz.EnsureCanManageTaxonomy(actor, "categories"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidArgument("Category name is required.")
	}
	if len(name) > maxCategoryNameLen {
		return nil, invalidArgument("Category name is too long.")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, invalidArgument("Category description is required.")
	}
	if len(strings.TrimSpace(input.Description)) > maxCategoryDescriptionLen {
		return nil, invalidArgument("Category description is too long.")
	}

	category, err := s.store.GetCategoryByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Category with id %s not found.", input.ID))
		}
		return nil, err
	}

	duplicate, err := s.store.GetCategoryByName(ctx, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && duplicate.ID != uuid.Nil && duplicate.ID != category.ID {
		return nil, conflict(fmt.Sprintf("Category '%s' already exists.", name))
	}

	category.Name = name
	category.Description = strings.TrimSpace(input.Description)
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, err
	}

	payload := categoryPayload(category)
	s.broadcast("CategoryUpdated", payload)
	return payload, nil
}

func (s *Service) DeleteCategory(ctx context.Context, actor authz.Actor, input *CategoryInput) error {
	if input == nil {
		return invalidArgument("Delete category request can not be null.")
	}
	if err := s.authz.EnsureCanManageTaxonomy(actor, "categories"); err != nil {
		return err
	}

	category, err := s.store.GetCategoryByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(fmt.Sprintf("Category with id %s not found.", input.ID))
		}
		return err
	}

	if err := s.store.DeleteCategory(ctx, category.ID); err != nil {
		return err
	}

	s.broadcast("CategoryDeleted", map[string]any{"id": category.ID})
	return nil
}
