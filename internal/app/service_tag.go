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

type TagInput struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

const maxTagNameLen = 50

func (s *Service) CreateTag(ctx context.Context, actor authz.Actor, input *TagInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Create tag request can not be null.")
	}
	if err := s.authz.EnsureCanManageTaxonomy(actor, "tags"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidArgument("Tag name is required.")
	}
	if len(name) > maxTagNameLen {
		return nil, invalidArgument("Tag name is too long.")
	}

	existing, err := s.store.GetTagByName(ctx, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && existing.ID != uuid.Nil {
		return nil, conflict(fmt.Sprintf("Tag '%s' already exists.", name))
	}

	tag := store.Tag{ID: uuid.New(), Name: name}
	if err := s.store.AddTag(ctx, tag); err != nil {
		return nil, err
	}

	payload := tagPayload(tag)
	s.broadcast("TagCreated", payload)
	return payload, nil
}

func (s *Service) GetTag(ctx context.Context, tagID uuid.UUID) (map[string]any, error) {
	if tagID == uuid.Nil {
		return nil, invalidArgument("Tag id can not be empty.")
	}
	tag, err := s.store.GetTagByID(ctx, tagID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Tag with id %s not found.", tagID))
		}
		return nil, err
	}
	return tagPayload(tag), nil
}

func (s *Service) ListTags(ctx context.Context) ([]map[string]any, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, err
	}
	payloads := make([]map[string]any, 0, len(tags))
	for _, tag := range tags {
		payloads = append(payloads, tagPayload(tag))
	}
	return payloads, nil
}

func (s *Service) UpdateTag(ctx context.Context, actor authz.Actor, input *TagInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Update tag request can not be null.")
	}
	if err := s.authz.EnsureCanManageTaxonomy(actor, "tags"); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, invalidArgument("Tag name is required.")
	}
	if len(name) > maxTagNameLen {
		return nil, invalidArgument("Tag name is too long.")
	}

	tag, err := s.store.GetTagByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Tag with id %s not found.", input.ID))
		}
		return nil, err
	}

	duplicate, err := s.store.GetTagByName(ctx, name)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err == nil && duplicate.ID != uuid.Nil && duplicate.ID != tag.ID {
		return nil, conflict(fmt.Sprintf("Tag '%s' already exists.", name))
	}

	tag.Name = name
	if err := s.store.UpdateTag(ctx, tag); err != nil {
		return nil, err
	}

	payload := tagPayload(tag)
	s.broadcast("TagUpdated", payload)
	return payload, nil
}

func (s *Service) DeleteTag(ctx context.Context, actor authz.Actor, input *TagInput) error {
	if input == nil {
		return invalidArgument("Delete tag request can not be null.")
	}
	if err := s.authz.EnsureCanManageTaxonomy(actor, "tags"); err != nil {
		return err
	}

	tag, err := s.store.GetTagByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(fmt.Sprintf("Tag with id %s not found.", input.ID))
		}
		return err
	}

	if err := s.store.DeleteTag(ctx, tag.ID); err != nil {
		return err
	}

	s.broadcast("TagDeleted", map[string]any{"id": tag.ID})
	return nil
}
