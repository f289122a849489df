package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"forum/api/internal/authz"
	"forum/api/internal/search"
	"forum/api/internal/store"

	"github.com/google/uuid"
)

type TopicInput struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CategoryID  uuid.UUID `json:"categoryId"`
}

const (
	maxTopicTitleLen       = 120
	maxTopicDescriptionLen = 500
)

func (s *Service) CreateTopic(ctx context.Context, actor authz.Actor, input *TopicInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Create topic request can not be null.")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidArgument("Topic title is required.")
	}
	if len(input.Title) > maxTopicTitleLen {
		return nil, invalidArgument("Topic title is too long.")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, invalidArgument("Topic description is required.")
	}
	if len(input.Description) > maxTopicDescriptionLen {
		return nil, invalidArgument("Topic description is too long.")
	}
	if input.CategoryID == uuid.Nil {
		return nil, invalidArgument("Topic category is required.")
	}

	category, err := s.store.GetCategoryByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Category with id %s not found.", input.CategoryID))
		}
		return nil, err
	}

	topic := store.Topic{
		ID:           uuid.New(),
		Title:        input.Title,
		Description:  input.Description,
		CategoryID:   category.ID,
		CategoryName: category.Name,
		CreatedAt:    time.Now().UTC(),
	}
	if actor.UserID != uuid.Nil {
		ownerID := actor.UserID
		topic.UserID = &ownerID
	}
	if err := s.store.AddTopic(ctx, topic); err != nil {
		return nil, err
	}

	s.indexTopic(topic)
	payload := topicPayload(topic)
	s.broadcast("TopicCreated", payload)
	return payload, nil
}

func (s *Service) GetTopic(ctx context.Context, topicID uuid.UUID) (map[string]any, error) {
	if topicID == uuid.Nil {
		return nil, invalidArgument("Topic id can not be empty.")
	}
	topic, err := s.store.GetTopicByID(ctx, topicID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Topic with id %s not found.", topicID))
		}
		return nil, err
	}
	return topicPayload(topic), nil
}

func (s *Service) ListTopics(ctx context.Context) ([]map[string]any, error) {
	topics, err := s.store.ListTopics(ctx)
	if err != nil {
		return nil, err
	}
	return topicPayloads(topics), nil
}

func (s *Service) ListTopicsByCategory(ctx context.Context, categoryID uuid.UUID) ([]map[string]any, error) {
	if categoryID == uuid.Nil {
		return nil, invalidArgument("Category id can not be empty.")
	}
	if _, err := s.store.GetCategoryByID(ctx, categoryID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Category with id %s not found.", categoryID))
		}
		return nil, err
	}
	topics, err := s.store.ListTopicsByCategory(ctx, categoryID)
	if err != nil {
		return nil, err
	}
	return topicPayloads(topics), nil
}

func topicPayloads(topics []store.Topic) []map[string]any {
	payloads := make([]map[string]any, 0, len(topics))
	for _, topic := range topics {
		payloads = append(payloads, topicPayload(topic))
	}
	return payloads
}

func (s *Service) UpdateTopic(ctx context.Context, actor authz.Actor, input *TopicInput) (map[string]any, error) {
	if input == nil {
		return nil, invalidArgument("Update topic request can not be null.")
	}
	if strings.TrimSpace(input.Title) == "" {
		return nil, invalidArgument("Topic title is required.")
	}
	if len(input.Title) > maxTopicTitleLen {
		return nil, invalidArgument("Topic title is too long.")
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, invalidArgument("Topic description is required.")
	}
	if len(input.Description) > maxTopicDescriptionLen {
		return nil, invalidArgument("Topic description is too long.")
	}
	if input.CategoryID == uuid.Nil {
		return nil, invalidArgument("Topic category is required.")
	}

	topic, err := s.store.GetTopicByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Topic with id %s not found.", input.ID))
		}
		return nil, err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, topic.OwnerID(), "topic"); err != nil {
		return nil, err
	}

	category, err := s.store.GetCategoryByID(ctx, input.CategoryID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, notFound(fmt.Sprintf("Category with id %s not found.", input.CategoryID))
		}
		return nil, err
	}

	topic.Title = input.Title
	topic.Description = input.Description
	topic.CategoryID = category.ID
	topic.CategoryName = category.Name
	if err := s.store.UpdateTopic(ctx, topic); err != nil {
		return nil, err
	}

	s.indexTopic(topic)
	payload := topicPayload(topic)
	s.broadcast("TopicUpdated", payload)
	return payload, nil
}

func (s *Service) DeleteTopic(ctx context.Context, actor authz.Actor, input *TopicInput) error {
	if input == nil {
		return invalidArgument("Delete topic request can not be null.")
	}

	topic, err := s.store.GetTopicByID(ctx, input.ID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return notFound(fmt.Sprintf("Topic with id %s not found.", input.ID))
		}
		return err
	}
	if err := s.authz.EnsureCanManageOwnedEntity(actor, topic.OwnerID(), "topic"); err != nil {
		return err
	}

	if err := s.store.DeleteTopic(ctx, topic.ID); err != nil {
		return err
	}

	if s.search != nil {
		s.search.DeleteTopic(topic.ID.String())
	}
	s.broadcast("TopicDeleted", map[string]any{"id": topic.ID})
	return nil
}

func (s *Service) indexTopic(topic store.Topic) {
	if s.search == nil {
		return
	}
	s.search.IndexTopic(search.TopicRecord{
		ID:          topic.ID.String(),
		Title:       topic.Title,
		Description: topic.Description,
		CategoryID:  topic.CategoryID.String(),
	})
}
