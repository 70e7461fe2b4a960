package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"goblog/internal/model"
)

var (
	ErrPostNotFound = errors.New("post not found")
	ErrForbidden    = errors.New("only the author may modify this post")
)

type PostStore interface {
	Create(post *model.Post) error
	ListAll() ([]model.Post, error)
	GetByID(id uint) (*model.Post, error)
	Save(post *model.Post) error
	Delete(id uint) error
}

type ActivityStore interface {
	ListRecent(limit int) ([]model.Activity, error)
}

type ActivityPublisher interface {
	Publish(ctx context.Context, activity model.Activity) error
}

type PostService struct {
	postStore     PostStore
	activityStore ActivityStore
	publisher     ActivityPublisher
}

type CreatePostInput struct {
	AuthorID uint
	Title    string
	Content  string
}

type UpdatePostInput struct {
	AuthorID uint
	PostID   uint
	Title    string
	Content  string
}

func NewPostService(postStore PostStore, activityStore ActivityStore, publisher ActivityPublisher) *PostService {
	return &PostService{
		postStore:     postStore,
		activityStore: activityStore,
		publisher:     publisher,
	}
}

func (s *PostService) Create(input CreatePostInput) (*model.Post, error) {
	if input.AuthorID == 0 {
		return nil, ErrInvalidInput
	}

	title := strings.TrimSpace(input.Title)
	content := strings.TrimSpace(input.Content)
	if title == "" || content == "" {
		return nil, ErrInvalidInput
	}

	post := &model.Post{
		Title:    title,
		Content:  content,
		AuthorID: input.AuthorID,
	}
	if err := s.postStore.Create(post); err != nil {
		return nil, err
	}

	s.publishActivity(post, model.ActivityPostCreated)

	// re-read so the response carries the joined author
	created, err := s.postStore.GetByID(post.ID)
	if err != nil {
		log.Printf("re-read post %d after create failed: %v", post.ID, err)
		return post, nil
	}
	if created == nil {
		return post, nil
	}
	return created, nil
}

func (s *PostService) List() ([]model.Post, error) {
	return s.postStore.ListAll()
}

func (s *PostService) GetByID(id uint) (*model.Post, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	post, err := s.postStore.GetByID(id)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	return post, nil
}

// Update overwrites only the fields that arrive non-blank; a blank field
// keeps its prior value rather than clearing it.
func (s *PostService) Update(input UpdatePostInput) (*model.Post, error) {
	if input.AuthorID == 0 || input.PostID == 0 {
		return nil, ErrInvalidInput
	}

	post, err := s.postStore.GetByID(input.PostID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrPostNotFound
	}
	if post.AuthorID != input.AuthorID {
		return nil, ErrForbidden
	}

	if title := strings.TrimSpace(input.Title); title != "" {
		post.Title = title
	}
	if content := strings.TrimSpace(input.Content); content != "" {
		post.Content = content
	}
	if err := s.postStore.Save(post); err != nil {
		return nil, err
	}

	s.publishActivity(post, model.ActivityPostUpdated)
	return post, nil
}

func (s *PostService) Delete(authorID, postID uint) error {
	if authorID == 0 || postID == 0 {
		return ErrInvalidInput
	}

	post, err := s.postStore.GetByID(postID)
	if err != nil {
		return err
	}
	if post == nil {
		return ErrPostNotFound
	}
	if post.AuthorID != authorID {
		return ErrForbidden
	}

	if err := s.postStore.Delete(postID); err != nil {
		return err
	}

	s.publishActivity(post, model.ActivityPostDeleted)
	return nil
}

func (s *PostService) RecentActivity(limit int) ([]model.Activity, error) {
	if s.activityStore == nil {
		return nil, nil
	}
	return s.activityStore.ListRecent(limit)
}

// publishActivity is best-effort: the feed is advisory and must never fail
// the mutation that triggered it.
func (s *PostService) publishActivity(post *model.Post, action string) {
	if s.publisher == nil {
		return
	}
	activity := model.Activity{
		PostID: post.ID,
		UserID: post.AuthorID,
		Action: action,
		Title:  post.Title,
	}
	if err := s.publisher.Publish(context.Background(), activity); err != nil {
		log.Printf("publish %s activity for post %d failed: %v", action, post.ID, err)
	}
}
