package app_test

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goblog/internal/app"
	"goblog/internal/model"
)

type fakePostStore struct {
	posts  map[uint]*model.Post
	nextID uint
	err    error
	getErr error
}

func newFakePostStore() *fakePostStore {
	return &fakePostStore{posts: map[uint]*model.Post{}, nextID: 1}
}

func (s *fakePostStore) Create(post *model.Post) error {
	if s.err != nil {
		return s.err
	}
	post.ID = s.nextID
	s.nextID++
	post.CreatedAt = time.Now()
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *fakePostStore) ListAll() ([]model.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	posts := make([]model.Post, 0, len(s.posts))
	for _, p := range s.posts {
		posts = append(posts, *p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *fakePostStore) GetByID(id uint) (*model.Post, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.getErr != nil {
		return nil, s.getErr
	}
	post, ok := s.posts[id]
	if !ok {
		return nil, nil
	}
	copied := *post
	return &copied, nil
}

func (s *fakePostStore) Save(post *model.Post) error {
	if s.err != nil {
		return s.err
	}
	copied := *post
	s.posts[post.ID] = &copied
	return nil
}

func (s *fakePostStore) Delete(id uint) error {
	if s.err != nil {
		return s.err
	}
	delete(s.posts, id)
	return nil
}

type recordingPublisher struct {
	published []model.Activity
	err       error
}

func (p *recordingPublisher) Publish(_ context.Context, activity model.Activity) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, activity)
	return nil
}

type fakeActivityStore struct {
	activities []model.Activity
}

func (s *fakeActivityStore) ListRecent(limit int) ([]model.Activity, error) {
	if limit <= 0 || limit > len(s.activities) {
		limit = len(s.activities)
	}
	return s.activities[:limit], nil
}

func newPostService(store *fakePostStore, publisher *recordingPublisher) *app.PostService {
	return app.NewPostService(store, &fakeActivityStore{}, publisher)
}

func TestPostServiceCreate(t *testing.T) {
	tests := []struct {
		name    string
		input   app.CreatePostInput
		wantErr error
	}{
		{
			name:  "valid post",
			input: app.CreatePostInput{AuthorID: 1, Title: "Hi", Content: "World"},
		},
		{
			name:    "missing author",
			input:   app.CreatePostInput{Title: "Hi", Content: "World"},
			wantErr: app.ErrInvalidInput,
		},
		{
			name:    "blank title",
			input:   app.CreatePostInput{AuthorID: 1, Title: "   ", Content: "World"},
			wantErr: app.ErrInvalidInput,
		},
		{
			name:    "blank content",
			input:   app.CreatePostInput{AuthorID: 1, Title: "Hi", Content: ""},
			wantErr: app.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakePostStore()
			publisher := &recordingPublisher{}

			post, err := newPostService(store, publisher).Create(tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Empty(t, store.posts)
				assert.Empty(t, publisher.published)
				return
			}
			require.NoError(t, err)
			require.NotNil(t, post)
			assert.Equal(t, tt.input.AuthorID, post.AuthorID)

			require.Len(t, publisher.published, 1)
			assert.Equal(t, model.ActivityPostCreated, publisher.published[0].Action)
			assert.Equal(t, post.ID, publisher.published[0].PostID)
		})
	}
}

func TestPostServiceCreateThenGetRoundTrip(t *testing.T) {
	store := newFakePostStore()
	svc := newPostService(store, &recordingPublisher{})

	created, err := svc.Create(app.CreatePostInput{AuthorID: 7, Title: "Hi", Content: "World"})
	require.NoError(t, err)

	got, err := svc.GetByID(created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hi", got.Title)
	assert.Equal(t, "World", got.Content)
	assert.Equal(t, uint(7), got.AuthorID)
}

func TestPostServiceListNewestFirst(t *testing.T) {
	store := newFakePostStore()
	svc := newPostService(store, &recordingPublisher{})

	for i, title := range []string{"first", "second", "third"} {
		post := &model.Post{Title: title, Content: "c", AuthorID: 1}
		require.NoError(t, store.Create(post))
		stored := store.posts[post.ID]
		stored.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
	}

	posts, err := svc.List()
	require.NoError(t, err)
	require.Len(t, posts, 3)
	for i := 1; i < len(posts); i++ {
		assert.False(t, posts[i].CreatedAt.After(posts[i-1].CreatedAt))
	}
	assert.Equal(t, "third", posts[0].Title)
}

func TestPostServiceUpdate(t *testing.T) {
	const authorID, strangerID = uint(1), uint(2)

	tests := []struct {
		name        string
		input       app.UpdatePostInput
		wantErr     error
		wantTitle   string
		wantContent string
	}{
		{
			name:        "author updates both fields",
			input:       app.UpdatePostInput{AuthorID: authorID, Title: "New title", Content: "New content"},
			wantTitle:   "New title",
			wantContent: "New content",
		},
		{
			name:        "blank title keeps prior value",
			input:       app.UpdatePostInput{AuthorID: authorID, Title: "", Content: "New content"},
			wantTitle:   "Old title",
			wantContent: "New content",
		},
		{
			name:        "blank content keeps prior value",
			input:       app.UpdatePostInput{AuthorID: authorID, Title: "New title", Content: "   "},
			wantTitle:   "New title",
			wantContent: "Old content",
		},
		{
			name:    "non-author is forbidden",
			input:   app.UpdatePostInput{AuthorID: strangerID, Title: "Hijack", Content: "Hijack"},
			wantErr: app.ErrForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakePostStore()
			publisher := &recordingPublisher{}
			svc := newPostService(store, publisher)

			created, err := svc.Create(app.CreatePostInput{AuthorID: authorID, Title: "Old title", Content: "Old content"})
			require.NoError(t, err)
			publisher.published = nil

			tt.input.PostID = created.ID
			updated, err := svc.Update(tt.input)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				stored := store.posts[created.ID]
				assert.Equal(t, "Old title", stored.Title)
				assert.Empty(t, publisher.published)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTitle, updated.Title)
			assert.Equal(t, tt.wantContent, updated.Content)
			assert.Equal(t, authorID, updated.AuthorID)

			require.Len(t, publisher.published, 1)
			assert.Equal(t, model.ActivityPostUpdated, publisher.published[0].Action)
		})
	}
}

func TestPostServiceUpdateMissingPost(t *testing.T) {
	svc := newPostService(newFakePostStore(), &recordingPublisher{})

	_, err := svc.Update(app.UpdatePostInput{AuthorID: 1, PostID: 99, Title: "x"})
	require.ErrorIs(t, err, app.ErrPostNotFound)
}

func TestPostServiceDelete(t *testing.T) {
	store := newFakePostStore()
	publisher := &recordingPublisher{}
	svc := newPostService(store, publisher)

	created, err := svc.Create(app.CreatePostInput{AuthorID: 1, Title: "Hi", Content: "World"})
	require.NoError(t, err)
	publisher.published = nil

	require.ErrorIs(t, svc.Delete(2, created.ID), app.ErrForbidden)
	require.Contains(t, store.posts, created.ID)

	require.NoError(t, svc.Delete(1, created.ID))
	assert.NotContains(t, store.posts, created.ID)
	require.Len(t, publisher.published, 1)
	assert.Equal(t, model.ActivityPostDeleted, publisher.published[0].Action)

	require.ErrorIs(t, svc.Delete(1, created.ID), app.ErrPostNotFound)
}

func TestPostServiceCreateSurvivesRereadFailure(t *testing.T) {
	store := newFakePostStore()
	store.getErr = errors.New("read replica down")
	svc := newPostService(store, &recordingPublisher{})

	post, err := svc.Create(app.CreatePostInput{AuthorID: 1, Title: "Hi", Content: "World"})

	// the create itself succeeded, the joined re-read is best-effort
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Equal(t, "Hi", post.Title)
	assert.Contains(t, store.posts, post.ID)
}

func TestPostServicePublishFailureDoesNotFailMutation(t *testing.T) {
	store := newFakePostStore()
	publisher := &recordingPublisher{err: errors.New("broker down")}
	svc := newPostService(store, publisher)

	post, err := svc.Create(app.CreatePostInput{AuthorID: 1, Title: "Hi", Content: "World"})
	require.NoError(t, err)
	require.NotNil(t, post)
	assert.Contains(t, store.posts, post.ID)
}

func TestPostServiceGetByIDNotFound(t *testing.T) {
	svc := newPostService(newFakePostStore(), &recordingPublisher{})

	_, err := svc.GetByID(42)
	require.ErrorIs(t, err, app.ErrPostNotFound)

	_, err = svc.GetByID(0)
	require.ErrorIs(t, err, app.ErrInvalidInput)
}
