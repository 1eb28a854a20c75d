package story

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storyweave-api/internal/domain/entity"
	"storyweave-api/internal/domain/repository"
	"storyweave-api/pkg/errors"
)

// ---- 内存仓储，串行测试用 ----

type memStoryRepo struct {
	stories map[string]*entity.Story
	seq     int
}

func (m *memStoryRepo) Create(_ context.Context, story *entity.Story) error {
	m.seq++
	story.ID = fmt.Sprintf("story-%d", m.seq)
	m.stories[story.ID] = story
	return nil
}

func (m *memStoryRepo) GetByID(_ context.Context, id string) (*entity.Story, error) {
	return m.stories[id], nil
}

func (m *memStoryRepo) Update(_ context.Context, story *entity.Story) error {
	m.stories[story.ID] = story
	return nil
}

func (m *memStoryRepo) Delete(_ context.Context, id string) error {
	delete(m.stories, id)
	return nil
}

func (m *memStoryRepo) ListByUser(_ context.Context, userID string, p repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	var items []*entity.Story
	for _, s := range m.stories {
		if s.UserID == userID {
			items = append(items, s)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func (m *memStoryRepo) ListByStatus(_ context.Context, status entity.StoryStatus, p repository.Pagination) (*repository.PagedResult[*entity.Story], error) {
	var items []*entity.Story
	for _, s := range m.stories {
		if s.Status == status {
			items = append(items, s)
		}
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func (m *memStoryRepo) CountByUser(_ context.Context, userID string) (int64, error) {
	var n int64
	for _, s := range m.stories {
		if s.UserID == userID {
			n++
		}
	}
	return n, nil
}

type memContentRepo struct {
	contents map[string]*entity.StoryContent
	seq      int
}

func (m *memContentRepo) Create(_ context.Context, content *entity.StoryContent) error {
	m.seq++
	content.ID = fmt.Sprintf("content-%d", m.seq)
	for i := range content.Choices {
		content.Choices[i].ID = fmt.Sprintf("%s-choice-%d", content.ID, i+1)
		content.Choices[i].ContentID = content.ID
	}
	m.contents[content.ID] = content
	return nil
}

func (m *memContentRepo) GetByID(_ context.Context, id string) (*entity.StoryContent, error) {
	return m.contents[id], nil
}

func (m *memContentRepo) ListByStory(_ context.Context, storyID string) ([]*entity.StoryContent, error) {
	var out []*entity.StoryContent
	for _, c := range m.contents {
		if c.StoryID == storyID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *memContentRepo) GetLatestByStory(_ context.Context, storyID string) (*entity.StoryContent, error) {
	var latest *entity.StoryContent
	for _, c := range m.contents {
		if c.StoryID == storyID {
			latest = c
		}
	}
	return latest, nil
}

func (m *memContentRepo) Delete(_ context.Context, id string) error {
	delete(m.contents, id)
	return nil
}

type memChoiceRepo struct {
	contents *memContentRepo
}

func (m *memChoiceRepo) GetByID(_ context.Context, id string) (*entity.StoryChoice, error) {
	for _, c := range m.contents.contents {
		for i := range c.Choices {
			if c.Choices[i].ID == id {
				return &c.Choices[i], nil
			}
		}
	}
	return nil, nil
}

func (m *memChoiceRepo) ListByContent(_ context.Context, contentID string) ([]*entity.StoryChoice, error) {
	content, ok := m.contents.contents[contentID]
	if !ok {
		return nil, nil
	}
	out := make([]*entity.StoryChoice, 0, len(content.Choices))
	for i := range content.Choices {
		out = append(out, &content.Choices[i])
	}
	return out, nil
}

func (m *memChoiceRepo) MarkSelected(ctx context.Context, choiceID, nextContentID string) error {
	choice, err := m.GetByID(ctx, choiceID)
	if err != nil {
		return err
	}
	if choice == nil {
		return fmt.Errorf("choice %s not found", choiceID)
	}
	choice.IsSelected = true
	choice.NextContentID = &nextContentID
	return nil
}

type memUserRepo struct {
	users map[string]*entity.User
}

func (m *memUserRepo) Create(_ context.Context, user *entity.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	return m.users[id], nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (m *memUserRepo) Update(_ context.Context, user *entity.User) error {
	m.users[user.ID] = user
	return nil
}

func (m *memUserRepo) Delete(_ context.Context, id string) error {
	delete(m.users, id)
	return nil
}

func (m *memUserRepo) List(_ context.Context, p repository.Pagination) (*repository.PagedResult[*entity.User], error) {
	var items []*entity.User
	for _, u := range m.users {
		items = append(items, u)
	}
	return repository.NewPagedResult(items, int64(len(items)), p), nil
}

func (m *memUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := m.GetByEmail(ctx, email)
	return u != nil, err
}

// passthroughTx 直接执行回调的事务器
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fixture struct {
	svc      *Service
	stories  *memStoryRepo
	contents *memContentRepo
	choices  *memChoiceRepo
	users    *memUserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	stories := &memStoryRepo{stories: make(map[string]*entity.Story)}
	contents := &memContentRepo{contents: make(map[string]*entity.StoryContent)}
	choices := &memChoiceRepo{contents: contents}
	users := &memUserRepo{users: map[string]*entity.User{
		"u1": {ID: "u1", Name: "Reader", Email: "reader@example.com", IsActive: true},
	}}

	return &fixture{
		svc:      NewService(stories, contents, choices, users, passthroughTx{}),
		stories:  stories,
		contents: contents,
		choices:  choices,
		users:    users,
	}
}

func (f *fixture) createStory(t *testing.T) *entity.Story {
	t.Helper()
	story, err := f.svc.Create(context.Background(), CreateInput{
		UserID: "u1",
		Title:  "The Tower",
		Genre:  "fantasy",
	})
	require.NoError(t, err)
	return story
}

func successResult(choices int) *entity.GenerationResult {
	result := &entity.GenerationResult{
		Success:  true,
		Provider: "mocked",
		Model:    "mock-story-v1",
		Content:  "The hero climbs the final stair.",
	}
	for i := 0; i < choices; i++ {
		result.Choices = append(result.Choices, entity.Choice{
			Text: fmt.Sprintf("Option %d", i+1),
			Type: entity.ChoiceTypeAction,
		})
	}
	return result
}

// ---- Create / Get / Update / Delete ----

func TestCreate(t *testing.T) {
	f := newFixture(t)

	story := f.createStory(t)

	assert.NotEmpty(t, story.ID)
	assert.Equal(t, entity.StoryStatusDraft, story.Status)
	assert.Equal(t, "fantasy", story.Genre)
	require.NotNil(t, story.Settings)
	assert.Equal(t, "gpt-4", story.Settings.AIModel)
}

func TestCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, CreateInput{UserID: "u1"})
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)

	_, err = f.svc.Create(ctx, CreateInput{Title: "The Tower"})
	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
}

func TestCreate_UserNotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Create(context.Background(), CreateInput{UserID: "ghost", Title: "The Tower"})

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindNotFound, de.Kind)
	assert.Equal(t, errors.CodeUserNotFound, de.Code)
}

func TestGet_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Get(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, errors.CodeStoryNotFound, errors.ToDomainError(err).Code)
}

func TestUpdate(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	title := "The Tower, Revised"
	status := entity.StoryStatusCompleted
	updated, err := f.svc.Update(ctx, story.ID, UpdateInput{Title: &title, Status: &status})

	require.NoError(t, err)
	assert.Equal(t, "The Tower, Revised", updated.Title)
	assert.Equal(t, entity.StoryStatusCompleted, updated.Status)
	// 未指定的字段不变
	assert.Equal(t, "fantasy", updated.Genre)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)

	bad := entity.StoryStatus("published")
	_, err := f.svc.Update(context.Background(), story.ID, UpdateInput{Status: &bad})

	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
}

func TestUpdate_EmptyTitle(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)

	empty := ""
	_, err := f.svc.Update(context.Background(), story.ID, UpdateInput{Title: &empty})

	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	require.NoError(t, f.svc.Delete(ctx, story.ID))

	_, err := f.svc.Get(ctx, story.ID)
	require.Error(t, err)
	assert.Equal(t, errors.CodeStoryNotFound, errors.ToDomainError(err).Code)

	err = f.svc.Delete(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeStoryNotFound, errors.ToDomainError(err).Code)
}

// ---- AppendContent ----

func TestAppendContent(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	content, err := f.svc.AppendContent(ctx, AppendContentInput{
		StoryID: story.ID,
		Result:  successResult(2),
	})

	require.NoError(t, err)
	assert.NotEmpty(t, content.ID)
	assert.Equal(t, story.ID, content.StoryID)
	assert.Equal(t, "The hero climbs the final stair.", content.Content)
	assert.Equal(t, "mocked", content.Provider)
	require.Len(t, content.Choices, 2)
	assert.Equal(t, content.ID, content.Choices[0].ContentID)

	// 首次落稿后草稿转为进行中
	got, err := f.svc.Get(ctx, story.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.StoryStatusActive, got.Status)
}

func TestAppendContent_FailedResultRejected(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	for _, result := range []*entity.GenerationResult{
		nil,
		{Success: false, Error: "generation failed"},
	} {
		_, err := f.svc.AppendContent(ctx, AppendContentInput{StoryID: story.ID, Result: result})
		require.Error(t, err)
		de := errors.ToDomainError(err)
		assert.Equal(t, errors.KindBusinessRule, de.Kind)
		assert.Equal(t, errors.CodeGenerationFailed, de.Code)
	}
}

func TestAppendContent_StoryNotEditable(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	archived := entity.StoryStatusArchived
	_, err := f.svc.Update(ctx, story.ID, UpdateInput{Status: &archived})
	require.NoError(t, err)

	_, err = f.svc.AppendContent(ctx, AppendContentInput{StoryID: story.ID, Result: successResult(0)})

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.CodeStoryStatusInvalid, de.Code)
	assert.Equal(t, "archived", de.Details["status"])
}

func TestAppendContent_CombinedBreakdownMediaURLs(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)

	result := successResult(0)
	result.Breakdown = &entity.CombinedBreakdown{
		TextGeneration: &entity.GenerationResult{Success: true},
		ImageGeneration: &entity.GenerationResult{
			Success:  true,
			MediaURL: "https://images.example.com/mocked/1024x1024.png",
		},
		AudioGeneration: &entity.GenerationResult{
			Success: false,
			Error:   "generation timed out",
		},
	}

	content, err := f.svc.AppendContent(context.Background(), AppendContentInput{
		StoryID: story.ID,
		Result:  result,
	})

	require.NoError(t, err)
	assert.Equal(t, "https://images.example.com/mocked/1024x1024.png", content.ImageURL)
	// 失败的音频子生成不落地址
	assert.Empty(t, content.AudioURL)
}

// ---- ListContents / GetContent ----

func TestListContents(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	_, err := f.svc.AppendContent(ctx, AppendContentInput{StoryID: story.ID, Result: successResult(0)})
	require.NoError(t, err)
	_, err = f.svc.AppendContent(ctx, AppendContentInput{StoryID: story.ID, Result: successResult(0)})
	require.NoError(t, err)

	contents, err := f.svc.ListContents(ctx, story.ID)
	require.NoError(t, err)
	assert.Len(t, contents, 2)

	_, err = f.svc.ListContents(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeStoryNotFound, errors.ToDomainError(err).Code)
}

func TestGetContent_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.GetContent(context.Background(), "missing")

	require.Error(t, err)
	assert.Equal(t, errors.CodeContentNotFound, errors.ToDomainError(err).Code)
}

// ---- SelectChoice ----

func TestSelectChoice(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	parent, err := f.svc.AppendContent(ctx, AppendContentInput{StoryID: story.ID, Result: successResult(2)})
	require.NoError(t, err)
	choiceID := parent.Choices[0].ID

	next := &entity.StoryContent{
		StoryID:         story.ID,
		ParentContentID: &parent.ID,
		Content:         "The chosen path leads onward.",
	}

	chosen, err := f.svc.SelectChoice(ctx, choiceID, next)

	require.NoError(t, err)
	assert.True(t, chosen.IsSelected)
	require.NotNil(t, chosen.NextContentID)
	assert.Equal(t, next.ID, *chosen.NextContentID)
	assert.NotEmpty(t, next.ID)
}

func TestSelectChoice_AlreadyChosen(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	parent, err := f.svc.AppendContent(ctx, AppendContentInput{StoryID: story.ID, Result: successResult(1)})
	require.NoError(t, err)
	choiceID := parent.Choices[0].ID

	_, err = f.svc.SelectChoice(ctx, choiceID, &entity.StoryContent{StoryID: story.ID, Content: "first"})
	require.NoError(t, err)

	_, err = f.svc.SelectChoice(ctx, choiceID, &entity.StoryContent{StoryID: story.ID, Content: "second"})

	require.Error(t, err)
	de := errors.ToDomainError(err)
	assert.Equal(t, errors.KindConflict, de.Kind)
	assert.Equal(t, errors.CodeChoiceAlreadyChosen, de.Code)
}

func TestSelectChoice_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SelectChoice(context.Background(), "missing", &entity.StoryContent{Content: "x"})

	require.Error(t, err)
	assert.Equal(t, errors.CodeChoiceNotFound, errors.ToDomainError(err).Code)
}

func TestSelectChoice_NilNext(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.SelectChoice(context.Background(), "c1", nil)

	require.Error(t, err)
	assert.Equal(t, errors.KindValidation, errors.ToDomainError(err).Kind)
}

func TestGetChoice(t *testing.T) {
	f := newFixture(t)
	story := f.createStory(t)
	ctx := context.Background()

	parent, err := f.svc.AppendContent(ctx, AppendContentInput{StoryID: story.ID, Result: successResult(1)})
	require.NoError(t, err)

	choice, err := f.svc.GetChoice(ctx, parent.Choices[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Option 1", choice.Text)

	_, err = f.svc.GetChoice(ctx, "missing")
	require.Error(t, err)
	assert.Equal(t, errors.CodeChoiceNotFound, errors.ToDomainError(err).Code)
}
