package services

import (
	"context"
	"testing"
	"time"

	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/realtime"
	"github.com/rapidpost/backend/internal/repositories"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users map[uint]*models.User
}

func (f *fakeUserRepo) CreateUser(user *models.User) error { return nil }
func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	if user, ok := f.users[id]; ok {
		return user, nil
	}
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetUserByUsername(username string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) GetUserByEmail(email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}
func (f *fakeUserRepo) UpdateUser(user *models.User) error          { return nil }
func (f *fakeUserRepo) IncrementBlogCount(id uint) error            { return nil }
func (f *fakeUserRepo) SearchUsers(q string) ([]models.User, error) { return nil, nil }

type fakePrefRepo struct {
	prefs map[uint]*models.NotificationPreferences
}

func (f *fakePrefRepo) GetPreferences(userID uint) (*models.NotificationPreferences, error) {
	return f.prefs[userID], nil
}
func (f *fakePrefRepo) UpsertPreferences(prefs *models.NotificationPreferences) error {
	f.prefs[prefs.UserID] = prefs
	return nil
}

type fakeNotificationRepo struct {
	created     []models.Notification
	stored      []models.Notification
	total       int64
	unread      int64
	markedRead  []uint
	markedAll   bool
	deleted     []uint
	nextID      uint
	markReadFor uint
}

func (f *fakeNotificationRepo) CreateNotification(n *models.Notification) error {
	f.nextID++
	n.ID = f.nextID
	f.created = append(f.created, *n)
	return nil
}
func (f *fakeNotificationRepo) GetByRecipientID(recipientID uint, page, limit int) ([]models.Notification, int64, error) {
	return f.stored, f.total, nil
}
func (f *fakeNotificationRepo) GetUnreadCount(recipientID uint) (int64, error) {
	return f.unread, nil
}
func (f *fakeNotificationRepo) MarkAsRead(recipientID uint, ids []uint) error {
	f.markReadFor = recipientID
	f.markedRead = append(f.markedRead, ids...)
	return nil
}
func (f *fakeNotificationRepo) MarkAllAsRead(recipientID uint) error {
	f.markedAll = true
	return nil
}
func (f *fakeNotificationRepo) DeleteNotifications(recipientID uint, ids []uint) error {
	f.deleted = append(f.deleted, ids...)
	return nil
}
func (f *fakeNotificationRepo) DeleteReadOlderThan(cutoff time.Time) (int64, error) { return 0, nil }
func (f *fakeNotificationRepo) DeleteOlderThan(cutoff time.Time) (int64, error)     { return 0, nil }
func (f *fakeNotificationRepo) GetStats() (*repositories.NotificationStats, error) {
	return &repositories.NotificationStats{}, nil
}

// stubBlogRepo satisfies BlogRepository for enrichment; only title lookup
// matters to these tests.
type stubBlogRepo struct {
	titles map[string]string
}

func (s *stubBlogRepo) CreateBlog(ctx context.Context, blog *models.Blog) error { return nil }
func (s *stubBlogRepo) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	return nil, mongo.ErrNoDocuments
}
func (s *stubBlogRepo) GetBlogs(ctx context.Context, query, category string) ([]models.Blog, error) {
	return nil, nil
}
func (s *stubBlogRepo) GetBlogsByAuthorID(ctx context.Context, authorID uint) ([]models.Blog, error) {
	return nil, nil
}
func (s *stubBlogRepo) GetTitlesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	if s.titles == nil {
		return map[string]string{}, nil
	}
	return s.titles, nil
}
func (s *stubBlogRepo) UpdateBlog(ctx context.Context, id string, blog *models.Blog) error {
	return nil
}
func (s *stubBlogRepo) DeleteBlog(ctx context.Context, id string) error { return nil }
func (s *stubBlogRepo) IncrementViews(ctx context.Context, id string) (*models.Blog, error) {
	return nil, mongo.ErrNoDocuments
}
func (s *stubBlogRepo) AddLike(ctx context.Context, id string, userID uint) error    { return nil }
func (s *stubBlogRepo) RemoveLike(ctx context.Context, id string, userID uint) error { return nil }
func (s *stubBlogRepo) GetCategories(ctx context.Context) ([]string, error)          { return nil, nil }

type emittedEvent struct {
	userID uint
	event  string
	data   interface{}
}

type fakeEmitter struct {
	err    error
	events []emittedEvent
}

func (f *fakeEmitter) EmitToUser(userID uint, event string, data interface{}) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, emittedEvent{userID: userID, event: event, data: data})
	return nil
}

type pushCall struct {
	userID       uint
	notification *models.Notification
}

type fakePush struct {
	calls []pushCall
}

func (f *fakePush) SendPushNotification(userID uint, n *models.Notification) {
	f.calls = append(f.calls, pushCall{userID: userID, notification: n})
}

func newTestService(users *fakeUserRepo, prefs *fakePrefRepo, notifs *fakeNotificationRepo, emitter *fakeEmitter, push *fakePush) *NotificationService {
	return NewNotificationService(notifs, users, prefs, &stubBlogRepo{}, push, emitter)
}

func defaultFixtures() (*fakeUserRepo, *fakePrefRepo, *fakeNotificationRepo, *fakeEmitter, *fakePush) {
	users := &fakeUserRepo{users: map[uint]*models.User{
		1: {ID: 1, Name: "Alice", Username: "alice"},
		2: {ID: 2, Name: "Bob", Username: "bob"},
	}}
	prefs := &fakePrefRepo{prefs: map[uint]*models.NotificationPreferences{}}
	return users, prefs, &fakeNotificationRepo{}, &fakeEmitter{}, &fakePush{}
}

func allEnabledPrefs(userID uint) *models.NotificationPreferences {
	return &models.NotificationPreferences{
		UserID: userID, Likes: true, Comments: true, Follows: true, NewPosts: true,
	}
}

func TestCheckUserPreferences(t *testing.T) {
	svc := &NotificationService{}

	commentsOff := allEnabledPrefs(2)
	commentsOff.Comments = false
	likesOff := allEnabledPrefs(2)
	likesOff.Likes = false

	tests := []struct {
		name             string
		prefs            *models.NotificationPreferences
		notificationType string
		want             bool
	}{
		{"no preferences row is fail-open", nil, models.NotificationTypeComment, true},
		{"toggle false suppresses", commentsOff, models.NotificationTypeComment, false},
		{"toggle true allows", allEnabledPrefs(2), models.NotificationTypeComment, true},
		{"other toggles do not leak", likesOff, models.NotificationTypeFollow, true},
		{"unmapped type allows", likesOff, "something_else", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, svc.CheckUserPreferences(tt.prefs, tt.notificationType))
		})
	}
}

func TestCreateNotification(t *testing.T) {
	t.Run("fail-open default creates the record", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		svc := newTestService(users, prefs, notifs, emitter, push)

		got, err := svc.CreateNotification(&models.CreateNotificationInput{
			Recipient: 2, Sender: 1,
			Type:    models.NotificationTypeLike,
			Message: "Alice liked your blog post \"Go\"",
		})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Len(t, notifs.created, 1)
		assert.Equal(t, uint(2), got.RecipientID)
		assert.Equal(t, "Alice", got.Sender.Name)
		assert.False(t, got.IsRead)
	})

	t.Run("disabled preference suppresses with zero writes", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		stored := allEnabledPrefs(2)
		stored.Follows = false
		prefs.prefs[2] = stored
		svc := newTestService(users, prefs, notifs, emitter, push)

		got, err := svc.CreateNotification(&models.CreateNotificationInput{
			Recipient: 2, Sender: 1,
			Type:    models.NotificationTypeFollow,
			Message: "Alice started following you",
		})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Empty(t, notifs.created)
	})

	t.Run("missing recipient suppresses silently", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		svc := newTestService(users, prefs, notifs, emitter, push)

		got, err := svc.CreateNotification(&models.CreateNotificationInput{
			Recipient: 99, Sender: 1,
			Type:    models.NotificationTypeLike,
			Message: "whatever",
		})
		require.NoError(t, err)
		assert.Nil(t, got)
		assert.Empty(t, notifs.created)
	})

	t.Run("unknown type is an error", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		svc := newTestService(users, prefs, notifs, emitter, push)

		_, err := svc.CreateNotification(&models.CreateNotificationInput{
			Recipient: 2, Sender: 1,
			Type:    "mention",
			Message: "nope",
		})
		assert.Error(t, err)
		assert.Empty(t, notifs.created)
	})

	t.Run("missing required fields is an error", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		svc := newTestService(users, prefs, notifs, emitter, push)

		_, err := svc.CreateNotification(&models.CreateNotificationInput{
			Recipient: 2,
			Type:      models.NotificationTypeLike,
		})
		assert.Error(t, err)
	})
}

func TestSendRealTimeNotification(t *testing.T) {
	t.Run("socket then push when the hub is live", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		svc := newTestService(users, prefs, notifs, emitter, push)
		n := &models.EnrichedNotification{Notification: models.Notification{ID: 7, RecipientID: 2}}

		svc.SendRealTimeNotification(2, n)

		require.Len(t, emitter.events, 1)
		assert.Equal(t, "newNotification", emitter.events[0].event)
		assert.Equal(t, uint(2), emitter.events[0].userID)
		require.Len(t, push.calls, 1)
		assert.Equal(t, uint(7), push.calls[0].notification.ID)
	})

	t.Run("hub not ready still pushes", func(t *testing.T) {
		users, prefs, notifs, _, push := defaultFixtures()
		emitter := &fakeEmitter{err: realtime.ErrHubNotReady}
		svc := newTestService(users, prefs, notifs, emitter, push)

		svc.SendRealTimeNotification(2, &models.EnrichedNotification{})

		assert.Len(t, push.calls, 1)
	})

	t.Run("nil notification is a no-op", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		svc := newTestService(users, prefs, notifs, emitter, push)

		svc.SendRealTimeNotification(2, nil)

		assert.Empty(t, emitter.events)
		assert.Empty(t, push.calls)
	})
}

func TestGetUserNotifications(t *testing.T) {
	users, prefs, notifs, emitter, push := defaultFixtures()
	notifs.stored = []models.Notification{
		{ID: 3, RecipientID: 2, SenderID: 1, Type: models.NotificationTypeLike},
		{ID: 2, RecipientID: 2, SenderID: 1, Type: models.NotificationTypeComment},
	}
	notifs.total = 25
	svc := newTestService(users, prefs, notifs, emitter, push)

	page, err := svc.GetUserNotifications(context.Background(), 2, 2, 20)
	require.NoError(t, err)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Equal(t, 2, page.TotalPages)
	assert.Equal(t, int64(25), page.Total)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, "Alice", page.Notifications[0].Sender.Name)
}

func TestMarkAsReadScopedToRecipient(t *testing.T) {
	users, prefs, notifs, emitter, push := defaultFixtures()
	svc := newTestService(users, prefs, notifs, emitter, push)

	require.NoError(t, svc.MarkAsRead(2, []uint{4, 5}))
	assert.Equal(t, uint(2), notifs.markReadFor)
	assert.Equal(t, []uint{4, 5}, notifs.markedRead)
}

func TestBroadcastReadState(t *testing.T) {
	t.Run("carries the recomputed count and explicit read count", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		notifs.unread = 3
		svc := newTestService(users, prefs, notifs, emitter, push)

		svc.BroadcastReadState(2, 2)

		require.Len(t, emitter.events, 1)
		assert.Equal(t, "notifications_read", emitter.events[0].event)
		payload, ok := emitter.events[0].data.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, int64(3), payload["count"])
		assert.Equal(t, 2, payload["readCount"])
	})

	t.Run("omits readCount when unknown", func(t *testing.T) {
		users, prefs, notifs, emitter, push := defaultFixtures()
		svc := newTestService(users, prefs, notifs, emitter, push)

		svc.BroadcastReadState(2, -1)

		require.Len(t, emitter.events, 1)
		payload := emitter.events[0].data.(map[string]interface{})
		_, present := payload["readCount"]
		assert.False(t, present)
	})
}
