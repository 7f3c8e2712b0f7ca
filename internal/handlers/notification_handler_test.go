package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rapidpost/backend/internal/models"
	"github.com/rapidpost/backend/internal/repositories"
	"github.com/rapidpost/backend/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

type fakeNotificationRepo struct {
	stored      []models.Notification
	total       int64
	unread      int64
	markReadFor uint
	markedRead  []uint
	markedAll   bool
	deleted     []uint
}

func (f *fakeNotificationRepo) CreateNotification(n *models.Notification) error { return nil }
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
	f.unread = 0
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

type fakeUserRepo struct{}

func (f *fakeUserRepo) CreateUser(user *models.User) error { return nil }
func (f *fakeUserRepo) GetUserByID(id uint) (*models.User, error) {
	return &models.User{ID: id, Name: "Alice", Username: "alice"}, nil
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
	prefs    map[uint]*models.NotificationPreferences
	upserted *models.NotificationPreferences
}

func (f *fakePrefRepo) GetPreferences(userID uint) (*models.NotificationPreferences, error) {
	return f.prefs[userID], nil
}
func (f *fakePrefRepo) UpsertPreferences(prefs *models.NotificationPreferences) error {
	f.upserted = prefs
	return nil
}

type fakeBlogRepo struct{}

func (f *fakeBlogRepo) CreateBlog(ctx context.Context, blog *models.Blog) error { return nil }
func (f *fakeBlogRepo) GetBlogByID(ctx context.Context, id string) (*models.Blog, error) {
	return nil, mongo.ErrNoDocuments
}
func (f *fakeBlogRepo) GetBlogs(ctx context.Context, query, category string) ([]models.Blog, error) {
	return nil, nil
}
func (f *fakeBlogRepo) GetBlogsByAuthorID(ctx context.Context, authorID uint) ([]models.Blog, error) {
	return nil, nil
}
func (f *fakeBlogRepo) GetTitlesByIDs(ctx context.Context, ids []string) (map[string]string, error) {
	return map[string]string{}, nil
}
func (f *fakeBlogRepo) UpdateBlog(ctx context.Context, id string, blog *models.Blog) error {
	return nil
}
func (f *fakeBlogRepo) DeleteBlog(ctx context.Context, id string) error { return nil }
func (f *fakeBlogRepo) IncrementViews(ctx context.Context, id string) (*models.Blog, error) {
	return nil, mongo.ErrNoDocuments
}
func (f *fakeBlogRepo) AddLike(ctx context.Context, id string, userID uint) error    { return nil }
func (f *fakeBlogRepo) RemoveLike(ctx context.Context, id string, userID uint) error { return nil }
func (f *fakeBlogRepo) GetCategories(ctx context.Context) ([]string, error)          { return nil, nil }

type emittedEvent struct {
	userID uint
	event  string
	data   interface{}
}

type fakeEmitter struct {
	events []emittedEvent
}

func (f *fakeEmitter) EmitToUser(userID uint, event string, data interface{}) error {
	f.events = append(f.events, emittedEvent{userID: userID, event: event, data: data})
	return nil
}

type fakePush struct{}

func (f *fakePush) SendPushNotification(userID uint, n *models.Notification) {}

func newNotificationTestHandler(notifs *fakeNotificationRepo, emitter *fakeEmitter) *NotificationHandler {
	svc := services.NewNotificationService(
		notifs,
		&fakeUserRepo{},
		&fakePrefRepo{prefs: map[uint]*models.NotificationPreferences{}},
		&fakeBlogRepo{},
		&fakePush{},
		emitter,
	)
	return NewNotificationHandler(svc)
}

func newAuthedContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user", &models.JwtCustomClaims{UserID: 2, Username: "bob"})
	return c, rec
}

func TestMarkAsRead(t *testing.T) {
	t.Run("rejects a payload without an id array", func(t *testing.T) {
		notifs := &fakeNotificationRepo{}
		h := newNotificationTestHandler(notifs, &fakeEmitter{})
		c, _ := newAuthedContext(t, http.MethodPost, "/notifications/mark-read", `{}`)

		err := h.MarkAsRead(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
		assert.Empty(t, notifs.markedRead, "no store mutation on a bad request")
	})

	t.Run("rejects a non-array id list", func(t *testing.T) {
		h := newNotificationTestHandler(&fakeNotificationRepo{}, &fakeEmitter{})
		c, _ := newAuthedContext(t, http.MethodPost, "/notifications/mark-read", `{"notificationIds":"7"}`)

		err := h.MarkAsRead(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("marks ids for the caller and rebroadcasts the count", func(t *testing.T) {
		notifs := &fakeNotificationRepo{unread: 1}
		emitter := &fakeEmitter{}
		h := newNotificationTestHandler(notifs, emitter)
		c, rec := newAuthedContext(t, http.MethodPost, "/notifications/mark-read", `{"notificationIds":[4,5]}`)

		require.NoError(t, h.MarkAsRead(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, uint(2), notifs.markReadFor, "scoped to the caller")
		assert.Equal(t, []uint{4, 5}, notifs.markedRead)
		require.Len(t, emitter.events, 1)
		assert.Equal(t, "notifications_read", emitter.events[0].event)
		payload := emitter.events[0].data.(map[string]interface{})
		assert.Equal(t, int64(1), payload["count"])
		assert.Equal(t, 2, payload["readCount"])
	})
}

func TestMarkAllAsRead(t *testing.T) {
	notifs := &fakeNotificationRepo{unread: 5}
	emitter := &fakeEmitter{}
	h := newNotificationTestHandler(notifs, emitter)
	c, rec := newAuthedContext(t, http.MethodPost, "/notifications/mark-all-read", "")

	require.NoError(t, h.MarkAllAsRead(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, notifs.markedAll)
	require.Len(t, emitter.events, 1)
	payload := emitter.events[0].data.(map[string]interface{})
	assert.Equal(t, int64(0), payload["count"], "badge converges to zero")
	_, present := payload["readCount"]
	assert.False(t, present)
}

func TestDeleteNotification(t *testing.T) {
	t.Run("rejects a non-numeric id", func(t *testing.T) {
		h := newNotificationTestHandler(&fakeNotificationRepo{}, &fakeEmitter{})
		c, _ := newAuthedContext(t, http.MethodDelete, "/notifications/abc", "")
		c.SetParamNames("id")
		c.SetParamValues("abc")

		err := h.DeleteNotification(c)

		var httpErr *echo.HTTPError
		require.ErrorAs(t, err, &httpErr)
		assert.Equal(t, http.StatusBadRequest, httpErr.Code)
	})

	t.Run("deletes and rebroadcasts", func(t *testing.T) {
		notifs := &fakeNotificationRepo{}
		emitter := &fakeEmitter{}
		h := newNotificationTestHandler(notifs, emitter)
		c, rec := newAuthedContext(t, http.MethodDelete, "/notifications/9", "")
		c.SetParamNames("id")
		c.SetParamValues("9")

		require.NoError(t, h.DeleteNotification(c))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []uint{9}, notifs.deleted)
		assert.Len(t, emitter.events, 1)
	})
}

func TestGetUnreadCount(t *testing.T) {
	notifs := &fakeNotificationRepo{unread: 7}
	h := newNotificationTestHandler(notifs, &fakeEmitter{})
	c, rec := newAuthedContext(t, http.MethodGet, "/notifications/unread-count", "")

	require.NoError(t, h.GetUnreadCount(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(7), body["count"])
}

func TestGetNotificationsPagination(t *testing.T) {
	notifs := &fakeNotificationRepo{
		stored: []models.Notification{{ID: 1, RecipientID: 2, SenderID: 1, Type: models.NotificationTypeLike}},
		total:  25,
	}
	h := newNotificationTestHandler(notifs, &fakeEmitter{})
	c, rec := newAuthedContext(t, http.MethodGet, "/notifications?page=2&limit=20", "")

	require.NoError(t, h.GetNotifications(c))

	assert.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Notifications []models.EnrichedNotification `json:"notifications"`
		Pagination    struct {
			CurrentPage int   `json:"currentPage"`
			TotalPages  int   `json:"totalPages"`
			Total       int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 2, body.Pagination.CurrentPage)
	assert.Equal(t, 2, body.Pagination.TotalPages)
	assert.Equal(t, int64(25), body.Pagination.Total)
	require.Len(t, body.Notifications, 1)
	assert.Equal(t, "Alice", body.Notifications[0].Sender.Name)
}

func TestGetNotificationsRequiresAuth(t *testing.T) {
	h := newNotificationTestHandler(&fakeNotificationRepo{}, &fakeEmitter{})
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	c := e.NewContext(req, httptest.NewRecorder())

	err := h.GetNotifications(c)

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}
