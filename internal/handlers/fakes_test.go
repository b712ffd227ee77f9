package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/01moynul/storefront-golang/internal/auth"
	"github.com/01moynul/storefront-golang/internal/database"
	"github.com/01moynul/storefront-golang/internal/middleware"
	"github.com/01moynul/storefront-golang/internal/models"
	"github.com/01moynul/storefront-golang/internal/notify"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// --- In-memory store ---

type fakeStore struct {
	mu           sync.Mutex
	clock        time.Time
	items        map[models.CatalogKind]map[string]*models.CatalogItem
	categories   map[string]*models.Category
	comments     []models.Comment
	replies      []models.Reply
	itemLikes    map[string]map[string]bool
	commentLikes map[string]map[string]bool
	orders       []*models.Order
	users        map[string]*models.User

	createOrderCalls int
	failCreateOrder  error
	failWrite        error // returned by catalog and category writes
}

func newFakeStore() *fakeStore {
	s := &fakeStore{
		clock:        time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		items:        map[models.CatalogKind]map[string]*models.CatalogItem{},
		categories:   map[string]*models.Category{},
		itemLikes:    map[string]map[string]bool{},
		commentLikes: map[string]map[string]bool{},
		users:        map[string]*models.User{},
	}
	for _, k := range models.CatalogKinds {
		s.items[k] = map[string]*models.CatalogItem{}
	}
	return s
}

func (s *fakeStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

func copyItem(item *models.CatalogItem) *models.CatalogItem {
	cp := *item
	cp.ImageURLs = append([]string{}, item.ImageURLs...)
	if item.CategoryID != nil {
		id := *item.CategoryID
		cp.CategoryID = &id
	}
	return &cp
}

func (s *fakeStore) ListCatalogItems(ctx context.Context, kind models.CatalogKind, filter models.CatalogFilter) ([]*models.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.CatalogItem{}
	for _, item := range s.items[kind] {
		if filter.CategoryID != "" && (item.CategoryID == nil || *item.CategoryID != filter.CategoryID) {
			continue
		}
		out = append(out, copyItem(item))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *fakeStore) GetCatalogItem(ctx context.Context, kind models.CatalogKind, id string) (*models.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[kind][id]
	if !ok {
		return nil, database.ErrNotFound
	}
	return copyItem(item), nil
}

func (s *fakeStore) CreateCatalogItem(ctx context.Context, item *models.CatalogItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	now := s.tick()
	item.CreatedAt, item.UpdatedAt = now, now
	s.items[item.Kind][item.ID] = copyItem(item)
	return nil
}

func (s *fakeStore) UpdateCatalogItem(ctx context.Context, kind models.CatalogKind, id string, p models.CatalogPatch) (*models.CatalogItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return nil, s.failWrite
	}
	item, ok := s.items[kind][id]
	if !ok {
		return nil, database.ErrNotFound
	}
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Description != nil {
		item.Description = *p.Description
	}
	if p.Price != nil {
		item.Price = *p.Price
	}
	if p.ImageURL != nil {
		item.ImageURL = *p.ImageURL
	}
	if p.ImageURLs != nil {
		item.ImageURLs = append([]string{}, *p.ImageURLs...)
	}
	if p.CategoryID != nil && kind.HasCategory() {
		if *p.CategoryID == "" {
			item.CategoryID = nil
		} else {
			id := *p.CategoryID
			item.CategoryID = &id
		}
	}
	item.UpdatedAt = s.tick()
	return copyItem(item), nil
}

func (s *fakeStore) DeleteCatalogItem(ctx context.Context, kind models.CatalogKind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[kind][id]; !ok {
		return database.ErrNotFound
	}
	delete(s.items[kind], id)
	return nil
}

func (s *fakeStore) productCount(categoryID string) int {
	n := 0
	for _, item := range s.items[models.KindProduct] {
		if item.CategoryID != nil && *item.CategoryID == categoryID {
			n++
		}
	}
	return n
}

func (s *fakeStore) ListCategories(ctx context.Context, filter models.CategoryFilter) ([]*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Category{}
	for _, cat := range s.categories {
		if filter.Type != "" && string(cat.Type) != filter.Type {
			continue
		}
		if filter.Priority != "" && cat.Priority != filter.Priority {
			continue
		}
		cp := *cat
		cp.ProductCount = s.productCount(cat.ID)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *fakeStore) GetCategory(ctx context.Context, id string) (*models.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cat, ok := s.categories[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *cat
	cp.ProductCount = s.productCount(id)
	return &cp, nil
}

func (s *fakeStore) CategoryNameTaken(ctx context.Context, name string, kind models.CatalogKind, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cat := range s.categories {
		if cat.Name == name && cat.Type == kind && cat.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateCategory(ctx context.Context, cat *models.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failWrite != nil {
		return s.failWrite
	}
	for _, other := range s.categories {
		if other.Name == cat.Name && other.Type == cat.Type {
			return database.ErrDuplicate
		}
	}
	now := s.tick()
	cat.CreatedAt, cat.UpdatedAt = now, now
	cp := *cat
	s.categories[cat.ID] = &cp
	return nil
}

func (s *fakeStore) UpdateCategory(ctx context.Context, id string, p models.CategoryPatch) (*models.Category, error) {
	s.mu.Lock()
	if s.failWrite != nil {
		s.mu.Unlock()
		return nil, s.failWrite
	}
	cat, ok := s.categories[id]
	if !ok {
		s.mu.Unlock()
		return nil, database.ErrNotFound
	}
	if p.Name != nil {
		cat.Name = *p.Name
	}
	if p.Slug != nil {
		cat.Slug = *p.Slug
	}
	if p.Type != nil {
		cat.Type = *p.Type
	}
	if p.Description != nil {
		cat.Description = *p.Description
	}
	if p.ImageURL != nil {
		cat.ImageURL = *p.ImageURL
	}
	if p.Priority != nil {
		cat.Priority = *p.Priority
	}
	cat.UpdatedAt = s.tick()
	s.mu.Unlock()
	return s.GetCategory(ctx, id)
}

func (s *fakeStore) DeleteCategory(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.categories[id]; !ok {
		return database.ErrNotFound
	}
	delete(s.categories, id)
	for _, item := range s.items[models.KindProduct] {
		if item.CategoryID != nil && *item.CategoryID == id {
			item.CategoryID = nil
		}
	}
	return nil
}

func (s *fakeStore) author(userID string) *models.Author {
	if u, ok := s.users[userID]; ok {
		return u.Author()
	}
	return &models.Author{ID: userID}
}

func (s *fakeStore) CreateComment(ctx context.Context, c *models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	c.CreatedAt, c.UpdatedAt = now, now
	s.comments = append(s.comments, *c)
	return nil
}

func (s *fakeStore) ListComments(ctx context.Context, productID, viewerID string) ([]models.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Comment{}
	for i := len(s.comments) - 1; i >= 0; i-- {
		c := s.comments[i]
		if c.ProductID != productID {
			continue
		}
		likes := s.commentLikes["comment:"+c.ID]
		c.User = s.author(c.UserID)
		c.LikeCount = len(likes)
		c.IsLiked = likes[viewerID]
		for _, r := range s.replies {
			if r.CommentID == c.ID {
				c.ReplyCount++
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *fakeStore) CommentExists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.comments {
		if c.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) CreateReply(ctx context.Context, r *models.Reply) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.tick()
	r.CreatedAt, r.UpdatedAt = now, now
	s.replies = append(s.replies, *r)
	return nil
}

func (s *fakeStore) ListReplies(ctx context.Context, commentID, viewerID string) ([]models.Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reply{}
	for _, r := range s.replies {
		if r.CommentID != commentID {
			continue
		}
		likes := s.commentLikes["reply:"+r.ID]
		r.User = s.author(r.UserID)
		r.LikeCount = len(likes)
		r.IsLiked = likes[viewerID]
		out = append(out, r)
	}
	return out, nil
}

func (s *fakeStore) ReplyExists(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.replies {
		if r.ID == id {
			return true, nil
		}
	}
	return false, nil
}

func toggle(set map[string]map[string]bool, key, userID string) models.LikeState {
	if set[key] == nil {
		set[key] = map[string]bool{}
	}
	if set[key][userID] {
		delete(set[key], userID)
	} else {
		set[key][userID] = true
	}
	return models.LikeState{Liked: set[key][userID], LikeCount: len(set[key])}
}

func (s *fakeStore) ToggleItemLike(ctx context.Context, productID, userID string) (models.LikeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.itemLikes, productID, userID), nil
}

func (s *fakeStore) ItemLikeState(ctx context.Context, productID, userID string) (models.LikeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	likes := s.itemLikes[productID]
	return models.LikeState{Liked: likes[userID], LikeCount: len(likes)}, nil
}

func (s *fakeStore) ToggleCommentLike(ctx context.Context, target models.CommentLikeTarget, targetID, userID string) (models.LikeState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return toggle(s.commentLikes, string(target)+":"+targetID, userID), nil
}

func (s *fakeStore) CreateOrder(ctx context.Context, o *models.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createOrderCalls++
	if s.failCreateOrder != nil {
		return s.failCreateOrder
	}
	now := s.tick()
	o.CreatedAt, o.UpdatedAt = now, now
	for i := range o.Items {
		o.Items[i].ID = o.ID + "-item"
		o.Items[i].OrderID = o.ID
	}
	cp := *o
	s.orders = append(s.orders, &cp)
	return nil
}

func (s *fakeStore) ListOrders(ctx context.Context, filter models.OrderFilter) ([]*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Order{}
	for i := len(s.orders) - 1; i >= 0; i-- {
		o := s.orders[i]
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.Source != "" && o.Source != filter.Source {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeStore) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			cp := *o
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) UpdateOrder(ctx context.Context, id string, p models.OrderPatch) (*models.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, o := range s.orders {
		if o.ID == id {
			if p.Status != nil {
				o.Status = *p.Status
			}
			if p.Notes != nil {
				o.Notes = *p.Notes
			}
			cp := *o
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) DeleteOrder(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, o := range s.orders {
		if o.ID == id {
			s.orders = append(s.orders[:i], s.orders[i+1:]...)
			return nil
		}
	}
	return database.ErrNotFound
}

func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, database.ErrNotFound
}

func (s *fakeStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, database.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeStore) CreateUser(ctx context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.users {
		if other.Email == u.Email {
			return database.ErrDuplicate
		}
	}
	cp := *u
	s.users[u.ID] = &cp
	return nil
}

func (s *fakeStore) DashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := &models.DashboardStats{
		Products:   len(s.items[models.KindProduct]),
		Gifts:      len(s.items[models.KindGift]),
		Groceries:  len(s.items[models.KindGrocery]),
		Categories: len(s.categories),
		Orders:     len(s.orders),
		Users:      len(s.users),
	}
	for _, o := range s.orders {
		if o.Status == models.OrderStatusPending {
			stats.PendingOrders++
		}
		if o.Status != models.OrderStatusCancelled {
			stats.Revenue = stats.Revenue.Add(o.Total)
		}
	}
	return stats, nil
}

// --- Storage & notifier fakes ---

type memStorage struct {
	mu      sync.Mutex
	files   map[string][]byte
	deleted []string
}

func (m *memStorage) Save(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	url := "https://cdn.test/" + name
	m.files[url] = raw
	return url, nil
}

func (m *memStorage) Delete(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, url)
	delete(m.files, url)
	return nil
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Message
	err  error
}

func (n *recordingNotifier) Send(ctx context.Context, msg notify.Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

// --- Test environment ---

type testEnv struct {
	h        *Handlers
	store    *fakeStore
	storage  *memStorage
	notifier *recordingNotifier
	router   *gin.Engine
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store:    newFakeStore(),
		storage:  &memStorage{files: map[string][]byte{}},
		notifier: &recordingNotifier{},
	}
	env.h = &Handlers{
		Store:    env.store,
		Storage:  env.storage,
		Notifier: env.notifier,
		Tokens:   auth.NewTokenManager("test-secret"),
		Options: Options{
			PlaceholderImageURL: "/placeholder.png",
			AdminEmail:          "admin@shop.test",
			NotifyTimeout:       time.Second,
		},
	}

	r := gin.New()
	api := r.Group("/api")
	for _, kind := range models.CatalogKinds {
		g := api.Group("/"+kind.Path(), WithKind(kind))
		g.GET("", env.h.ListCatalogItems)
		g.POST("", env.h.CreateCatalogItem)
		g.GET("/:id", env.h.GetCatalogItem)
		g.PUT("/:id", env.h.UpdateCatalogItem)
		g.DELETE("/:id", env.h.DeleteCatalogItem)
		g.GET("/:id/comments", env.h.ListComments)
		g.POST("/:id/comments", env.h.CreateComment)
		g.GET("/:id/likes", env.h.GetItemLikes)
		g.POST("/:id/likes", env.h.ToggleItemLike)
	}
	api.POST("/comments/:id/likes", env.h.ToggleCommentLike)
	api.GET("/comments/:id/replies", env.h.ListReplies)
	api.POST("/comments/:id/replies", env.h.CreateReply)
	api.POST("/replies/:id/likes", env.h.ToggleReplyLike)

	api.GET("/categories", env.h.ListCategories)
	api.POST("/categories", env.h.CreateCategory)
	api.GET("/categories/:id", env.h.GetCategory)
	api.PUT("/categories/:id", env.h.UpdateCategory)
	api.DELETE("/categories/:id", env.h.DeleteCategory)

	api.POST("/orders", env.h.CreateOrder)
	api.GET("/orders", env.h.ListOrders)
	api.GET("/orders/:id", env.h.GetOrder)
	api.PUT("/orders/:id", env.h.UpdateOrder)
	api.DELETE("/orders/:id", env.h.DeleteOrder)

	api.POST("/auth/login", env.h.Login)
	api.POST("/auth/register", env.h.Register)
	api.POST("/auth/logout", env.h.Logout)
	api.GET("/auth/me", middleware.AuthMiddleware(env.h.Tokens), env.h.Me)

	api.POST("/upload", env.h.UploadFile)
	api.GET("/admin/stats", env.h.GetDashboardStats)

	env.router = r
	return env
}

func (e *testEnv) addUser(id, email, role string) *models.User {
	u := &models.User{ID: id, FullName: "User " + id, Email: email, Role: role}
	e.store.users[id] = u
	return u
}

func (e *testEnv) addItem(kind models.CatalogKind, item models.CatalogItem) *models.CatalogItem {
	item.Kind = kind
	if item.ImageURLs == nil {
		item.ImageURLs = []string{}
	}
	if err := e.store.CreateCatalogItem(context.Background(), &item); err != nil {
		panic(err)
	}
	return &item
}

func (e *testEnv) addCategory(cat models.Category) *models.Category {
	if cat.Priority == "" {
		cat.Priority = models.PriorityNormal
	}
	if err := e.store.CreateCategory(context.Background(), &cat); err != nil {
		panic(err)
	}
	return &cat
}

func (e *testEnv) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = strings.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			panic(err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

type upload struct {
	field    string
	filename string
	content  []byte
}

func (e *testEnv) doMultipart(method, path string, fields map[string][]string, files ...upload) *httptest.ResponseRecorder {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for key, vals := range fields {
		for _, v := range vals {
			if err := mw.WriteField(key, v); err != nil {
				panic(err)
			}
		}
	}
	for _, f := range files {
		part, err := mw.CreateFormFile(f.field, f.filename)
		if err != nil {
			panic(err)
		}
		part.Write(f.content)
	}
	mw.Close()

	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

var errBoom = errors.New("boom")

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")
