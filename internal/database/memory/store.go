// Package memory содержит хранилище в памяти процесса.
// Используется при STORAGE_DRIVER=memory и в тестах usecase и хендлеров.
// Все операции записи выполняются под одной блокировкой, поэтому читатели
// никогда не видят рецепт в промежуточном состоянии.
package memory

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
)

type pairKey struct {
	userID   int64
	targetID int64
}

type recipeState struct {
	record domain.RecipeRecord
	tagIDs []int64
	lines  []domain.IngredientAmount
}

// Store реализует ports.Storage на картах под sync.RWMutex
type Store struct {
	mu     sync.RWMutex
	logger *slog.Logger

	tags        map[int64]domain.Tag
	ingredients map[int64]domain.Ingredient
	users       map[int64]domain.User
	recipes     map[int64]*recipeState
	ledger      map[domain.EntryKind]map[pairKey]time.Time
	subs        map[pairKey]time.Time

	nextTagID        int64
	nextIngredientID int64
	nextRecipeID     int64
}

var _ ports.Storage = (*Store)(nil)

func NewStore(logger *slog.Logger) *Store {
	return &Store{
		logger:      logger,
		tags:        map[int64]domain.Tag{},
		ingredients: map[int64]domain.Ingredient{},
		users:       map[int64]domain.User{},
		recipes:     map[int64]*recipeState{},
		ledger: map[domain.EntryKind]map[pairKey]time.Time{
			domain.KindFavorite:     {},
			domain.KindShoppingCart: {},
		},
		subs: map[pairKey]time.Time{},
	}
}

// DefaultTags - теги, которые миграции заводят в PostgreSQL
var DefaultTags = []domain.Tag{
	{Name: "Завтрак", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Обед", Color: "#49B64E", Slug: "lunch"},
	{Name: "Ужин", Color: "#8775D2", Slug: "dinner"},
}

// SeedDefaultTags добавляет DefaultTags, пропуская уже существующие
func (s *Store) SeedDefaultTags() error {
	for _, tag := range DefaultTags {
		if _, err := s.AddTag(tag); err != nil && err != ports.ErrDuplicate {
			return err
		}
	}
	return nil
}

// AddTag добавляет тег, имя, цвет и слаг должны быть уникальны
func (s *Store) AddTag(tag domain.Tag) (domain.Tag, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, t := range s.tags {
		if t.Name == tag.Name || t.Color == tag.Color || t.Slug == tag.Slug {
			return domain.Tag{}, ports.ErrDuplicate
		}
	}
	s.nextTagID++
	tag.ID = s.nextTagID
	s.tags[tag.ID] = tag
	return tag, nil
}

// AddIngredient добавляет ингредиент, пара (name, unit) должна быть уникальна
func (s *Store) AddIngredient(name, unit string) (domain.Ingredient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, i := range s.ingredients {
		if i.Name == name && i.MeasurementUnit == unit {
			return domain.Ingredient{}, ports.ErrDuplicate
		}
	}
	s.nextIngredientID++
	ingredient := domain.Ingredient{ID: s.nextIngredientID, Name: name, MeasurementUnit: unit}
	s.ingredients[ingredient.ID] = ingredient
	return ingredient, nil
}

// Теги

func (s *Store) ListTags(_ context.Context) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tags := make([]domain.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		tags = append(tags, t)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags, nil
}

func (s *Store) GetTagByID(_ context.Context, id int64) (*domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tags[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (s *Store) GetTagsByIDs(_ context.Context, ids []int64) ([]domain.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tagsByIDs(ids), nil
}

func (s *Store) tagsByIDs(ids []int64) []domain.Tag {
	seen := make(map[int64]struct{}, len(ids))
	tags := []domain.Tag{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if t, ok := s.tags[id]; ok {
			tags = append(tags, t)
		}
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].ID < tags[j].ID })
	return tags
}

// Ингредиенты

func (s *Store) ListIngredients(_ context.Context, namePrefix string) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := strings.ToLower(namePrefix)
	out := []domain.Ingredient{}
	for _, i := range s.ingredients {
		if strings.HasPrefix(strings.ToLower(i.Name), prefix) {
			out = append(out, i)
		}
	}
	sortIngredients(out)
	return out, nil
}

func (s *Store) GetIngredientByID(_ context.Context, id int64) (*domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.ingredients[id]
	if !ok {
		return nil, nil
	}
	return &i, nil
}

func (s *Store) GetIngredientsByIDs(_ context.Context, ids []int64) ([]domain.Ingredient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[int64]struct{}, len(ids))
	out := []domain.Ingredient{}
	for _, id := range ids {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if i, ok := s.ingredients[id]; ok {
			out = append(out, i)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func sortIngredients(items []domain.Ingredient) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Name != items[j].Name {
			return items[i].Name < items[j].Name
		}
		return items[i].ID < items[j].ID
	})
}

// Пользователи

func (s *Store) GetOrCreateUser(_ context.Context, identity domain.Identity) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u, ok := s.users[identity.UserID]; ok {
		return &u, nil
	}
	for _, u := range s.users {
		if u.Username == identity.Username || u.Email == identity.Email {
			return nil, fmt.Errorf("insert user %d: %w", identity.UserID, ports.ErrDuplicate)
		}
	}

	u := domain.User{
		ID:        identity.UserID,
		Email:     identity.Email,
		Username:  identity.Username,
		FirstName: identity.FirstName,
		LastName:  identity.LastName,
		CreatedAt: time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.logger.Info("user created successfully", "user_id", u.ID)
	return &u, nil
}

func (s *Store) GetUserByID(_ context.Context, id int64) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (s *Store) ListUsers(_ context.Context, p domain.Pagination, viewerID int64) (domain.Page[domain.Profile], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int64, 0, len(s.users))
	for id := range s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	page := domain.Page[domain.Profile]{Count: len(ids), Results: []domain.Profile{}}
	from, to := bounds(p, len(ids))
	for _, id := range ids[from:to] {
		page.Results = append(page.Results, s.profile(id, viewerID))
	}
	return page, nil
}

func (s *Store) profile(id, viewerID int64) domain.Profile {
	p := domain.Profile{User: domain.User{ID: id}}
	if u, ok := s.users[id]; ok {
		p.User = u
	}
	if viewerID != 0 {
		_, p.IsSubscribed = s.subs[pairKey{userID: viewerID, targetID: id}]
	}
	return p
}
