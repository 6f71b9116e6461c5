package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/GoArmGo/foodgram/internal/core/ports"
	"github.com/GoArmGo/foodgram/internal/domain"
)

func (s *Store) entries(kind domain.EntryKind) (map[pairKey]time.Time, error) {
	entries, ok := s.ledger[kind]
	if !ok {
		return nil, fmt.Errorf("неизвестный вид записи: %q", kind)
	}
	return entries, nil
}

func (s *Store) AddEntry(_ context.Context, kind domain.EntryKind, userID, recipeID int64) (*domain.LedgerEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entries(kind)
	if err != nil {
		return nil, err
	}
	if _, ok := s.recipes[recipeID]; !ok {
		return nil, fmt.Errorf("рецепт %d не существует", recipeID)
	}

	key := pairKey{userID: userID, targetID: recipeID}
	if _, exists := entries[key]; exists {
		return nil, ports.ErrDuplicate
	}
	entry := &domain.LedgerEntry{Kind: kind, UserID: userID, RecipeID: recipeID, CreatedAt: time.Now().UTC()}
	entries[key] = entry.CreatedAt

	s.logger.Info("ledger entry added", "kind", kind, "user_id", userID, "recipe_id", recipeID)
	return entry, nil
}

func (s *Store) RemoveEntry(_ context.Context, kind domain.EntryKind, userID, recipeID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := s.entries(kind)
	if err != nil {
		return false, err
	}
	key := pairKey{userID: userID, targetID: recipeID}
	if _, exists := entries[key]; !exists {
		return false, nil
	}
	delete(entries, key)
	return true, nil
}

func (s *Store) HasEntry(_ context.Context, kind domain.EntryKind, userID, recipeID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := s.entries(kind)
	if err != nil {
		return false, err
	}
	_, exists := entries[pairKey{userID: userID, targetID: recipeID}]
	return exists, nil
}

func (s *Store) ListCartLines(_ context.Context, userID int64) ([]domain.CartLine, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := []domain.CartLine{}
	for key := range s.ledger[domain.KindShoppingCart] {
		if key.userID != userID {
			continue
		}
		state, ok := s.recipes[key.targetID]
		if !ok {
			continue
		}
		for _, l := range state.lines {
			i := s.ingredients[l.IngredientID]
			lines = append(lines, domain.CartLine{Name: i.Name, Unit: i.MeasurementUnit, Amount: l.Amount})
		}
	}
	return lines, nil
}

// Подписки

func (s *Store) AddSubscription(_ context.Context, userID, authorID int64) (*domain.Subscription, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if userID == authorID {
		return nil, fmt.Errorf("подписка на самого себя: %d", userID)
	}
	if _, ok := s.users[authorID]; !ok {
		return nil, fmt.Errorf("автор %d не существует", authorID)
	}

	key := pairKey{userID: userID, targetID: authorID}
	if _, exists := s.subs[key]; exists {
		return nil, ports.ErrDuplicate
	}
	sub := &domain.Subscription{UserID: userID, AuthorID: authorID, CreatedAt: time.Now().UTC()}
	s.subs[key] = sub.CreatedAt

	s.logger.Info("subscription added", "user_id", userID, "author_id", authorID)
	return sub, nil
}

func (s *Store) RemoveSubscription(_ context.Context, userID, authorID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := pairKey{userID: userID, targetID: authorID}
	if _, exists := s.subs[key]; !exists {
		return false, nil
	}
	delete(s.subs, key)
	return true, nil
}

func (s *Store) IsSubscribed(_ context.Context, userID, authorID int64) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, exists := s.subs[pairKey{userID: userID, targetID: authorID}]
	return exists, nil
}

func (s *Store) ListSubscriptions(_ context.Context, userID int64, p domain.Pagination) (domain.Page[domain.User], error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	authors := []domain.User{}
	for key := range s.subs {
		if key.userID != userID {
			continue
		}
		if u, ok := s.users[key.targetID]; ok {
			authors = append(authors, u)
		}
	}
	sort.Slice(authors, func(i, j int) bool { return authors[i].ID < authors[j].ID })

	from, to := bounds(p, len(authors))
	return domain.Page[domain.User]{Count: len(authors), Results: append([]domain.User{}, authors[from:to]...)}, nil
}
