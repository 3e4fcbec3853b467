package store

import (
	"bytes"
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/server/models"
	"github.com/google/uuid"
)

// MemoryStore keeps identities in process memory. It backs the server when
// no database is configured and is used throughout the tests.
type MemoryStore struct {
	mu       sync.RWMutex
	users    map[uuid.UUID]*models.User
	hardware map[int64]*models.HardwareRecord
	nextHW   int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    make(map[uuid.UUID]*models.User),
		hardware: make(map[int64]*models.HardwareRecord),
	}
}

func cloneUser(u *models.User) *models.User {
	c := *u
	c.Roles = slices.Clone(u.Roles)
	if u.HardwareID != nil {
		id := *u.HardwareID
		c.HardwareID = &id
	}
	return &c
}

func cloneRecord(r *models.HardwareRecord) *models.HardwareRecord {
	c := *r
	c.PublicKey = bytes.Clone(r.PublicKey)
	c.Info.DisplayID = bytes.Clone(r.Info.DisplayID)
	return &c
}

func (s *MemoryStore) find(match func(*models.User) bool) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, common.ErrorNotFound
}

func (s *MemoryStore) UserByLogin(_ context.Context, login string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return strings.EqualFold(u.Username, login) })
}

func (s *MemoryStore) UserByUsername(_ context.Context, username string) (*models.User, error) {
	return s.find(func(u *models.User) bool { return u.Username == username })
}

func (s *MemoryStore) UserByUUID(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneUser(u), nil
}

// CreateUser keeps a caller-supplied ID and generates one otherwise.
func (s *MemoryStore) CreateUser(_ context.Context, user *models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Username, user.Username) {
			return nil, fmt.Errorf("%w: %s", common.ErrUserExists, user.Username)
		}
	}
	if _, taken := s.users[user.ID]; taken {
		return nil, fmt.Errorf("%w: %s", common.ErrUserExists, user.ID)
	}
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now()
	s.users[user.ID] = cloneUser(user)
	return user, nil
}

func (s *MemoryStore) update(id uuid.UUID, fn func(*models.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return common.ErrorNotFound
	}
	fn(u)
	return nil
}

func (s *MemoryStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	return s.update(id, func(u *models.User) { u.PasswordHash = passwordHash })
}

func (s *MemoryStore) ApplyLogin(_ context.Context, id uuid.UUID, upd models.LoginUpdate) error {
	return s.update(id, upd.Apply)
}

func (s *MemoryStore) HardwareByID(_ context.Context, id int64) (*models.HardwareRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.hardware[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return cloneRecord(r), nil
}

// CreateHardware inserts a record directly, bypassing binding.
func (s *MemoryStore) CreateHardware(info models.HardwareInfo, key []byte, banned bool) *models.HardwareRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRecord(s.insertHardware(info, key, banned))
}

func (s *MemoryStore) insertHardware(info models.HardwareInfo, key []byte, banned bool) *models.HardwareRecord {
	s.nextHW++
	r := &models.HardwareRecord{ID: s.nextHW, Info: info, PublicKey: bytes.Clone(key), Banned: banned}
	s.hardware[r.ID] = r
	return r
}

func (s *MemoryStore) lookupHardware(info models.HardwareInfo, key []byte) *models.HardwareRecord {
	if len(key) > 0 {
		for _, r := range s.hardware {
			if bytes.Equal(r.PublicKey, key) {
				return r
			}
		}
	}
	for _, r := range s.hardware {
		if (info.HwDiskID != "" && r.Info.HwDiskID == info.HwDiskID) ||
			(info.BaseboardSerialNumber != "" && r.Info.BaseboardSerialNumber == info.BaseboardSerialNumber) {
			return r
		}
	}
	return nil
}

func (s *MemoryStore) BindHardware(_ context.Context, userID uuid.UUID, info models.HardwareInfo, key []byte) (*models.HardwareRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, common.ErrorNotFound
	}

	r := s.lookupHardware(info, key)
	switch {
	case r == nil:
		r = s.insertHardware(info, key, false)
	case r.Banned:
		return nil, common.ErrHardwareBanned
	case len(key) > 0:
		r.PublicKey = bytes.Clone(key)
	}

	id := r.ID
	u.HardwareID = &id
	return cloneRecord(r), nil
}

func (s *MemoryStore) SetHardwareBanned(_ context.Context, id int64, banned bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.hardware[id]
	if !ok {
		return common.ErrorNotFound
	}
	r.Banned = banned
	return nil
}

func (s *MemoryStore) UsersByHardware(_ context.Context, id int64) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []*models.User
	for _, u := range s.users {
		if u.HardwareID != nil && *u.HardwareID == id {
			result = append(result, cloneUser(u))
		}
	}
	slices.SortFunc(result, func(a, b *models.User) int { return strings.Compare(a.Username, b.Username) })
	return result, nil
}
