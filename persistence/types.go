package persistence

import (
	"fmt"

	"github.com/huddlechat/huddle/config"
	"github.com/huddlechat/huddle/errors"
	"github.com/huddlechat/huddle/types"
)

// SnapshotBackend persists the user and group collections wholesale. There
// is no per-record streaming and no concurrency token: a save overwrites
// the previous snapshot (last writer wins).
type SnapshotBackend interface {
	LoadUsers() ([]*types.User, error)
	SaveUsers([]*types.User) error
	LoadGroups() ([]*types.Group, error)
	SaveGroups([]*types.Group) error
	Close() error
}

// NewBackend creates the snapshot backend selected in the configuration.
func NewBackend(cfg *config.Config) (SnapshotBackend, error) {
	switch cfg.PersistenceConfig.Type {
	case "file", "":
		return NewFileBackend(cfg)
	case "sqlite", "postgres":
		return NewGormBackend(cfg)
	}
	return nil, fmt.Errorf("invalid persistence type %q", cfg.PersistenceConfig.Type)
}

// Users is the identity store: the full set of user records, loaded into
// memory once. The slice is shared mutable state, the engine mutates the
// records in place and calls Save. There is deliberately no locking here,
// concurrent requests racing on the same record can lose one side's update.
type Users struct {
	backend SnapshotBackend
	users   []*types.User
}

func LoadUsers(backend SnapshotBackend) (*Users, error) {
	users, err := backend.LoadUsers()
	if err != nil {
		return nil, err
	}
	return &Users{backend: backend, users: users}, nil
}

func (s *Users) List() []*types.User { return s.users }

func (s *Users) Get(id string) (*types.User, error) {
	for _, u := range s.users {
		if u.Id == id {
			return u, nil
		}
	}
	return nil, errors.NotFound("User not found")
}

func (s *Users) GetByUsername(username string) (*types.User, bool) {
	for _, u := range s.users {
		if u.Username == username {
			return u, true
		}
	}
	return nil, false
}

func (s *Users) Add(u *types.User) error {
	s.users = append(s.users, u)
	return s.Save()
}

func (s *Users) Delete(id string) error {
	for i, u := range s.users {
		if u.Id == id {
			s.users = append(s.users[:i], s.users[i+1:]...)
			return s.Save()
		}
	}
	return errors.NotFound("User not found")
}

// Save persists the whole collection.
func (s *Users) Save() error {
	if err := s.backend.SaveUsers(s.users); err != nil {
		return errors.Store(err, "could not save users")
	}
	return nil
}

// Groups is the group store, same shape as Users.
type Groups struct {
	backend SnapshotBackend
	groups  []*types.Group
}

func LoadGroups(backend SnapshotBackend) (*Groups, error) {
	groups, err := backend.LoadGroups()
	if err != nil {
		return nil, err
	}
	return &Groups{backend: backend, groups: groups}, nil
}

func (s *Groups) List() []*types.Group { return s.groups }

func (s *Groups) Get(id string) (*types.Group, error) {
	for _, g := range s.groups {
		if g.Id == id {
			return g, nil
		}
	}
	return nil, errors.NotFound("Group not found")
}

func (s *Groups) Add(g *types.Group) error {
	s.groups = append(s.groups, g)
	return s.Save()
}

func (s *Groups) Delete(id string) error {
	for i, g := range s.groups {
		if g.Id == id {
			s.groups = append(s.groups[:i], s.groups[i+1:]...)
			return s.Save()
		}
	}
	return errors.NotFound("Group not found")
}

// Save persists the whole collection.
func (s *Groups) Save() error {
	if err := s.backend.SaveGroups(s.groups); err != nil {
		return errors.Store(err, "could not save groups")
	}
	return nil
}
