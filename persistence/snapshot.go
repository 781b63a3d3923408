package persistence

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/huddlechat/huddle/config"
	"github.com/huddlechat/huddle/types"
)

const (
	usersFile  = "user.json"
	groupsFile = "group.json"
)

// FileBackend keeps the user and group snapshots as pretty-printed JSON
// files in the data directory. Writes are guarded by a file lock so a
// concurrently running admin tool does not interleave with the server.
type FileBackend struct {
	dataDir string
	lock    *flock.Flock
}

func NewFileBackend(cfg *config.Config) (*FileBackend, error) {
	dataDir := cfg.PersistenceConfig.DataDir
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	lockPath := cfg.PersistenceConfig.FlockPath
	if lockPath == "" {
		lockPath = filepath.Join(dataDir, ".snapshot.lock")
	}
	return &FileBackend{dataDir: dataDir, lock: flock.New(lockPath)}, nil
}

func (b *FileBackend) LoadUsers() ([]*types.User, error) {
	users := make([]*types.User, 0)
	err := b.load(usersFile, &users)
	return users, err
}

func (b *FileBackend) SaveUsers(users []*types.User) error {
	return b.save(usersFile, users)
}

func (b *FileBackend) LoadGroups() ([]*types.Group, error) {
	groups := make([]*types.Group, 0)
	err := b.load(groupsFile, &groups)
	return groups, err
}

func (b *FileBackend) SaveGroups(groups []*types.Group) error {
	return b.save(groupsFile, groups)
}

func (b *FileBackend) Close() error { return nil }

func (b *FileBackend) load(name string, into interface{}) error {
	if err := b.lock.Lock(); err != nil {
		return err
	}
	defer b.lock.Unlock()
	contents, err := os.ReadFile(filepath.Join(b.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			// a missing snapshot is an empty collection
			return nil
		}
		return err
	}
	return json.Unmarshal(contents, into)
}

func (b *FileBackend) save(name string, collection interface{}) error {
	contents, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return err
	}
	if err := b.lock.Lock(); err != nil {
		return err
	}
	defer b.lock.Unlock()
	return os.WriteFile(filepath.Join(b.dataDir, name), contents, 0o644)
}
