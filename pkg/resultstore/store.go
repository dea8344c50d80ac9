package resultstore

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/timshannon/bolthold"
	"go.etcd.io/bbolt"
)

// Store is a bolt backed result cache
type Store struct {
	dir    string
	logger logrus.FieldLogger
	now    func() time.Time
}

// Open prepares a store in dir, creating it when missing. An empty dir uses ~/.cache/stv.
func Open(dir string, logger logrus.FieldLogger) (*Store, error) {
	if logger == nil {
		discard := logrus.New()
		discard.Out = io.Discard
		logger = discard
	}
	logger = logger.WithField("module", "resultstore")

	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(home, ".cache", "stv")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "unable to create result store '%s'", dir)
	}

	s := &Store{
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}

	db, err := s.openDB()
	if err != nil {
		return nil, errors.Wrapf(err, "unable to open result store '%s'", dir)
	}
	if err := db.Close(); err != nil {
		return nil, err
	}
	return s, nil
}

// Dir returns the directory holding the database
func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) openDB() (*bolthold.Store, error) {
	return bolthold.Open(filepath.Join(s.dir, "results.db"), 0o644, &bolthold.Options{
		Encoder: json.Marshal,
		Decoder: json.Unmarshal,
		Options: &bbolt.Options{
			Timeout:      5 * time.Second,
			NoGrowSync:   bbolt.DefaultOptions.NoGrowSync,
			FreelistType: bbolt.DefaultOptions.FreelistType,
		},
	})
}

// Key derives the lookup key of a search over the profile with the given digest
func Key(digest, search string, params ...interface{}) string {
	parts := make([]string, 0, len(params)+2)
	parts = append(parts, digest, search)
	for _, p := range params {
		parts = append(parts, fmt.Sprint(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Put stores v under key, replacing what was there, and returns the record id
func (s *Store) Put(key, digest, search string, v interface{}) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return "", errors.Wrap(err, "unable to encode result")
	}

	db, err := s.openDB()
	if err != nil {
		return "", err
	}
	defer db.Close()

	now := s.now().Unix()
	record := &Record{}
	if err := db.FindOne(record, bolthold.Where("Key").Eq(key)); err != nil {
		if !errors.Is(err, bolthold.ErrNotFound) {
			return "", errors.Wrap(err, "find record")
		}
		record = &Record{
			ID:        uuid.NewString(),
			Key:       key,
			Digest:    digest,
			Search:    search,
			CreatedAt: now,
		}
	}
	record.Payload = payload
	record.UsedAt = now

	if err := db.Upsert(record.ID, record); err != nil {
		return "", errors.Wrap(err, "store record")
	}
	s.logger.Debugf("stored %s result %s", search, record.ID)
	return record.ID, nil
}

// Get loads the record stored under key into v. It reports false when nothing is stored.
func (s *Store) Get(key string, v interface{}) (bool, error) {
	db, err := s.openDB()
	if err != nil {
		return false, err
	}
	defer db.Close()

	record := &Record{}
	if err := db.FindOne(record, bolthold.Where("Key").Eq(key)); err != nil {
		if errors.Is(err, bolthold.ErrNotFound) {
			return false, nil
		}
		return false, errors.Wrap(err, "find record")
	}
	if err := record.Decode(v); err != nil {
		return false, errors.Wrapf(err, "unable to decode record %s", record.ID)
	}

	record.UsedAt = s.now().Unix()
	if err := db.Update(record.ID, record); err != nil {
		s.logger.Warnf("update record: %v", err)
	}
	s.logger.Debugf("loaded %s result %s", record.Search, record.ID)
	return true, nil
}

// List returns the records of one profile, oldest first
func (s *Store) List(digest string) ([]*Record, error) {
	db, err := s.openDB()
	if err != nil {
		return nil, err
	}
	defer db.Close()

	var records []*Record
	if err := db.Find(&records, bolthold.Where("Digest").Eq(digest).SortBy("CreatedAt")); err != nil {
		return nil, errors.Wrap(err, "find records")
	}
	return records, nil
}

// GC deletes records not used within keep and returns how many went
func (s *Store) GC(keep time.Duration) (int, error) {
	db, err := s.openDB()
	if err != nil {
		return 0, err
	}
	defer db.Close()

	var records []*Record
	if err := db.Find(&records, bolthold.Where("UsedAt").Lt(s.now().Add(-keep).Unix())); err != nil {
		return 0, errors.Wrap(err, "find records")
	}
	deleted := 0
	for _, record := range records {
		if err := db.Delete(record.ID, record); err != nil {
			s.logger.Warnf("delete record: %v", err)
			continue
		}
		s.logger.Infof("deleted %s result %s", record.Search, record.ID)
		deleted++
	}
	return deleted, nil
}
