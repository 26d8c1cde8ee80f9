// Package subscriber keeps the set of LINE users who receive scheduled
// price pushes.
package subscriber

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
)

// Store is a set of subscribed user IDs. Implementations are safe for
// concurrent use.
type Store interface {
	// Add inserts userID if absent and reports whether it was added.
	Add(userID string) (bool, error)
	// Remove deletes userID and reports whether it was present.
	Remove(userID string) (bool, error)
	Contains(userID string) (bool, error)
	// List returns subscribers in subscription order.
	List() ([]string, error)
	Count() (int, error)
	Close() error
}

// ErrEmptyUserID is returned when an operation is given a blank user ID.
var ErrEmptyUserID = errors.New("empty user id")

// readIDs reads one user ID per line, skipping blanks and duplicates.
// A missing file is an empty set.
func readIDs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var ids []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		id := strings.TrimSpace(sc.Text())
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ids, nil
}
