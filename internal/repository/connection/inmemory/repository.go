package inmemory

import (
	"sync"

	"github.com/oscoding1/watchtogether/internal/repository/connection"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

// repo is the connection registry: one entry per live transport session,
// created on connect and removed on disconnect.
type repo struct {
	conns map[string]*wsrouter.Conn
	mu    sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		conns: make(map[string]*wsrouter.Conn),
	}
}

func (r *repo) Add(conn *wsrouter.Conn, connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[connId]; exists {
		return connection.ErrAlreadyExists
	}

	r.conns[connId] = conn

	return nil
}

// RemoveByConnId is idempotent: removing an absent entry reports ErrNotFound
// and changes nothing.
func (r *repo) RemoveByConnId(connId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.conns[connId]; !exists {
		return connection.ErrNotFound
	}

	delete(r.conns, connId)

	return nil
}

func (r *repo) GetConn(connId string) (*wsrouter.Conn, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, exists := r.conns[connId]
	if !exists {
		return nil, connection.ErrNotFound
	}

	return conn, nil
}

func (r *repo) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.conns)
}
