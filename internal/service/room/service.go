package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/oscoding1/watchtogether/internal/repository/room"
	"github.com/oscoding1/watchtogether/pkg/wsrouter"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrRoomNotFound     = errors.New("room not found")
	ErrNameTaken        = errors.New("name taken")
	ErrRoomFull         = errors.New("room full")
	ErrPermissionDenied = errors.New("permission denied")
	ErrMemberNotFound   = errors.New("member not found")
	ErrTargetNotFound   = errors.New("target not found")
	ErrEmptyMessage     = errors.New("empty message")
)

// RoomRepo is the room store: the authority for membership, media and
// playback state per room.
type RoomRepo interface {
	CreateRoom(ctx context.Context, roomCode string) error
	RemoveRoom(ctx context.Context, roomCode string) error
	RoomExists(ctx context.Context, roomCode string) (bool, error)
	RoomCount(ctx context.Context) (int, error)
	AddMember(context.Context, *room.AddMemberParams) error
	RemoveMember(context.Context, *room.RemoveMemberParams) error
	GetMember(context.Context, *room.GetMemberParams) (room.Member, error)
	GetMembers(ctx context.Context, roomCode string) ([]room.Member, error)
	GetMemberRoomCode(ctx context.Context, connId string) (string, error)
	UpdateMemberIsHost(context.Context, *room.UpdateMemberIsHostParams) error
	GetMedia(ctx context.Context, roomCode string) (*room.Media, error)
	SetMedia(context.Context, *room.SetMediaParams) error
	GetPlayback(ctx context.Context, roomCode string) (room.Playback, error)
	SetPlayback(context.Context, *room.SetPlaybackParams) error
}

type iConnRepo interface {
	Add(conn *wsrouter.Conn, connId string) error
	RemoveByConnId(connId string) error
	GetConn(connId string) (*wsrouter.Conn, error)
	Count() int
}

type Config struct {
	// MembersLimit caps the number of members per room; 0 means unlimited.
	MembersLimit int
}

type roomLock struct {
	mu   sync.Mutex
	refs int
}

type service struct {
	roomRepo RoomRepo
	connRepo iConnRepo
	config   *Config
	logger   *slog.Logger

	locksMu   sync.Mutex
	roomLocks map[string]*roomLock
}

func NewService(roomRepo RoomRepo, connRepo iConnRepo, config *Config, logger *slog.Logger) *service {
	return &service{
		roomRepo:  roomRepo,
		connRepo:  connRepo,
		config:    config,
		logger:    logger,
		roomLocks: make(map[string]*roomLock),
	}
}

// lockRoom serializes all operations on a single room. Locks are created on
// first use and dropped once no operation holds or waits on them, so
// different rooms never contend with each other.
func (s *service) lockRoom(roomCode string) func() {
	s.locksMu.Lock()
	l, exists := s.roomLocks[roomCode]
	if !exists {
		l = &roomLock{}
		s.roomLocks[roomCode] = l
	}
	l.refs++
	s.locksMu.Unlock()

	l.mu.Lock()

	return func() {
		l.mu.Unlock()

		s.locksMu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(s.roomLocks, roomCode)
		}
		s.locksMu.Unlock()
	}
}

// Connect registers a new transport session.
func (s *service) Connect(conn *wsrouter.Conn, connId string) error {
	return s.connRepo.Add(conn, connId)
}

func (s *service) getConns(connIds []string) []*wsrouter.Conn {
	conns := make([]*wsrouter.Conn, 0, len(connIds))
	for _, connId := range connIds {
		conn, err := s.connRepo.GetConn(connId)
		if err != nil {
			continue
		}

		conns = append(conns, conn)
	}

	return conns
}

func (s *service) memberConns(members []room.Member, exceptConnId string) []*wsrouter.Conn {
	connIds := make([]string, 0, len(members))
	for _, member := range members {
		if member.ConnId == exceptConnId {
			continue
		}

		connIds = append(connIds, member.ConnId)
	}

	return s.getConns(connIds)
}
