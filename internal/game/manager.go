package game

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

type Mode string

const (
	// ModeBot pits a human seat against the Bot.
	ModeBot Mode = "bot"
	// ModeLocal is two humans sharing one seat.
	ModeLocal Mode = "local"
)

var ErrSessionNotFound = errors.New("session not found")

// Session is one match tracked by the Manager.
type Session struct {
	ID         string
	Mode       Mode
	Match      *Match
	Human      PlayerID
	Bot        *Bot
	StartedAt  time.Time
	LastMoveAt time.Time
	EndedAt    time.Time
}

// SessionView is a copy of a session's state, safe to use outside the
// manager lock.
type SessionView struct {
	ID           string         `json:"id"`
	Mode         Mode           `json:"mode"`
	Status       Status         `json:"status"`
	Turn         PlayerID       `json:"turn"`
	Human        PlayerID       `json:"human,omitempty"`
	Winner       PlayerID       `json:"winner"`
	Winning      []Coordinate   `json:"winning,omitempty"`
	Board        [][]PlayerID   `json:"board"`
	Turns        int            `json:"turns"`
	LastDecision *DecisionStats `json:"lastDecision,omitempty"`
	StartedAt    time.Time      `json:"startedAt"`
	EndedAt      *time.Time     `json:"endedAt,omitempty"`
}

func (s *Session) View() SessionView {
	v := SessionView{
		ID:        s.ID,
		Mode:      s.Mode,
		Status:    s.Match.Status(),
		Turn:      s.Match.Current(),
		Human:     s.Human,
		Winner:    s.Match.Winner(),
		Winning:   s.Match.Winning(),
		Board:     s.Match.Grid().Snapshot(),
		Turns:     s.Match.Turns(),
		StartedAt: s.StartedAt,
	}
	if s.Bot != nil && s.Bot.LastDecision().Column >= 0 {
		d := s.Bot.LastDecision()
		v.LastDecision = &d
	}
	if !s.EndedAt.IsZero() {
		ended := s.EndedAt
		v.EndedAt = &ended
	}
	return v
}

// Hooks lets callers observe sessions. Attach runs under the manager lock
// before the match starts, so listeners registered there see the bot's
// opening move. Finished runs on its own goroutine.
type Hooks struct {
	Attach   func(*Session)
	Finished func(SessionView)
}

// Manager owns every live session. All match access goes through its lock.
type Manager struct {
	mu        sync.Mutex
	sessions  map[string]*Session
	idleAfter time.Duration
	hooks     Hooks
	now       func() time.Time
}

func NewManager(idleAfter time.Duration, hooks Hooks) *Manager {
	return &Manager{
		sessions:  make(map[string]*Session),
		idleAfter: idleAfter,
		hooks:     hooks,
		now:       time.Now,
	}
}

// StartBotGame opens a human-vs-bot session. The human is Player1 when
// humanFirst is set and Player2 otherwise.
func (m *Manager) StartBotGame(humanFirst bool) SessionView {
	human := Player1
	if !humanFirst {
		human = Player2
	}
	bot := NewBot(human.Opponent())
	return m.start(ModeBot, human, bot, NewHuman(human), bot)
}

// StartLocalGame opens a session where both sides move through HandleMove.
func (m *Manager) StartLocalGame() SessionView {
	return m.start(ModeLocal, NoPlayer, nil, NewHuman(Player1), NewHuman(Player2))
}

func (m *Manager) start(mode Mode, human PlayerID, bot *Bot, first, second Participant) SessionView {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	s := &Session{
		ID:         uuid.NewString(),
		Mode:       mode,
		Match:      NewMatch(NewDefaultGrid(), first, second),
		Human:      human,
		Bot:        bot,
		StartedAt:  now,
		LastMoveAt: now,
	}
	s.Match.Ended().Subscribe(func(Result) { m.markEnded(s) })
	m.sessions[s.ID] = s

	if m.hooks.Attach != nil {
		m.hooks.Attach(s)
	}
	s.Match.Start()
	return s.View()
}

// markEnded runs inside a match notification, so the lock is already held.
func (m *Manager) markEnded(s *Session) {
	s.EndedAt = m.now()
	if m.hooks.Finished != nil {
		go m.hooks.Finished(s.View())
	}
}

func (m *Manager) Get(id string) (SessionView, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return SessionView{}, false
	}
	return s.View(), true
}

// With runs fn on the session's current view while holding the manager
// lock. No event of any session fires until fn returns, so fn can take a
// snapshot and subscribe to later events without a gap. It reports false
// when the session does not exist.
func (m *Manager) With(id string, fn func(SessionView)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	if !ok {
		return false
	}
	fn(s.View())
	return true
}

// HandleMove plays column for the side to move. In bot sessions that side
// must be the human seat; the bot's reply is included in the returned view.
func (m *Manager) HandleMove(id string, column int) (SessionView, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return SessionView{}, errors.Wrap(ErrSessionNotFound, id)
	}
	player := s.Match.Current()
	if s.Mode == ModeBot {
		player = s.Human
	}
	if err := s.Match.Play(player, column); err != nil {
		return s.View(), err
	}
	s.LastMoveAt = m.now()
	return s.View(), nil
}

// Abandon ends the session if still running and forgets it.
func (m *Manager) Abandon(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return errors.Wrap(ErrSessionNotFound, id)
	}
	s.Match.Abandon()
	delete(m.sessions, id)
	return nil
}

// SweepIdle abandons and forgets sessions with no move for longer than the
// idle window, and forgets finished ones past the same window. It returns
// the number of sessions removed.
func (m *Manager) SweepIdle() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, s := range m.sessions {
		last := s.LastMoveAt
		if !s.EndedAt.IsZero() {
			last = s.EndedAt
		}
		if now.Sub(last) <= m.idleAfter {
			continue
		}
		s.Match.Abandon()
		delete(m.sessions, id)
		removed++
	}
	return removed
}

// Len returns the number of tracked sessions.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
