package analytics

import (
	"sync"
)

// Metrics aggregates events read back from the topic.
type Metrics struct {
	mu sync.Mutex

	decisions     int
	decisionMs    float64
	replies       float64
	immediateWins int
	fallbacks     int

	games      int
	wins       map[string]int
	draws      int
	abandoned  int
	turns      int
	gameSecs   float64
	gamesByDay map[string]int
}

type Summary struct {
	Decisions      int            `json:"decisions"`
	AvgDecisionMs  float64        `json:"avgDecisionMs"`
	AvgReplies     float64        `json:"avgReplies"`
	ImmediateWins  int            `json:"immediateWins"`
	Fallbacks      int            `json:"fallbacks"`
	Games          int            `json:"games"`
	Wins           map[string]int `json:"wins"`
	Draws          int            `json:"draws"`
	Abandoned      int            `json:"abandoned"`
	AvgTurns       float64        `json:"avgTurns"`
	AvgGameSeconds float64        `json:"avgGameSeconds"`
	GamesPerDay    map[string]int `json:"gamesPerDay"`
}

func NewMetrics() *Metrics {
	return &Metrics{
		wins:       make(map[string]int),
		gamesByDay: make(map[string]int),
	}
}

// RecordEvent folds e into the totals. Unknown events are ignored and
// reported as false.
func (m *Metrics) RecordEvent(e Event) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch e.Event {
	case EventDecisionMade:
		m.decisions++
		m.decisionMs += number(e.Payload, "durationMs")
		m.replies += number(e.Payload, "repliesEvaluated")
		if flag(e.Payload, "immediate") {
			m.immediateWins++
		}
		if flag(e.Payload, "fallback") {
			m.fallbacks++
		}
	case EventGameFinished:
		m.games++
		m.turns += int(number(e.Payload, "turns"))
		m.gameSecs += number(e.Payload, "duration")
		if !e.Timestamp.IsZero() {
			m.gamesByDay[e.Timestamp.Format("2006-01-02")]++
		}
		switch status, _ := e.Payload["status"].(string); status {
		case "won":
			winner, _ := e.Payload["winnerName"].(string)
			m.wins[winner]++
		case "draw":
			m.draws++
		case "abandoned":
			m.abandoned++
		}
	default:
		return false
	}
	return true
}

func (m *Metrics) Summary() Summary {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := Summary{
		Decisions:     m.decisions,
		ImmediateWins: m.immediateWins,
		Fallbacks:     m.fallbacks,
		Games:         m.games,
		Wins:          make(map[string]int, len(m.wins)),
		Draws:         m.draws,
		Abandoned:     m.abandoned,
		GamesPerDay:   make(map[string]int, len(m.gamesByDay)),
	}
	for k, v := range m.wins {
		s.Wins[k] = v
	}
	for k, v := range m.gamesByDay {
		s.GamesPerDay[k] = v
	}
	if m.decisions > 0 {
		s.AvgDecisionMs = m.decisionMs / float64(m.decisions)
		s.AvgReplies = m.replies / float64(m.decisions)
	}
	if m.games > 0 {
		s.AvgTurns = float64(m.turns) / float64(m.games)
		s.AvgGameSeconds = m.gameSecs / float64(m.games)
	}
	return s
}

// number reads a JSON number, which decodes as float64.
func number(payload map[string]any, key string) float64 {
	switch v := payload[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func flag(payload map[string]any, key string) bool {
	v, _ := payload[key].(bool)
	return v
}
