package walletsec

import (
	"context"
	"time"
)

// SecurityReport is a point-in-time posture summary suitable for display or
// export: the score, the full catalogue state, the method selections, and the
// outstanding alerts.
type SecurityReport struct {
	GeneratedAt    time.Time       `json:"generatedAt"`
	Score          ScoreSnapshot   `json:"score"`
	Features       []Feature       `json:"features"`
	LoginMethod    string          `json:"loginMethod"`
	TransferMethod string          `json:"transferMethod"`
	Premium        bool            `json:"premium"`
	Alerts         []SecurityAlert `json:"alerts,omitempty"`
}

// Report assembles a [SecurityReport] from current state. Settings must have
// loaded; the report itself performs no backend fetch beyond the persisted
// dismissal list.
func (e *Engine) Report(ctx context.Context) (*SecurityReport, error) {
	e.mu.Lock()
	if err := e.readyLocked(); err != nil {
		e.mu.Unlock()
		return nil, err
	}
	features := e.featureListLocked()
	login := e.loginMethod
	transfer := e.transferMethod
	premium := e.premium
	e.mu.Unlock()

	alerts, err := e.SecurityAlerts(ctx)
	if err != nil {
		return nil, err
	}

	return &SecurityReport{
		GeneratedAt:    e.now().UTC(),
		Score:          ComputeScore(features, login, transfer, e.config.Score),
		Features:       features,
		LoginMethod:    login.String(),
		TransferMethod: transfer.String(),
		Premium:        premium,
		Alerts:         alerts,
	}, nil
}
