package alerts

import (
	"sync"

	"github.com/google/uuid"

	"github.com/wonny/aktietipset/backend/internal/contracts"
	"github.com/wonny/aktietipset/backend/pkg/logger"
)

// Repository is a process-local alert store. Alerts are listed in creation order.
type Repository struct {
	mu     sync.Mutex
	alerts map[string]Alert
	order  []string
	newID  func() string
	logger *logger.Logger
}

// NewRepository creates an empty repository
func NewRepository(log *logger.Logger) *Repository {
	return &Repository{
		alerts: make(map[string]Alert),
		newID:  uuid.NewString,
		logger: log,
	}
}

// List returns every alert in creation order
func (r *Repository) List() []Alert {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Alert, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, clone(r.alerts[id]))
	}
	return out
}

// Get returns one alert
func (r *Repository) Get(id string) (Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	return clone(a), ok
}

// Create stores a new active alert. Channels default to in-app.
func (r *Repository) Create(req CreateRequest) Alert {
	channels := append([]Channel(nil), req.Channels...)
	if len(channels) == 0 {
		channels = []Channel{ChannelInApp}
	}

	a := Alert{
		ID:       r.newID(),
		Symbol:   contracts.NormalizeSymbol(req.Symbol),
		Channels: channels,
		Rule:     cloneRule(req.Rule),
		Active:   true,
	}

	r.mu.Lock()
	r.alerts[a.ID] = a
	r.order = append(r.order, a.ID)
	r.mu.Unlock()

	r.logger.WithFields(map[string]interface{}{
		"alert_id": a.ID,
		"symbol":   a.Symbol,
	}).Info("Alert created")

	return clone(a)
}

// Update applies req to an alert. ok is false when id is unknown.
func (r *Repository) Update(id string, req UpdateRequest) (Alert, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, ok := r.alerts[id]
	if !ok {
		return Alert{}, false
	}
	if req.Rule != nil {
		a.Rule = cloneRule(*req.Rule)
	}
	if req.Active != nil {
		a.Active = *req.Active
	}
	r.alerts[id] = a

	return clone(a), true
}

// Delete removes an alert, reporting whether it existed
func (r *Repository) Delete(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.alerts[id]; !ok {
		return false
	}
	delete(r.alerts, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.logger.WithField("alert_id", id).Info("Alert deleted")
	return true
}

func clone(a Alert) Alert {
	a.Channels = append([]Channel(nil), a.Channels...)
	a.Rule = cloneRule(a.Rule)
	return a
}

func cloneRule(rule Rule) Rule {
	if rule.Price != nil {
		p := *rule.Price
		rule.Price = &p
	}
	return rule
}
