package alerts

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"svitlo-ua/internal/alarm"
	"svitlo-ua/internal/cache"
	"svitlo-ua/internal/metrics"
	"svitlo-ua/internal/models"
	"svitlo-ua/internal/mq"
)

// Source is the upstream alarm API.
type Source interface {
	LastActionIndex(ctx context.Context) (int64, error)
	Alerts(ctx context.Context) ([]alarm.RegionAlert, error)
}

// EventStore persists alarm changes.
type EventStore interface {
	// InsertAlarmEvent reports false when the event ID is already stored.
	InsertAlarmEvent(ctx context.Context, e *models.AlarmEvent) (bool, error)
}

// Notifier announces alarm changes.
type Notifier interface {
	NotifyAlarmChange(ctx context.Context, msg mq.AlarmChangeMsg) error
}

// Poller periodically reads the upstream alarm state, keeps the last known
// state per region in Redis and reports regions whose alarm was raised or
// cleared since the previous poll.
type Poller struct {
	source   Source
	cache    *cache.Cache
	events   EventStore
	notifier Notifier
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

// NewPoller creates a poller firing every intervalSec seconds.
func NewPoller(source Source, c *cache.Cache, events EventStore, notifier Notifier, intervalSec int, log zerolog.Logger) *Poller {
	return &Poller{
		source:   source,
		cache:    c,
		events:   events,
		notifier: notifier,
		interval: time.Duration(intervalSec) * time.Second,
		log:      log,
		now:      time.Now,
	}
}

// Start polls immediately, then every interval. Blocks until ctx is cancelled.
func (p *Poller) Start(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("poller stopped")
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Poller) tick(ctx context.Context) {
	changes, err := p.Poll(ctx)
	switch {
	case err != nil:
		metrics.IncAlarmPoll("error")
		p.log.Error().Err(err).Msg("poll failed")
	case changes > 0:
		metrics.IncAlarmPoll("changed")
		p.log.Info().Int("changes", changes).Msg("alarm state updated")
	default:
		metrics.IncAlarmPoll("unchanged")
	}
}

// Poll runs a single poll and returns the number of regions whose alarm
// was raised or cleared.
func (p *Poller) Poll(ctx context.Context) (int, error) {
	idx, err := p.source.LastActionIndex(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch action index: %w", err)
	}
	last, err := p.cache.GetActionIndex(ctx)
	if err != nil {
		return 0, fmt.Errorf("read action index: %w", err)
	}
	if idx != 0 && idx == last {
		return 0, nil
	}

	regions, err := p.source.Alerts(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch alerts: %w", err)
	}
	known, err := p.cache.GetAllRegionStates(ctx)
	if err != nil {
		return 0, fmt.Errorf("read region states: %w", err)
	}

	now := p.now()
	seen := make(map[string]bool, len(regions))
	changes := 0

	for _, r := range regions {
		seen[r.RegionID] = true
		next := cache.RegionState{
			RegionID:   r.RegionID,
			RegionName: r.RegionName,
			Active:     len(r.ActiveAlerts) > 0,
			Types:      r.AlertTypes(),
			Since:      r.LastUpdate,
		}
		if next.Since.IsZero() {
			next.Since = now
		}

		prev, ok := known[r.RegionID]
		if ok && prev.Active == next.Active && slices.Equal(prev.Types, next.Types) {
			continue
		}
		// A region seen for the first time without an alarm is not a change.
		flipped := (ok && prev.Active != next.Active) || (!ok && next.Active)
		if ok && !flipped {
			// Only the alert types moved; keep the earlier start time.
			next.Since = prev.Since
		}
		after := next.Since
		if ok {
			after = prev.Since
		}
		if err := p.apply(ctx, next, flipped, after); err != nil {
			return changes, err
		}
		if flipped {
			changes++
		}
	}

	// Regions dropped from the upstream list no longer have an alarm.
	for id, prev := range known {
		if seen[id] || !prev.Active {
			continue
		}
		cleared := cache.RegionState{RegionID: id, RegionName: prev.RegionName, Since: now}
		if err := p.apply(ctx, cleared, true, prev.Since); err != nil {
			return changes, err
		}
		changes++
	}

	if err := p.cache.SetActionIndex(ctx, idx); err != nil {
		return changes, fmt.Errorf("store action index: %w", err)
	}
	return changes, nil
}

// eventNamespace scopes alarm event IDs.
var eventNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("svitlo-ua/alarm-event"))

// eventID identifies the flip of a region to active that ends the state the
// region held since after. Retrying the same flip yields the same ID.
func eventID(regionID string, active bool, after time.Time) string {
	name := fmt.Sprintf("%s|%t|%s", regionID, active, after.UTC().Format(time.RFC3339Nano))
	return uuid.NewSHA1(eventNamespace, []byte(name)).String()
}

// apply records the new state. When flipped, the change is persisted and
// announced before the cached state is moved, so a failed step is retried
// on the next poll under the same event ID. after is when the previous
// state began. An event already stored is not announced again.
func (p *Poller) apply(ctx context.Context, st cache.RegionState, flipped bool, after time.Time) error {
	if flipped {
		event := &models.AlarmEvent{
			EventID:    eventID(st.RegionID, st.Active, after),
			RegionID:   st.RegionID,
			RegionName: st.RegionName,
			Active:     st.Active,
			AlertTypes: st.Types,
			Timestamp:  st.Since,
		}
		fresh := true
		if p.events != nil {
			var err error
			if fresh, err = p.events.InsertAlarmEvent(ctx, event); err != nil {
				return fmt.Errorf("insert event for region %s: %w", st.RegionID, err)
			}
		}
		if fresh && p.notifier != nil {
			msg := mq.AlarmChangeMsg{
				EventID:    event.EventID,
				RegionID:   event.RegionID,
				RegionName: event.RegionName,
				Active:     event.Active,
				AlertTypes: event.AlertTypes,
				When:       event.Timestamp,
			}
			if err := p.notifier.NotifyAlarmChange(ctx, msg); err != nil {
				p.log.Error().Err(err).Str("region", st.RegionID).Msg("failed to publish alarm change")
			}
		}
		metrics.IncAlarmChange(st.Active)
		p.log.Info().Str("region", st.RegionID).Str("name", st.RegionName).Bool("active", st.Active).Msg("alarm state changed")
	}

	if err := p.cache.SetRegionState(ctx, st); err != nil {
		return fmt.Errorf("store state for region %s: %w", st.RegionID, err)
	}
	return nil
}
