package frontend

import (
	"context"
	"encoding/json"
	"time"

	"spiritlife-frontend/internal/search"
	"spiritlife-frontend/internal/session"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const (
	eventsChannel   = "broadcast"
	eventSearchDone = "search.completed"
	publishTimeout  = 2 * time.Second
)

// Publisher announces finished searches on Redis. A nil client disables it.
type Publisher struct {
	rdb     *redis.Client
	channel string
}

func NewPublisher(rdb *redis.Client) *Publisher {
	return &Publisher{
		rdb:     rdb,
		channel: eventsChannel,
	}
}

type searchCompletedPayload struct {
	Mode    search.Mode `json:"mode"`
	Summary string      `json:"summary"`
	Videos  int         `json:"videos"`
	Audios  int         `json:"audios"`
	At      time.Time   `json:"at"`
}

func (p *Publisher) SearchCompleted(ctx context.Context, h session.HistoryEntry, resp search.SearchResponse) {
	if p == nil || p.rdb == nil {
		return
	}

	body := map[string]any{
		"type": eventSearchDone,
		"payload": searchCompletedPayload{
			Mode:    h.Mode,
			Summary: h.Summary,
			Videos:  len(resp.Videos),
			Audios:  len(resp.Audios),
			At:      h.At.UTC(),
		},
	}
	data, err := json.Marshal(body)
	if err != nil {
		log.WithError(err).Warn("marshal search event")
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.rdb.Publish(ctx, p.channel, string(data)).Err(); err != nil {
		log.WithError(err).Warn("publish search event")
	}
}
