package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/skuldata/skuldata-api/internal/dto"
	"github.com/skuldata/skuldata-api/internal/models"
	"github.com/skuldata/skuldata-api/internal/observability"
)

const (
	feedSendBufferSize = 32
	feedRecentLimit    = 50
)

// FeedConnectionOptions wraps metadata extracted during the HTTP upgrade.
type FeedConnectionOptions struct {
	UserID        string
	Role          string
	CorrelationID string
	Context       context.Context
}

// FeedService streams freshly recorded audit entries to connected admin
// dashboards and keeps a short Redis-backed replay window for late joiners.
type FeedService interface {
	ServeConnection(conn *websocket.Conn, opts FeedConnectionOptions)
	Publish(entry models.ActionLog)
	Recent(ctx context.Context) ([]dto.ActionLogResponse, error)
	Start(ctx context.Context)
}

type feedService struct {
	redis        *redis.Client
	redisChannel string
	redisRecent  string
	recentTTL    time.Duration
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	tracer       trace.Tracer
	hub          *feedHub
	nodeID       string
}

// feedHub keeps track of active websocket subscribers.
type feedHub struct {
	mu      sync.RWMutex
	clients map[*feedClient]struct{}
	log     zerolog.Logger
}

type feedClient struct {
	conn    *websocket.Conn
	send    chan dto.ActionLogResponse
	options FeedConnectionOptions
	service *feedService
	closed  chan struct{}
	once    sync.Once
}

type feedEvent struct {
	Source string                `json:"source"`
	Entry  dto.ActionLogResponse `json:"entry"`
	SentAt time.Time             `json:"sent_at"`
}

// NewFeedService creates the live activity feed service.
func NewFeedService(redisClient *redis.Client, channelBase string, recentTTL time.Duration, natsConn *nats.Conn, logger zerolog.Logger) FeedService {
	hub := &feedHub{
		clients: make(map[*feedClient]struct{}),
		log:     logger.With().Str("component", "feed_hub").Logger(),
	}

	tracer := otel.Tracer("github.com/skuldata/skuldata-api/internal/service/feed")

	channel := ""
	recentKey := ""
	natsSubject := ""
	if channelBase != "" {
		channel = channelBase + ":activity"
		recentKey = channelBase + ":activity:recent"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".activity"
	}

	return &feedService{
		redis:        redisClient,
		redisChannel: channel,
		redisRecent:  recentKey,
		recentTTL:    recentTTL,
		nats:         natsConn,
		natsSubject:  natsSubject,
		logger:       logger.With().Str("component", "feed_service").Logger(),
		tracer:       tracer,
		hub:          hub,
		nodeID:       uuid.NewString(),
	}
}

func (s *feedService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *feedService) ServeConnection(conn *websocket.Conn, opts FeedConnectionOptions) {
	baseCtx := opts.Context
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	client := &feedClient{
		conn:    conn,
		send:    make(chan dto.ActionLogResponse, feedSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
	}

	s.hub.register(client)
	observability.FeedConnections().Inc()

	for _, entry := range s.fetchRecent(baseCtx) {
		select {
		case client.send <- entry:
		default:
		}
	}

	go client.writer()
	client.reader()
}

// Publish fans one freshly written entry out to local subscribers, the
// replay cache and the cross-node channels. Registered as the recorder's
// post-write callback, so it must never block.
func (s *feedService) Publish(entry models.ActionLog) {
	response := dto.NewActionLogResponse(entry)

	ctx := context.Background()
	spanCtx, span := s.tracer.Start(ctx, "feed.publish", trace.WithAttributes(
		attribute.String("audit.category", string(entry.Category)),
		attribute.String("audit.actor_tag", entry.ActorTag.String()),
	))
	defer span.End()

	s.cacheRecent(spanCtx, response)
	s.hub.broadcast(response)

	if err := s.mirror(spanCtx, response); err != nil {
		span.RecordError(err)
		s.logger.Warn().Err(err).Msg("failed to mirror feed event")
	}
}

// Recent returns the cached replay window, newest first.
func (s *feedService) Recent(ctx context.Context) ([]dto.ActionLogResponse, error) {
	if s.redis == nil || s.redisRecent == "" {
		return nil, nil
	}

	raw, err := s.redis.LRange(ctx, s.redisRecent, 0, feedRecentLimit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]dto.ActionLogResponse, 0, len(raw))
	for _, item := range raw {
		var entry dto.ActionLogResponse
		if err := json.Unmarshal([]byte(item), &entry); err != nil {
			s.logger.Warn().Err(err).Msg("invalid cached feed entry")
			continue
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *feedService) cacheRecent(ctx context.Context, entry dto.ActionLogResponse) {
	if s.redis == nil || s.redisRecent == "" {
		return
	}

	payload, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to marshal feed entry for cache")
		return
	}

	pipe := s.redis.TxPipeline()
	pipe.LPush(ctx, s.redisRecent, payload)
	pipe.LTrim(ctx, s.redisRecent, 0, feedRecentLimit-1)
	if s.recentTTL > 0 {
		pipe.Expire(ctx, s.redisRecent, s.recentTTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to cache feed entry")
	}
}

func (s *feedService) fetchRecent(ctx context.Context) []dto.ActionLogResponse {
	entries, err := s.Recent(ctx)
	if err != nil {
		s.logger.Debug().Err(err).Msg("failed to load feed replay window")
		return nil
	}

	// Replay oldest first so the client ends up in chronological order.
	for left, right := 0, len(entries)-1; left < right; left, right = left+1, right-1 {
		entries[left], entries[right] = entries[right], entries[left]
	}
	return entries
}

func (s *feedService) mirror(ctx context.Context, entry dto.ActionLogResponse) error {
	event := feedEvent{
		Source: s.nodeID,
		Entry:  entry,
		SentAt: time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, payload).Err(); err != nil {
			return err
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, payload); err != nil {
			return err
		}
	}

	return nil
}

func (s *feedService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("feed redis subscription closed")
			return
		}
		s.handleEvent([]byte(msg.Payload))
	}
}

func (s *feedService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "skuldata-feed", func(msg *nats.Msg) {
		s.handleEvent(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats feed subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain feed nats subscription")
		}
	}()
}

func (s *feedService) handleEvent(data []byte) {
	var event feedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		s.logger.Warn().Err(err).Msg("invalid feed event")
		return
	}

	if event.Source == s.nodeID {
		return
	}

	s.hub.broadcast(event.Entry)
}

func (h *feedHub) register(client *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.clients[client] = struct{}{}
	h.log.Debug().Str("user_id", client.options.UserID).Msg("feed client connected")
}

func (h *feedHub) unregister(client *feedClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.clients, client)
	h.log.Debug().Str("user_id", client.options.UserID).Msg("feed client disconnected")
}

func (h *feedHub) broadcast(entry dto.ActionLogResponse) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- entry:
			observability.FeedDelivered().Inc()
		default:
			h.log.Warn().Str("user_id", client.options.UserID).Msg("dropping feed event for slow client")
		}
	}
}

func (c *feedClient) reader() {
	defer c.close()

	// The feed is one-directional. The read loop only exists to detect
	// disconnects and answer control frames.
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.service.logger.Debug().Err(err).Msg("feed read loop ended")
			return
		}
	}
}

func (c *feedClient) writer() {
	defer c.close()

	for {
		select {
		case entry, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(entry); err != nil {
				c.service.logger.Debug().Err(err).Msg("feed write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("feed ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *feedClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		observability.FeedConnections().Dec()
		_ = c.conn.Close()
	})
}
