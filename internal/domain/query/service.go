package query

import (
	"context"

	"golang.org/x/sync/singleflight"

	"vibibay-client-go/internal/domain/api"
	"vibibay-client-go/internal/domain/eventbus"
	"vibibay-client-go/internal/platform/errors"
	"vibibay-client-go/internal/platform/logging"
)

// ErrNoSession is the inert "not requested" outcome for token-gated reads
// issued without a stored credential. No network call is made.
var ErrNoSession = errors.NewRemote(errors.KindAuth, "query", errors.CodeNoSession,
	"no active session", "", 0)

// Options carries injectable collaborators. Zero values get sensible
// defaults; tests swap in fakes.
type Options struct {
	Cache Cache
	// OpenURL opens an external payment link. Nil disables opening.
	OpenURL func(url string) error
	// CopyText places a device access key on the clipboard. Nil disables
	// copying.
	CopyText func(text string) error
}

// Service turns each client operation into cached, deduplicated,
// invalidatable state and surfaces mutation outcomes on the event bus.
type Service struct {
	client   *api.Client
	cache    Cache
	bus      *eventbus.Bus
	logger   *logging.Logger
	group    singleflight.Group
	openURL  func(string) error
	copyText func(string) error
}

func NewService(client *api.Client, bus *eventbus.Bus, logger *logging.Logger, opts Options) *Service {
	cache := opts.Cache
	if cache == nil {
		cache = NewMemoryCache()
	}
	return &Service{
		client:   client,
		cache:    cache,
		bus:      bus,
		logger:   logger,
		openURL:  opts.OpenURL,
		copyText: opts.CopyText,
	}
}

// Authenticated reports whether a credential is stored for the client's
// profile.
func (s *Service) Authenticated(ctx context.Context) bool {
	return s.client.HasSession(ctx)
}

// User returns the cached profile, fetching it on a miss.
func (s *Service) User(ctx context.Context) (api.User, error) {
	return read(ctx, s, UserKey(), func(ctx context.Context) (api.User, error) {
		return s.client.UserProfile(ctx)
	})
}

// Devices returns the device collection in server order.
func (s *Service) Devices(ctx context.Context) ([]api.Device, error) {
	return read(ctx, s, DevicesKey(), func(ctx context.Context) ([]api.Device, error) {
		resp, err := s.client.Devices(ctx)
		if err != nil {
			return nil, err
		}
		return resp.Devices, nil
	})
}

// Device returns one device by id.
func (s *Service) Device(ctx context.Context, id int64) (api.Device, error) {
	return read(ctx, s, DeviceKey(id), func(ctx context.Context) (api.Device, error) {
		return s.client.Device(ctx, id)
	})
}

// Invalidate marks the key stale so the next read refetches.
func (s *Service) Invalidate(key Key) {
	s.cache.Invalidate(key)
	s.bus.Publish(eventbus.TopicCacheInvalidated, key.String())
}

func (s *Service) invalidate(keys ...Key) {
	for _, key := range keys {
		s.Invalidate(key)
	}
}

// read is the shared token-gated read path. A missing session short-circuits
// to ErrNoSession; concurrent identical reads collapse to one network call;
// a completion that raced an invalidation is returned to its callers but not
// cached.
func read[T any](ctx context.Context, s *Service, key Key, call func(context.Context) (T, error)) (T, error) {
	var zero T

	if !s.client.HasSession(ctx) {
		return zero, ErrNoSession
	}

	if cached, ok := s.cache.Get(key); ok {
		if typed, ok := cached.(T); ok {
			return typed, nil
		}
	}

	value, err, _ := s.group.Do(key.String(), func() (any, error) {
		gen := s.cache.Generation(key)
		result, err := call(ctx)
		if err != nil {
			return nil, err
		}
		if !s.cache.SetIfCurrent(key, result, gen) && s.logger != nil {
			s.logger.Debug("discarding stale completion for %s", key)
		}
		return result, nil
	})
	if err != nil {
		return zero, err
	}
	return value.(T), nil
}
