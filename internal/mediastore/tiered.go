package mediastore

import (
	"context"
	"fmt"

	"voicebridge/internal/logger"
	"voicebridge/internal/metrics"
)

// Remote is the object-storage tier.
type Remote interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
	Delete(ctx context.Context, name string) error
}

// RemoteOutcome is the result kind of a remote upload attempt.
type RemoteOutcome int

const (
	RemoteDisabled RemoteOutcome = iota
	RemoteStored
	RemoteFailed
)

func (o RemoteOutcome) String() string {
	switch o {
	case RemoteStored:
		return "stored"
	case RemoteFailed:
		return "failed"
	default:
		return "disabled"
	}
}

type remoteResult struct {
	outcome RemoteOutcome
	url     string
	err     error
}

// Tiered prefers the remote tier and falls back to local disk:
//
//	remote stored              -> remote URL
//	remote failed or disabled,
//	local ok                   -> local URL
//	local failed               -> *StorageError
type Tiered struct {
	remote  Remote
	local   *Local
	metrics *metrics.Metrics
}

// NewTiered builds the store. A nil remote disables the remote tier.
func NewTiered(remote Remote, local *Local, m *metrics.Metrics) *Tiered {
	return &Tiered{remote: remote, local: local, metrics: m}
}

func (t *Tiered) tryRemote(ctx context.Context, name string, data []byte) remoteResult {
	if t.remote == nil {
		return remoteResult{outcome: RemoteDisabled}
	}
	url, err := t.remote.Put(ctx, name, data)
	if err != nil {
		return remoteResult{outcome: RemoteFailed, err: err}
	}
	return remoteResult{outcome: RemoteStored, url: url}
}

// Store persists data as name. baseURL ("https://host") prefixes local URLs.
func (t *Tiered) Store(ctx context.Context, name string, data []byte, baseURL string) (Object, error) {
	if !ValidName(name) {
		return Object{}, fmt.Errorf("store %q: %w", name, ErrInvalidName)
	}

	remote := t.tryRemote(ctx, name, data)
	if remote.outcome == RemoteStored {
		t.metrics.RecordAudioStored(string(TierRemote))
		logger.Debug("audio stored",
			"module", "mediastore", "action", "store", "resource", "audio", "result", "ok",
			"tier", TierRemote, "name", name, "bytes", len(data))
		return Object{Name: name, URL: remote.url, Tier: TierRemote}, nil
	}
	if remote.outcome == RemoteFailed {
		logger.Warn("remote audio upload failed, falling back to local",
			"module", "mediastore", "action", "store", "resource", "audio", "result", "fallback",
			"name", name, "error", remote.err)
	}

	url, err := t.local.Put(ctx, name, data, baseURL)
	if err != nil {
		logger.Error("audio store failed",
			"module", "mediastore", "action", "store", "resource", "audio", "result", "failed",
			"name", name, "remote", remote.outcome.String(), "error", err)
		return Object{}, &StorageError{Name: name, RemoteErr: remote.err, LocalErr: err}
	}

	t.metrics.RecordAudioStored(string(TierLocal))
	logger.Debug("audio stored",
		"module", "mediastore", "action", "store", "resource", "audio", "result", "ok",
		"tier", TierLocal, "name", name, "bytes", len(data))
	return Object{Name: name, URL: url, Tier: TierLocal}, nil
}

// Remove deletes obj from the tier it was stored in.
func (t *Tiered) Remove(ctx context.Context, obj Object) error {
	switch obj.Tier {
	case TierRemote:
		if t.remote == nil {
			return fmt.Errorf("remove %s: remote tier disabled", obj.Name)
		}
		return t.remote.Delete(ctx, obj.Name)
	case TierLocal:
		return t.local.Delete(ctx, obj.Name)
	default:
		return fmt.Errorf("remove %s: unknown tier %q", obj.Name, obj.Tier)
	}
}
