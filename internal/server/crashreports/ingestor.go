package crashreports

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/common"
	"github.com/dmitrijs2005/launchserver/internal/filex"
	"github.com/dmitrijs2005/launchserver/internal/logging"
)

// Config is the ingestor configuration.
type Config struct {
	Enabled           bool
	RequireAuth       bool
	RateLimitPerHour  int
	MaxFileSize       int64
	MaxReportsPerUser int
	ChunkIdleTimeout  time.Duration
	Enrich            bool
	ProjectName       string
}

const rateWindow = time.Hour

// AnonymousDir holds reports submitted without a session.
const AnonymousDir = "_anonymous"

type Ingestor struct {
	cfg     Config
	storage Storage
	limiter *RateLimiter
	chunks  *ChunkBuffers
	logger  logging.Logger
	now     func() time.Time
}

type Option func(*Ingestor)

// WithClock replaces time.Now for the ingestor and its state.
func WithClock(now func() time.Time) Option {
	return func(i *Ingestor) { i.now = now }
}

func NewIngestor(cfg Config, storage Storage, logger logging.Logger, opts ...Option) *Ingestor {
	i := &Ingestor{cfg: cfg, storage: storage, logger: logger, now: time.Now}
	for _, o := range opts {
		o(i)
	}
	i.limiter = NewRateLimiter(cfg.RateLimitPerHour, rateWindow, i.now)
	i.chunks = NewChunkBuffers(cfg.MaxFileSize, cfg.ChunkIdleTimeout, i.now)
	return i
}

// Ingest runs r through the pipeline. A part that is not the last one
// returns a pending Result and nothing else happens.
func (i *Ingestor) Ingest(ctx context.Context, r *Report) (*Result, error) {
	if err := i.validateClient(ctx, r); err != nil {
		return nil, err
	}
	o, err := resolveOwner(r)
	if err != nil {
		return nil, err
	}

	content := r.Content
	if r.IsPart {
		if r.RequestID == "" {
			return nil, fmt.Errorf("%w: chunked upload without request id", common.ErrInvalidFormat)
		}
		full, done, err := i.chunks.Append(o.key, r.RequestID, r.Content, r.IsLastPart)
		if err != nil {
			i.logger.Warn(ctx, "chunked upload dropped", "username", r.Username, "request", r.RequestID, "error", err)
			return nil, err
		}
		if !done {
			return &Result{Pending: true, Username: o.dir}, nil
		}
		content = full
	}

	reservation, err := i.limiter.Reserve(o.key)
	if err != nil {
		i.logger.Warn(ctx, "crash report rate limited", "username", r.Username, "ip", r.ClientIP)
		return nil, err
	}
	path, err := i.persist(ctx, r, o.dir, content)
	if err != nil {
		reservation.Cancel()
		return nil, err
	}
	reservation.Commit()

	i.logger.Info(ctx, "crash report saved", "username", r.Username, "path", path)
	return &Result{Username: o.dir, Path: path}, nil
}

// owner is where a report is filed (dir) and whose quota and chunk buffers
// it uses (key).
type owner struct {
	dir string
	key string
}

// resolveOwner sanitizes the username once. Reports without a session are
// filed under AnonymousDir and keyed by client IP, so they never touch a
// real user's quota or directory. "@" cannot survive sanitization, so the
// anonymous keys do not collide with usernames.
func resolveOwner(r *Report) (owner, error) {
	user, err := filex.SanitizeSegment(r.Username)
	if err != nil {
		return owner{}, fmt.Errorf("%w: bad username", common.ErrInvalidFormat)
	}
	if !r.Authenticated {
		return owner{dir: AnonymousDir, key: "anonymous@" + r.ClientIP}, nil
	}
	return owner{dir: user, key: user}, nil
}

func (i *Ingestor) validateClient(ctx context.Context, r *Report) error {
	if !i.cfg.Enabled {
		return fmt.Errorf("%w: crash reports are disabled", common.ErrAccessDenied)
	}
	if i.cfg.RequireAuth && !r.Authenticated {
		i.logger.Warn(ctx, "unauthenticated crash report rejected", "ip", r.ClientIP)
		return fmt.Errorf("%w: authentication required", common.ErrAccessDenied)
	}
	if r.Username == "" {
		return fmt.Errorf("%w: username is required", common.ErrAccessDenied)
	}
	return nil
}

// persist validates size and content, then writes under user, an already
// sanitized directory name.
func (i *Ingestor) persist(ctx context.Context, r *Report, user string, content []byte) (string, error) {
	if int64(len(content)) > i.cfg.MaxFileSize {
		return "", fmt.Errorf("%w: file size exceeds limit of %d bytes", common.ErrPayloadTooLarge, i.cfg.MaxFileSize)
	}
	if !hasSignature(string(content)) {
		return "", common.ErrInvalidFormat
	}

	now := i.now()
	name := generateFileName(r.FileName, now)
	if r.KeepFileName {
		var err error
		if name, err = filex.SanitizeSegment(r.FileName); err != nil {
			return "", fmt.Errorf("%w: bad file name", common.ErrInvalidFormat)
		}
	}

	data := content
	if i.cfg.Enrich {
		data = enrich(r, content, i.cfg.ProjectName, now)
	}

	path, err := i.create(ctx, user, name, data)
	if err != nil {
		i.logger.Error(ctx, "crash report write failed", "username", user, "file", name, "error", err)
		return "", fmt.Errorf("%w: %v", common.ErrStorageFailure, err)
	}

	if i.cfg.MaxReportsPerUser > 0 {
		if n, err := i.storage.Prune(ctx, user, i.cfg.MaxReportsPerUser); err != nil {
			i.logger.Error(ctx, "crash report prune failed", "username", user, "error", err)
		} else if n > 0 {
			i.logger.Debug(ctx, "old crash reports pruned", "username", user, "count", n)
		}
	}
	return path, nil
}

// create retries with a numeric suffix while the name is taken.
func (i *Ingestor) create(ctx context.Context, user, name string, data []byte) (string, error) {
	base, ext := name, ""
	if dot := strings.LastIndexByte(name, '.'); dot > 0 {
		base, ext = name[:dot], name[dot:]
	}

	candidate := name
	for n := 2; ; n++ {
		path, err := i.storage.Create(ctx, user, candidate, data)
		if !errors.Is(err, ErrExists) {
			return path, err
		}
		if n > maxNameAttempts {
			return "", err
		}
		candidate = base + "-" + strconv.Itoa(n) + ext
	}
}

// Janitor evicts idle chunk buffers and stale rate-limit entries.
func (i *Ingestor) Janitor() (evicted, pruned int) {
	return i.chunks.Evict(), i.limiter.Prune()
}

// RunJanitor calls Janitor every interval until ctx is done.
func (i *Ingestor) RunJanitor(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if evicted, pruned := i.Janitor(); evicted > 0 || pruned > 0 {
				i.logger.Debug(ctx, "crash report state cleaned", "chunks", evicted, "limits", pruned)
			}
		}
	}
}

// Close drops all in-memory state.
func (i *Ingestor) Close() {
	i.chunks.Reset()
	i.limiter.Reset()
}
