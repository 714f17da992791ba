package session

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kbukum/scribe/audio"
	apperrors "github.com/kbukum/scribe/errors"
	"github.com/kbukum/scribe/logger"
	"github.com/kbukum/scribe/observability"
	"github.com/kbukum/scribe/postprocess"
	"github.com/kbukum/scribe/transcription"
	"github.com/kbukum/scribe/transcription/backend"
	"github.com/kbukum/scribe/util"
)

const component = "session"

// BackendProvider leases backends. *backend.Factory implements it.
type BackendProvider interface {
	Acquire(ctx context.Context, cfg backend.Configuration) (*backend.Lease, error)
}

// Persister stores completed results.
type Persister interface {
	Save(ctx context.Context, r *transcription.Result) error
}

// Stager copies the captured audio somewhere durable and returns the copy's
// path.
type Stager interface {
	Stage(ctx context.Context, jobID, src string) (string, error)
}

// Mirror copies the durable audio to secondary storage.
type Mirror interface {
	Copy(ctx context.Context, jobID, path string) error
}

// Outcome is the terminal state of a session.
type Outcome struct {
	Phase  Phase
	Result *transcription.Result
	Err    error
}

// Code returns the error code of a failed outcome.
func (o Outcome) Code() apperrors.ErrorCode {
	return apperrors.CodeOf(o.Err)
}

// Session runs one job. It is not reusable.
type Session struct {
	job      *transcription.Job
	backends BackendProvider

	local          backend.LocalConfig
	cloud          backend.CloudConfig
	updateDefaults bool
	chain          postprocess.Chain
	persister      Persister
	stager         Stager
	mirror         Mirror

	log      *logger.Logger
	metrics  *observability.Metrics
	observer func(from, to Phase)

	mu       sync.Mutex
	phase    Phase
	cancelFn context.CancelFunc

	started   atomic.Bool
	cancelled atomic.Bool
}

// New creates an idle session for job.
func New(job *transcription.Job, backends BackendProvider, opts ...Option) *Session {
	s := &Session{job: job, backends: backends}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		s.log = logger.NewNop()
	}
	s.log = s.log.WithComponent(component)
	return s
}

// Job returns the session's job.
func (s *Session) Job() *transcription.Job { return s.job }

// Phase returns the current phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Cancel requests cancellation. The running stage finishes and the session
// ends as Cancelled at the next checkpoint without persisting anything.
func (s *Session) Cancel() {
	s.cancelled.Store(true)
	s.mu.Lock()
	cancel := s.cancelFn
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}

// Run executes the job to a terminal phase. It may be called once.
func (s *Session) Run(ctx context.Context) Outcome {
	if !s.started.CompareAndSwap(false, true) {
		return Outcome{Phase: Error, Err: apperrors.InvalidState("session has already run")}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	s.mu.Lock()
	s.cancelFn = cancel
	s.mu.Unlock()
	if s.cancelled.Load() {
		cancel()
	}

	ctx = logger.ContextWithJobID(ctx, s.job.ID)
	ctx, span := observability.StartSpan(ctx, observability.SpanSession)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrJobID, s.job.ID)
	observability.SetSpanAttribute(ctx, observability.AttrBackend, string(s.job.Backend))

	if s.metrics != nil {
		s.metrics.SessionStarted(ctx)
		defer s.metrics.SessionEnded(ctx)
	}

	start := time.Now()
	out := s.run(ctx)
	elapsed := time.Since(start)

	observability.SetSpanAttribute(ctx, observability.AttrStatus, out.Phase.String())
	log := s.log.WithContext(ctx)
	switch out.Phase {
	case Completed:
		log.Info("transcription completed", logger.DurationFields("run", elapsed))
	case Cancelled:
		log.Info("transcription cancelled", logger.DurationFields("run", elapsed))
	default:
		observability.SetSpanError(ctx, out.Err)
		observability.SetSpanAttribute(ctx, observability.AttrErrorCode, string(out.Code()))
		log.Error("transcription failed", logger.MergeWithError(
			logger.Fields(logger.FieldCode, string(out.Code()), logger.FieldBackend, string(s.job.Backend)), out.Err))
	}
	if s.metrics != nil {
		s.metrics.RecordOperation(ctx, component, "run", out.Phase.String(), elapsed)
		if out.Phase == Error {
			s.metrics.RecordError(ctx, string(out.Code()), component)
		}
	}
	return out
}

func (s *Session) run(ctx context.Context) Outcome {
	if s.isCancelled(ctx) {
		return s.cancel()
	}

	s.transition(Loading)
	lease, err := s.acquire(ctx)
	if err != nil {
		if s.isCancelled(ctx) {
			return s.cancel()
		}
		return s.fail(err)
	}
	healthy := false
	defer func() {
		if err := lease.End(healthy); err != nil {
			s.log.WithContext(ctx).Warn("backend release failed", logger.ErrorFields("release", err))
		}
	}()
	if s.isCancelled(ctx) {
		return s.cancel()
	}

	s.transition(ProcessingAudio)
	audioRef, duration, err := s.prepareAudio(ctx)
	if s.isCancelled(ctx) {
		return s.cancel()
	}
	if err != nil {
		return s.fail(err)
	}

	s.transition(Transcribing)
	if s.isCancelled(ctx) {
		return s.cancel()
	}
	raw, err := s.transcribe(ctx, lease.Backend(), audioRef)
	if s.isCancelled(ctx) {
		return s.cancel()
	}
	if err != nil {
		return s.fail(err)
	}

	text := s.chain.Replace(strings.TrimSpace(raw))
	var enhanced *string
	if s.chain.WantsEnhancement() {
		s.transition(Enhancing)
		out, err := s.enhance(ctx, text)
		if s.isCancelled(ctx) {
			return s.cancel()
		}
		if err != nil {
			s.log.WithContext(ctx).Warn("enhancement failed, keeping transcript", logger.ErrorFields("enhance", err))
		} else {
			enhanced = util.Ptr(out)
		}
	}
	if s.isCancelled(ctx) {
		return s.cancel()
	}

	result := &transcription.Result{
		ID:           s.job.ID,
		Text:         text,
		EnhancedText: enhanced,
		Duration:     duration,
		AudioRef:     audioRef,
		Backend:      string(s.job.Backend),
		Language:     s.job.Language,
		CreatedAt:    time.Now().UTC(),
	}
	s.persist(ctx, result)

	healthy = true
	s.transition(Completed)
	return Outcome{Phase: Completed, Result: result}
}

func (s *Session) acquire(ctx context.Context) (*backend.Lease, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanLoading)
	defer span.End()

	lease, err := s.backends.Acquire(ctx, backend.Configuration{
		Backend:        s.job.Backend,
		Local:          s.local,
		Cloud:          s.cloud,
		UpdateDefaults: s.updateDefaults,
	})
	if err != nil {
		if !apperrors.HasCode(err, apperrors.ErrCodeConfigurationFailed) {
			err = apperrors.ConfigurationFailed(string(s.job.Backend), err)
		}
		observability.SetSpanError(ctx, err)
		return nil, err
	}
	return lease, nil
}

// prepareAudio re-checks the source, stages the durable copy and fills in
// the duration when the job does not carry one.
func (s *Session) prepareAudio(ctx context.Context) (string, float64, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanProcessing)
	defer span.End()

	if _, err := os.Stat(s.job.AudioPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = apperrors.FileNotFound(s.job.AudioPath)
		} else {
			err = apperrors.Internal(err)
		}
		observability.SetSpanError(ctx, err)
		return "", 0, err
	}
	if s.isCancelled(ctx) {
		return "", 0, ctx.Err()
	}

	ref := s.job.AudioPath
	if s.stager != nil {
		staged, err := s.stager.Stage(ctx, s.job.ID, s.job.AudioPath)
		if err != nil {
			observability.SetSpanError(ctx, err)
			return "", 0, err
		}
		ref = staged
	}

	duration := s.job.Duration
	if duration <= 0 {
		info, err := audio.Probe(ref)
		if err != nil {
			s.log.WithContext(ctx).Debug("audio duration unavailable", logger.ErrorFields("probe", err))
		} else {
			duration = info.Duration.Seconds()
		}
	}
	return ref, duration, nil
}

func (s *Session) transcribe(ctx context.Context, b transcription.Backend, path string) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanTranscribing)
	defer span.End()
	observability.SetSpanAttribute(ctx, observability.AttrBackend, b.Name())

	b.Configure(s.job.Language, s.job.Prompt)
	start := time.Now()
	text, err := b.Transcribe(ctx, path)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return "", err
	}
	s.log.WithContext(ctx).Debug("backend returned transcript", logger.Fields(
		logger.FieldBackend, b.Name(),
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return text, nil
}

func (s *Session) enhance(ctx context.Context, text string) (string, error) {
	ctx, span := observability.StartSpan(ctx, observability.SpanEnhancing)
	defer span.End()

	out, err := s.chain.Enhance(ctx, text)
	if err != nil {
		observability.SetSpanError(ctx, err)
		return "", err
	}
	return out, nil
}

// persist stores the result and mirrors the audio. Failures are logged and
// never change the outcome.
func (s *Session) persist(ctx context.Context, r *transcription.Result) {
	ctx, span := observability.StartSpan(ctx, observability.SpanPersisting)
	defer span.End()
	log := s.log.WithContext(ctx)

	if s.persister != nil {
		if err := s.persister.Save(ctx, r); err != nil {
			if !apperrors.IsAppError(err) {
				err = apperrors.PersistenceFailed(err)
			}
			observability.SetSpanError(ctx, err)
			log.Error("result not persisted", logger.ErrorFields("persist", err))
		}
	}
	if s.mirror != nil && s.stager != nil {
		if err := s.mirror.Copy(ctx, r.ID, r.AudioRef); err != nil {
			log.Warn("audio mirror failed", logger.ErrorFields("mirror", err))
		}
	}
}

func (s *Session) isCancelled(ctx context.Context) bool {
	return s.cancelled.Load() || ctx.Err() != nil
}

func (s *Session) cancel() Outcome {
	s.transition(Cancelled)
	return Outcome{Phase: Cancelled}
}

func (s *Session) fail(err error) Outcome {
	s.transition(Error)
	return Outcome{Phase: Error, Err: err}
}

func (s *Session) transition(to Phase) {
	s.mu.Lock()
	from := s.phase
	s.phase = to
	s.mu.Unlock()

	s.log.Debug("phase changed", logger.Fields(logger.FieldJobID, s.job.ID, "from", from.String(), logger.FieldPhase, to.String()))
	if s.observer != nil {
		s.observer(from, to)
	}
}
