package cog

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/keshon/lavadeck/internal/command"
	"github.com/keshon/lavadeck/internal/lavalink"
	"github.com/keshon/lavadeck/internal/middleware"
	"github.com/keshon/lavadeck/pkg/cmd"
	"github.com/keshon/lavadeck/pkg/jobmgr"
)

var (
	ErrAlreadyLoaded = errors.New("cog already loaded")
	ErrNotLoaded     = errors.New("cog not loaded")
	ErrClosed        = errors.New("setup context closed")
)

// IncompatibleError is returned while a cog known to break playback is
// loaded.
type IncompatibleError struct {
	Cog string
}

func (e *IncompatibleError) Error() string {
	return fmt.Sprintf("%s is loaded, this cog is incompatible with lavadeck - lavadeck will not work as long as this cog is loaded", e.Cog)
}

// Cog is a group of playback commands with its own hooks.
type Cog interface {
	Name() string
	Commands() []command.DiscordCommand
	Hooks() Hooks
}

type Options struct {
	Client   *lavalink.Client
	Registry *cmd.Registry
	Jobs     *jobmgr.Manager
	// Incompatible names cogs that disable playback while loaded.
	Incompatible []string
	// Shared commands are registered by the first cog and removed when the
	// client shuts down. Keep names in Persistent to leave them in place.
	Shared     []command.DiscordCommand
	Persistent []string
	// Middlewares wrap every command outside the cog hooks.
	Middlewares  []cmd.Middleware
	DeveloperID  string
	ReadyTimeout time.Duration
}

type loaded struct {
	cog      Cog
	hooks    Hooks
	commands []string
	external bool

	initOnce sync.Once
	initErr  error
}

// SetupContext owns the set of loaded cogs. Create one at startup and Close
// it at shutdown.
type SetupContext struct {
	opts   Options
	ctx    context.Context
	cancel context.CancelFunc

	mu           sync.Mutex
	loaded       map[string]*loaded
	incompatible map[string]struct{}
	closed       bool
}

func NewSetupContext(opts Options) *SetupContext {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 30 * time.Second
	}
	if opts.Jobs == nil {
		opts.Jobs = jobmgr.NewManager(nil)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := &SetupContext{
		opts:         opts,
		ctx:          ctx,
		cancel:       cancel,
		loaded:       make(map[string]*loaded),
		incompatible: make(map[string]struct{}),
	}
	for _, name := range opts.Incompatible {
		s.incompatible[name] = struct{}{}
	}
	return s
}

func initJob(name string) string { return "initialize:" + name }

// Setup registers the cog's commands wrapped in its composed hooks and
// starts its initialization in the background.
func (s *SetupContext) Setup(c Cog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}
	if name, ok := s.incompatibleLoadedLocked(); ok {
		return &IncompatibleError{Cog: name}
	}
	name := c.Name()
	if _, ok := s.loaded[name]; ok {
		return fmt.Errorf("%s: %w", name, ErrAlreadyLoaded)
	}

	l := &loaded{cog: c}
	l.hooks = Compose(c.Hooks(), s.playbackHooks(l))

	reg := s.opts.Registry
	for _, shared := range s.opts.Shared {
		if _, ok := reg.Get(shared.Name()); !ok {
			command.RegisterCommand(reg, shared, s.opts.Middlewares...)
		}
	}
	mws := append([]cmd.Middleware{l.hooks.Middleware()}, s.opts.Middlewares...)
	for _, dc := range c.Commands() {
		command.RegisterCommand(reg, dc, mws...)
		l.commands = append(l.commands, dc.Name())
	}
	s.loaded[name] = l
	log.Info().Str("cog", name).Strs("commands", l.commands).Msg("cog loaded")

	if l.hooks.Initialize == nil {
		return nil
	}
	err := s.opts.Jobs.StartAsync(s.ctx, initJob(name), func(ctx context.Context) error {
		err := l.hooks.Initialize(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			log.Error().Err(err).Str("cog", name).Msg("error in initialize task")
		}
		return err
	})
	if err != nil {
		return fmt.Errorf("start %s initialization: %w", name, err)
	}
	return nil
}

// AddExternal records a cog loaded outside this context, so incompatible
// ones disable playback commands.
func (s *SetupContext) AddExternal(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.loaded[name]; !ok {
		s.loaded[name] = &loaded{external: true}
	}
}

func (s *SetupContext) Loaded(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.loaded[name]
	return ok
}

// Cogs returns the names of loaded cogs, sorted.
func (s *SetupContext) Cogs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.loaded))
	for name := range s.loaded {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Unload cancels the cog's initialization, runs its Unload hook and removes
// its commands. Shared commands go too once the client has no cog left.
func (s *SetupContext) Unload(ctx context.Context, name string) error {
	s.mu.Lock()
	l, ok := s.loaded[name]
	if ok {
		delete(s.loaded, name)
	}
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", name, ErrNotLoaded)
	}
	if l.external {
		return nil
	}

	done := s.opts.Jobs.Done(initJob(name))
	if s.opts.Jobs.Stop(initJob(name)) == nil {
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	var err error
	if l.hooks.Unload != nil {
		err = l.hooks.Unload(ctx)
	}
	reg := s.opts.Registry
	for _, c := range l.commands {
		reg.Remove(c)
	}
	if s.opts.Client.ShuttingDown() {
		for _, shared := range s.opts.Shared {
			if !slices.Contains(s.opts.Persistent, shared.Name()) {
				reg.Remove(shared.Name())
			}
		}
	}
	log.Info().Str("cog", name).Msg("cog unloaded")
	return err
}

// Close unloads every cog. The context cannot be used afterwards.
func (s *SetupContext) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	names := make([]string, 0, len(s.loaded))
	for name := range s.loaded {
		names = append(names, name)
	}
	s.mu.Unlock()

	sort.Strings(names)
	var errs []error
	for _, name := range names {
		if err := s.Unload(ctx, name); err != nil {
			errs = append(errs, err)
		}
	}
	s.cancel()
	return errors.Join(errs...)
}

func (s *SetupContext) incompatibleLoadedLocked() (string, bool) {
	names := make([]string, 0, len(s.incompatible))
	for name := range s.incompatible {
		if _, ok := s.loaded[name]; ok {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return "", false
	}
	sort.Strings(names)
	return names[0], true
}

// playbackHooks are the hooks every playback cog shares.
func (s *SetupContext) playbackHooks(l *loaded) Hooks {
	client := s.opts.Client
	return Hooks{
		Check: func(ctx context.Context, inv *cmd.Invocation) error {
			s.mu.Lock()
			name, bad := s.incompatibleLoadedLocked()
			s.mu.Unlock()
			if bad {
				return &IncompatibleError{Cog: name}
			}
			if b, ok := inv.Data.(command.InteractionContext); ok {
				return middleware.CheckChannel(client, b.Base())
			}
			return nil
		},
		BeforeInvoke: func(ctx context.Context, inv *cmd.Invocation) error {
			err := middleware.AwaitReady(ctx, client, s.opts.ReadyTimeout)
			if errors.Is(err, middleware.ErrNotReady) {
				log.Debug().Str("cog", l.cog.Name()).Strs("args", inv.Args).
					Msg("discarded command, client not ready")
			}
			return err
		},
		CommandError: func(ctx context.Context, inv *cmd.Invocation, err error) error {
			v, ok := inv.Data.(command.InteractionContext)
			if !ok {
				return err
			}
			b := v.Base()
			var incompatible *IncompatibleError
			if errors.As(err, &incompatible) {
				return b.ReplyText(ctx, incompatible.Error())
			}
			handled, rerr := middleware.ReplyError(ctx, client, s.opts.DeveloperID, b, err)
			if handled {
				return rerr
			}
			return err
		},
		Initialize: func(ctx context.Context) error {
			l.initOnce.Do(func() {
				client.Register(l.cog.Name())
				l.initErr = client.Initialize(ctx)
			})
			return l.initErr
		},
		Unload: func(context.Context) error {
			client.Unregister(l.cog.Name())
			return nil
		},
	}
}
