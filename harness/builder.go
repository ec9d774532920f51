package harness

import (
	"log/slog"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/sarchlab/simharness/bridge"
	"github.com/sarchlab/simharness/peekpoke"
	"github.com/sarchlab/simharness/tokenhash"
	"github.com/seehuhn/mt19937"
)

// Builder creates harnesses.
type Builder struct {
	registry    *bridge.Registry
	targetName  string
	resetSignal string
	seed        uint64
	log         bool
	logger      *slog.Logger
}

// MakeBuilder returns a builder with the default seed and logging on.
func MakeBuilder() Builder {
	return Builder{
		resetSignal: DefaultResetSignal,
		seed:        DefaultRandomSeed,
		log:         true,
	}
}

// WithRegistry sets the bridge registry. It must hold exactly one peek-poke
// transport.
func (b Builder) WithRegistry(registry *bridge.Registry) Builder {
	b.registry = registry
	return b
}

// WithTargetName sets the name of the design under test.
func (b Builder) WithTargetName(name string) Builder {
	b.targetName = name
	return b
}

// WithResetSignal sets the input asserted by TargetReset.
func (b Builder) WithResetSignal(name string) Builder {
	b.resetSignal = name
	return b
}

// WithRandomSeed sets the seed of the random source.
func (b Builder) WithRandomSeed(seed uint64) Builder {
	b.seed = seed
	return b
}

// WithLog sets whether expectation outcomes are logged.
func (b Builder) WithLog(log bool) Builder {
	b.log = log
	return b
}

// WithLogger sets the logger of the diagnostics. The default logger is used
// if none is set.
func (b Builder) WithLogger(logger *slog.Logger) Builder {
	b.logger = logger
	return b
}

type tokenObservable interface {
	SetTokenObserver(o peekpoke.TokenObserver)
}

// Build creates a harness and initializes the bridges of the registry.
func (b Builder) Build() (*Harness, error) {
	if b.registry == nil {
		panic("registry is not set")
	}

	pp, err := bridge.GetBridge[peekpoke.Transport](b.registry)
	if err != nil {
		return nil, errors.Wrap(err, "peek-poke bridge")
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}

	src := mt19937.New()
	src.Seed(int64(b.seed))

	h := &Harness{
		registry:     b.registry,
		peekPoke:     pp,
		targetName:   b.targetName,
		resetSignal:  b.resetSignal,
		logger:       logger.With("Target", b.targetName),
		randomSeed:   b.seed,
		random:       rand.New(src),
		tokenHashers: tokenhash.New(),
		pass:         true,
		log:          b.log,
	}

	if o, ok := pp.(tokenObservable); ok {
		o.SetTokenObserver(h.tokenHashers)
	}

	if err := b.registry.InitAll(); err != nil {
		return nil, err
	}

	return h, nil
}
