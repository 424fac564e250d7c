// Package ambient keeps a steady population of decorative background
// particles. It knows nothing about tasks.
package ambient

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"
)

const (
	DefaultPopulation = 18
	DefaultLifetime   = 45 * time.Second
	DefaultRespawn    = 2 * time.Second
)

type Particle struct {
	ID       int
	Size     float64 // 40..120
	X, Y     float64 // percent of the surface, 0..100
	Delay    time.Duration
	Duration time.Duration
	Born     time.Time
}

type Config struct {
	Population int
	Lifetime   time.Duration
	Respawn    time.Duration
}

func (c Config) withDefaults() Config {
	if c.Population <= 0 {
		c.Population = DefaultPopulation
	}
	if c.Lifetime <= 0 {
		c.Lifetime = DefaultLifetime
	}
	if c.Respawn <= 0 {
		c.Respawn = DefaultRespawn
	}
	return c
}

// Field retires each particle Lifetime after its birth and spawns a fresh one
// Respawn later, so the population stays at Population indefinitely.
type Field struct {
	mu      sync.Mutex
	cfg     Config
	rng     *rand.Rand
	live    []Particle
	pending []time.Time
	nextID  int
}

func NewField(cfg Config, seed uint64, now time.Time) *Field {
	f := &Field{
		cfg: cfg.withDefaults(),
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
	for range f.cfg.Population {
		f.live = append(f.live, f.spawn(now))
	}
	return f
}

func (f *Field) spawn(born time.Time) Particle {
	f.nextID++
	return Particle{
		ID:       f.nextID,
		Size:     f.rng.Float64()*80 + 40,
		X:        f.rng.Float64() * 100,
		Y:        f.rng.Float64() * 100,
		Delay:    time.Duration(f.rng.Float64() * float64(20*time.Second)),
		Duration: time.Duration(f.rng.Float64()*float64(25*time.Second)) + 18*time.Second,
		Born:     born,
	}
}

// Advance retires expired particles and births their due replacements.
// Replacements are born at their scheduled time, not at now, so coarse ticks
// do not drift the schedule.
func (f *Field) Advance(now time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for {
		changed := false

		kept := f.live[:0]
		for _, p := range f.live {
			retire := p.Born.Add(f.cfg.Lifetime)
			if !now.Before(retire) {
				f.pending = append(f.pending, retire.Add(f.cfg.Respawn))
				changed = true
				continue
			}
			kept = append(kept, p)
		}
		f.live = kept

		sort.Slice(f.pending, func(i, j int) bool { return f.pending[i].Before(f.pending[j]) })
		due := 0
		for _, at := range f.pending {
			if now.Before(at) {
				break
			}
			f.live = append(f.live, f.spawn(at))
			due++
			changed = true
		}
		f.pending = f.pending[due:]

		if !changed {
			return
		}
	}
}

// Particles returns the live particles.
func (f *Field) Particles() []Particle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Particle(nil), f.live...)
}

// Pending reports how many replacements are waiting to be born.
func (f *Field) Pending() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending)
}

// Run advances the field on every tick until ctx is done.
func (f *Field) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			f.Advance(now)
		}
	}
}
