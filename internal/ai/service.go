package ai

import (
	"math/rand"
	"sync"
	"time"
)

// Clock отдает текущее время; подменяется в тестах.
type Clock interface {
	Now() time.Time
}

// Random источник случайности для советов, ответов по умолчанию и прогноза.
type Random interface {
	Float64() float64
	Intn(n int) int
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

// globalRandom использует потокобезопасные функции пакета math/rand.
type globalRandom struct{}

func (globalRandom) Float64() float64 {
	return rand.Float64()
}

func (globalRandom) Intn(n int) int {
	return rand.Intn(n)
}

type lockedRandom struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSeededRandom создает детерминированный источник, безопасный для конкурентного использования.
func NewSeededRandom(seed int64) Random {
	return &lockedRandom{rnd: rand.New(rand.NewSource(seed))}
}

func (r *lockedRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Float64()
}

func (r *lockedRandom) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rnd.Intn(n)
}

// Service реализует правила финансового ассистента. Не хранит состояние между вызовами.
type Service struct {
	clock  Clock
	random Random
}

// NewService создает сервис ассистента. nil-зависимости заменяются системными.
func NewService(clock Clock, random Random) *Service {
	if clock == nil {
		clock = systemClock{}
	}
	if random == nil {
		random = globalRandom{}
	}

	return &Service{clock: clock, random: random}
}

func (s *Service) today() time.Time {
	now := s.clock.Now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *Service) pick(options []string) string {
	return options[s.random.Intn(len(options))]
}
