package events

import (
	"log"
	"sync"
	"time"

	"github.com/athena3d/athena-backend/models"

	"github.com/google/uuid"
)

// Bus ordena e distribui os eventos de domínio do marketplace. Cada
// evento publicado recebe uma sequência monotônica (a partir de 1), um
// id e o timestamp de emissão; o histórico fica disponível para
// indexadores que precisam recuperar eventos perdidos.
type Bus struct {
	mu          sync.Mutex
	seq         uint64
	history     []models.Event
	subscribers map[uint64]chan models.Event
	nextSubID   uint64
}

func NewBus() *Bus {
	return &Bus{subscribers: make(map[uint64]chan models.Event)}
}

// Publish carimba e distribui o evento, devolvendo-o completo.
// Assinantes com buffer cheio perdem o evento (podem recuperar via Since).
func (b *Bus) Publish(ev models.Event) models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.seq++
	ev.Seq = b.seq
	ev.ID = uuid.New().String()
	ev.CreatedAt = time.Now()
	b.history = append(b.history, ev)

	for id, ch := range b.subscribers {
		select {
		case ch <- ev:
		default:
			log.Printf("Assinante %d com buffer cheio, evento %d descartado.", id, ev.Seq)
		}
	}
	return ev
}

// Subscribe registra um assinante com o buffer dado e retorna o canal e
// a função de cancelamento.
func (b *Bus) Subscribe(buffer int) (<-chan models.Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextSubID
	b.nextSubID++
	ch := make(chan models.Event, buffer)
	b.subscribers[id] = ch

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if sub, ok := b.subscribers[id]; ok {
			delete(b.subscribers, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Since retorna, em ordem, todos os eventos com sequência maior que seq.
func (b *Bus) Since(seq uint64) []models.Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	if seq >= b.seq {
		return []models.Event{}
	}
	// Sequências são contíguas a partir de 1, então o corte é direto.
	out := make([]models.Event, len(b.history[seq:]))
	copy(out, b.history[seq:])
	return out
}
