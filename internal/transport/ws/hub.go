package ws

import (
	"log/slog"
	"sync"
)

type Conn interface {
	Send(ev Event) error
	Close() error
	UserID() string
	GroupKey() string
}

// Hub — реестр живых соединений: ключ группы -> множество соединений.
// Создаётся в main и передаётся явно; никакого глобального состояния.
type Hub struct {
	mu     sync.RWMutex
	groups map[string]*group
}

// Мутации и рассылка одной группы идут под её собственным мьютексом:
// активность в одной комнате не задерживает остальные, а все получатели
// видят события своей комнаты в порядке вызовов Broadcast.
type group struct {
	mu     sync.Mutex
	conns  map[Conn]struct{}
	pruned bool
}

func NewHub() *Hub {
	return &Hub{groups: make(map[string]*group)}
}

// Add добавляет соединение в его группу; повторный Add того же
// соединения — no-op.
func (h *Hub) Add(c Conn) {
	for {
		g := h.getOrCreate(c.GroupKey())
		g.mu.Lock()
		if g.pruned {
			// группа удалена между выборкой и захватом — берём новую
			g.mu.Unlock()
			continue
		}
		g.conns[c] = struct{}{}
		g.mu.Unlock()
		return
	}
}

func (h *Hub) Remove(c Conn) {
	key := c.GroupKey()

	h.mu.RLock()
	g := h.groups[key]
	h.mu.RUnlock()
	if g == nil {
		return
	}

	g.mu.Lock()
	delete(g.conns, c)
	empty := len(g.conns) == 0
	if empty {
		g.pruned = true
	}
	g.mu.Unlock()

	if empty {
		h.mu.Lock()
		if h.groups[key] == g {
			delete(h.groups, key)
		}
		h.mu.Unlock()
	}
}

// Broadcast доставляет событие всем членам группы, включая инициатора.
// Неудачная доставка не прерывает остальные: мёртвое соединение
// закрывается, а с учёта его снимет собственный cleanup сессии.
func (h *Hub) Broadcast(key string, ev Event) {
	h.mu.RLock()
	g := h.groups[key]
	h.mu.RUnlock()
	if g == nil {
		return
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	for c := range g.conns {
		if err := c.Send(ev); err != nil {
			slog.Warn("ws broadcast delivery failed", "group", key, "user", c.UserID(), "err", err)
			_ = c.Close()
		}
	}
}

// GroupSize — для тестов и диагностики.
func (h *Hub) GroupSize(key string) int {
	h.mu.RLock()
	g := h.groups[key]
	h.mu.RUnlock()
	if g == nil {
		return 0
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.conns)
}

func (h *Hub) getOrCreate(key string) *group {
	h.mu.RLock()
	g := h.groups[key]
	h.mu.RUnlock()
	if g != nil {
		return g
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if g = h.groups[key]; g == nil {
		g = &group{conns: make(map[Conn]struct{})}
		h.groups[key] = g
	}
	return g
}
