package dialog

import (
	"context"
	"sync"
)

// Repo хранит состояние мастера по чатам в памяти процесса.
// Это состояние UI: после рестарта пользователь просто начинает заново.
type Repo struct {
	mu    sync.Mutex
	items map[int64]Item
}

func NewRepo() *Repo { return &Repo{items: make(map[int64]Item)} }

func (r *Repo) Get(_ context.Context, chatID int64) (*Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	it, ok := r.items[chatID]
	if !ok {
		// если записи нет, считаем, что состояния пока нет
		return &Item{ChatID: chatID, State: StateIdle, Payload: Payload{}}, nil
	}
	return &Item{ChatID: chatID, State: it.State, Payload: clone(it.Payload)}, nil
}

func (r *Repo) Set(_ context.Context, chatID int64, state State, payload Payload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.items[chatID] = Item{ChatID: chatID, State: state, Payload: clone(payload)}
	return nil
}

func (r *Repo) Reset(_ context.Context, chatID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, chatID)
	return nil
}

// GetString Helper для безопасного чтения строк из payload
func GetString(p Payload, key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

func GetInt(p Payload, key string) (int, bool) {
	v, ok := p[key].(int)
	return v, ok
}

func clone(p Payload) Payload {
	out := make(Payload, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}
