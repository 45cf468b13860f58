package keystore

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrKeyNotFound = errors.New("api key not found")

// Store implementa weather.KeySource: claves de API por
// (usuario, servicio), con una clave global de fallback (normalmente
// la WEATHER_API_KEY del deployment).
type Store struct {
	mu       sync.RWMutex
	keys     map[string]string
	fallback string
}

func New(fallback string) *Store {
	return &Store{
		keys:     make(map[string]string),
		fallback: strings.TrimSpace(fallback),
	}
}

func (s *Store) Set(userID, service, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[compose(userID, service)] = strings.TrimSpace(key)
}

// APIKey devuelve la clave del usuario para el servicio, o el fallback
// global si no tiene una propia.
func (s *Store) APIKey(ctx context.Context, userID, service string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if k, ok := s.keys[compose(userID, service)]; ok && k != "" {
		return k, nil
	}
	if s.fallback != "" {
		return s.fallback, nil
	}
	return "", ErrKeyNotFound
}

func compose(userID, service string) string {
	return strings.TrimSpace(userID) + "|" + strings.TrimSpace(service)
}
