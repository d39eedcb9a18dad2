// Package profile holds the signed-in user's profile for the lifetime of a session.
package profile

import (
	"sync"

	"coursemarket/internal/models"

	"github.com/golang/glog"
)

// State is the profile slice. User is nil when nobody is signed in.
type State struct {
	User    *models.User
	Loading bool
}

// Action is a state change. Build one with SetUser or SetLoading.
type Action interface {
	apply(State) State
}

type setUser struct{ user *models.User }

func (a setUser) apply(s State) State {
	glog.Infof("profile: setUser %+v", a.user)
	s.User = a.user
	return s
}

type setLoading struct{ loading bool }

func (a setLoading) apply(s State) State {
	s.Loading = a.loading
	return s
}

// SetUser replaces the current user. A nil user clears it.
func SetUser(user *models.User) Action {
	return setUser{user: user}
}

// SetLoading replaces the loading flag.
func SetLoading(loading bool) Action {
	return setLoading{loading: loading}
}

// Reduce returns the state that results from applying action to s.
func Reduce(s State, action Action) State {
	if action == nil {
		return s
	}
	return action.apply(s)
}

// Listener is called with the new state after every dispatch.
type Listener func(State)

// Store holds a State and applies dispatched actions to it.
type Store struct {
	lock      sync.RWMutex
	state     State
	listeners []Listener
}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Dispatch(action Action) {
	s.lock.Lock()
	s.state = Reduce(s.state, action)
	state := s.state
	listeners := append([]Listener(nil), s.listeners...)
	s.lock.Unlock()

	for _, l := range listeners {
		l(state)
	}
}

func (s *Store) State() State {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.state
}

func (s *Store) Subscribe(l Listener) {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.listeners = append(s.listeners, l)
}
