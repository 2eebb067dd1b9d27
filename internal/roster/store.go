package roster

import (
	"sync"

	"github.com/geocoder89/userroster/internal/domain/user"
)

type Status string

const (
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// Recorder receives mutation outcomes. observability.Prom implements it.
type Recorder interface {
	ObserveMutation(op string, err error)
	SetRosterSize(n int)
}

type noopRecorder struct{}

func (noopRecorder) ObserveMutation(string, error) {}
func (noopRecorder) SetRosterSize(int)             {}

// Snapshot is a deep copy of the store at one point in time.
type Snapshot struct {
	Status    Status
	LoadError string
	Users     []user.User
	Form      user.Form
	EditingID *int
}

// Store owns the roster state. All operations are serialized by mu, so the
// reducers in state.go run one at a time just as they would on a UI thread.
type Store struct {
	mu      sync.RWMutex
	state   State
	status  Status
	loadErr string
	rec     Recorder
}

func NewStore(rec Recorder) *Store {
	if rec == nil {
		rec = noopRecorder{}
	}

	return &Store{
		state:  NewState(nil),
		status: StatusLoading,
		rec:    rec,
	}
}

// ApplyLoad fills the roster with the loaded users and marks it ready.
func (s *Store) ApplyLoad(users []user.User) {
	s.mu.Lock()
	s.state = NewState(users)
	s.status = StatusReady
	s.loadErr = ""
	n := len(s.state.Users)
	s.mu.Unlock()

	s.rec.SetRosterSize(n)
}

// FailLoad records a failed load. The roster stays empty.
func (s *Store) FailLoad(err error) {
	s.mu.Lock()
	s.status = StatusFailed
	if err != nil {
		s.loadErr = err.Error()
	}
	s.mu.Unlock()
}

func (s *Store) Status() (Status, string) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status, s.loadErr
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]user.User, len(s.state.Users))
	for i, u := range s.state.Users {
		users[i] = u.Clone()
	}

	var editing *int
	if id, ok := s.state.Editing(); ok {
		editing = &id
	}

	return Snapshot{
		Status:    s.status,
		LoadError: s.loadErr,
		Users:     users,
		Form:      s.state.Form,
		EditingID: editing,
	}
}

func (s *Store) Get(id int) (user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.state.indexOf(id)
	if i < 0 {
		return user.User{}, ErrUserNotFound
	}
	return s.state.Users[i].Clone(), nil
}

func (s *Store) Form() user.Form {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.state.Form
}

func (s *Store) SetField(name, value string) (user.Form, error) {
	s.mu.Lock()
	next, err := SetField(s.state, name, value)
	s.state = next
	form := next.Form
	s.mu.Unlock()

	s.rec.ObserveMutation("set_field", err)
	return form, err
}

func (s *Store) BeginEdit(id int) (user.Form, error) {
	s.mu.Lock()
	next, err := BeginEdit(s.state, id)
	s.state = next
	form := next.Form
	s.mu.Unlock()

	s.rec.ObserveMutation("begin_edit", err)
	return form, err
}

func (s *Store) CancelEdit() {
	s.mu.Lock()
	s.state = CancelEdit(s.state)
	s.mu.Unlock()

	s.rec.ObserveMutation("cancel_edit", nil)
}

func (s *Store) AddUser() user.User {
	s.mu.Lock()
	next, u := AddUser(s.state)
	s.state = next
	n := len(next.Users)
	s.mu.Unlock()

	s.rec.ObserveMutation("add_user", nil)
	s.rec.SetRosterSize(n)
	return u.Clone()
}

func (s *Store) UpdateUser() (user.User, error) {
	s.mu.Lock()
	next, u, err := UpdateUser(s.state)
	s.state = next
	s.mu.Unlock()

	s.rec.ObserveMutation("update_user", err)
	return u.Clone(), err
}

func (s *Store) DeleteUser(id int) error {
	s.mu.Lock()
	next, err := DeleteUser(s.state, id)
	s.state = next
	n := len(next.Users)
	s.mu.Unlock()

	s.rec.ObserveMutation("delete_user", err)
	if err == nil {
		s.rec.SetRosterSize(n)
	}
	return err
}
