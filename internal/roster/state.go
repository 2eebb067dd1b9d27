package roster

import (
	"errors"

	"github.com/geocoder89/userroster/internal/domain/user"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrNoActiveEdit = errors.New("no edit in progress")
	ErrUnknownField = user.ErrUnknownField
)

// State is the whole roster view state. Reducers never mutate the Users slice
// they receive; they return a new State instead.
type State struct {
	Users     []user.User
	Form      user.Form
	EditingID *int
	NextID    int
}

// NewState seeds a state from a loaded roster. NextID starts above the highest
// loaded id so locally added users never collide with existing or deleted ones.
func NewState(users []user.User) State {
	out := make([]user.User, len(users))
	highest := 0
	for i, u := range users {
		out[i] = u.Clone()
		if u.ID > highest {
			highest = u.ID
		}
	}

	return State{
		Users:  out,
		NextID: highest + 1,
	}
}

func (s State) indexOf(id int) int {
	for i, u := range s.Users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (s State) Editing() (int, bool) {
	if s.EditingID == nil {
		return 0, false
	}
	return *s.EditingID, true
}

func SetField(s State, name, value string) (State, error) {
	f, err := s.Form.Set(name, value)
	if err != nil {
		return s, err
	}
	s.Form = f
	return s, nil
}

func BeginEdit(s State, id int) (State, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s, ErrUserNotFound
	}

	s.Form = user.FormFrom(s.Users[i])
	s.EditingID = &id
	return s, nil
}

// CancelEdit clears the editing pointer and keeps the form as it was.
func CancelEdit(s State) State {
	s.EditingID = nil
	return s
}

func AddUser(s State) (State, user.User) {
	if s.NextID <= 0 {
		s.NextID = 1
	}

	u := user.NewFromForm(s.NextID, s.Form)

	users := make([]user.User, len(s.Users), len(s.Users)+1)
	copy(users, s.Users)
	s.Users = append(users, u)

	s.NextID++
	s.Form = user.Form{}
	return s, u
}

func UpdateUser(s State) (State, user.User, error) {
	id, ok := s.Editing()
	if !ok {
		return s, user.User{}, ErrNoActiveEdit
	}

	i := s.indexOf(id)
	if i < 0 {
		return s, user.User{}, ErrUserNotFound
	}

	users := make([]user.User, len(s.Users))
	copy(users, s.Users)
	users[i] = user.Merge(users[i], s.Form)

	s.Users = users
	s.EditingID = nil
	s.Form = user.Form{}
	return s, users[i], nil
}

// DeleteUser removes the user with id, keeping the order of the rest. Deleting
// the user under edit also ends the edit; the form is left alone.
func DeleteUser(s State, id int) (State, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s, ErrUserNotFound
	}

	users := make([]user.User, 0, len(s.Users)-1)
	users = append(users, s.Users[:i]...)
	users = append(users, s.Users[i+1:]...)
	s.Users = users

	if editing, ok := s.Editing(); ok && editing == id {
		s.EditingID = nil
	}
	return s, nil
}
