package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/geocoder89/userroster/internal/domain/user"
	"github.com/geocoder89/userroster/internal/roster"
	"github.com/gin-gonic/gin"
)

type RosterStore interface {
	Snapshot() roster.Snapshot
	Get(id int) (user.User, error)
	Form() user.Form
	SetField(name, value string) (user.Form, error)
	BeginEdit(id int) (user.Form, error)
	CancelEdit()
	AddUser() user.User
	UpdateUser() (user.User, error)
	DeleteUser(id int) error
}

type SetFieldRequest struct {
	Value *string `json:"value" binding:"required"`
}

type BeginEditRequest struct {
	ID *int `json:"id" binding:"required"`
}

// RosterView is the whole client-visible state. While the load is pending or
// has failed, Items is empty and Error says why.
type RosterView struct {
	Status    roster.Status `json:"status"`
	Error     string        `json:"error,omitempty"`
	Items     []user.User   `json:"items"`
	Count     int           `json:"count"`
	EditingID *int          `json:"editingId"`
	Form      user.Form     `json:"form"`
	FormDirty bool          `json:"formDirty"`
}

type RosterHandler struct {
	store RosterStore
}

func NewRosterHandler(store RosterStore) *RosterHandler {
	return &RosterHandler{store: store}
}

func (h *RosterHandler) GetRoster(ctx *gin.Context) {
	snap := h.store.Snapshot()

	RespondJSONWithETag(ctx, http.StatusOK, RosterView{
		Status:    snap.Status,
		Error:     snap.LoadError,
		Items:     snap.Users,
		Count:     len(snap.Users),
		EditingID: snap.EditingID,
		Form:      snap.Form,
		FormDirty: !snap.Form.IsEmpty(),
	})
}

func (h *RosterHandler) ListUsers(ctx *gin.Context) {
	users := h.store.Snapshot().Users

	RespondJSONWithETag(ctx, http.StatusOK, gin.H{
		"items": users,
		"count": len(users),
	})
}

func (h *RosterHandler) GetUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	u, err := h.store.Get(id)
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *RosterHandler) GetForm(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, h.store.Form())
}

func (h *RosterHandler) SetField(ctx *gin.Context) {
	var req SetFieldRequest

	if !BindJSON(ctx, &req) {
		return
	}

	form, err := h.store.SetField(ctx.Param("field"), *req.Value)
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, form)
}

func (h *RosterHandler) AddUser(ctx *gin.Context) {
	u := h.store.AddUser()

	ctx.JSON(http.StatusCreated, u)
}

func (h *RosterHandler) DeleteUser(ctx *gin.Context) {
	id, ok := parseID(ctx)
	if !ok {
		return
	}

	if err := h.store.DeleteUser(id); err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	ctx.Status(http.StatusNoContent)
}

func (h *RosterHandler) BeginEdit(ctx *gin.Context) {
	var req BeginEditRequest

	if !BindJSON(ctx, &req) {
		return
	}

	form, err := h.store.BeginEdit(*req.ID)
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"editingId": *req.ID,
		"form":      form,
	})
}

func (h *RosterHandler) UpdateUser(ctx *gin.Context) {
	u, err := h.store.UpdateUser()
	if err != nil {
		h.respondStoreError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, u)
}

func (h *RosterHandler) CancelEdit(ctx *gin.Context) {
	h.store.CancelEdit()

	ctx.Status(http.StatusNoContent)
}

func (h *RosterHandler) respondStoreError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, roster.ErrUserNotFound):
		RespondNotFound(ctx, "User not found")
	case errors.Is(err, roster.ErrNoActiveEdit):
		RespondConflict(ctx, "no_active_edit", "No user is being edited.")
	case errors.Is(err, roster.ErrUnknownField):
		RespondBadRequest(ctx, "Unknown form field", gin.H{"allowed": user.FieldNames})
	default:
		RespondInternal(ctx, "Could not update roster")
	}
}

func parseID(ctx *gin.Context) (int, bool) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		RespondBadRequest(ctx, "invalid_id", gin.H{"id": "must be an integer"})
		return 0, false
	}
	return id, true
}
