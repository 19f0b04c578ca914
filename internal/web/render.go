package web

import (
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/2beens/serjblog/internal/session"
	"github.com/2beens/serjblog/internal/users"
	"github.com/2beens/serjblog/pkg"
)

type ViewUser struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"is_admin"`
}

// Renderer writes view documents: the page name, the current user and the
// pending flash messages, plus the page data at the top level.
type Renderer struct {
	sessions    *session.Manager
	adminUserID int
}

func NewRenderer(sessions *session.Manager, adminUserID int) *Renderer {
	return &Renderer{
		sessions:    sessions,
		adminUserID: adminUserID,
	}
}

func (rd *Renderer) IsAdmin(user *users.User) bool {
	return user != nil && user.ID == rd.adminUserID
}

func (rd *Renderer) Render(w http.ResponseWriter, r *http.Request, page string, data map[string]any) {
	rd.RenderStatus(w, r, page, data, http.StatusOK)
}

func (rd *Renderer) RenderStatus(w http.ResponseWriter, r *http.Request, page string, data map[string]any, status int) {
	view := make(map[string]any, len(data)+3)
	for k, v := range data {
		view[k] = v
	}

	view["page"] = page
	view["current_user"] = rd.viewUser(session.CurrentUser(r.Context()))
	flashes := rd.sessions.PopFlashes(w, r)
	if flashes == nil {
		flashes = []string{}
	}
	view["flashes"] = flashes

	pkg.WriteJSONResponse(w, view, status)
}

// Redirect answers with 303, so a POST is followed by a GET
func (rd *Renderer) Redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

func (rd *Renderer) FlashAndRedirect(w http.ResponseWriter, r *http.Request, message, location string) {
	if err := rd.sessions.AddFlash(w, r, message); err != nil {
		log.Errorf("add flash [%s]: %s", message, err)
	}
	rd.Redirect(w, r, location)
}

func (rd *Renderer) viewUser(user *users.User) *ViewUser {
	if user == nil {
		return nil
	}
	return &ViewUser{
		ID:      user.ID,
		Name:    user.Name,
		Email:   user.Email,
		IsAdmin: rd.IsAdmin(user),
	}
}
