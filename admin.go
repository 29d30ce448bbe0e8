package folio

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/projects"
	"github.com/eringen/folio/session"
)

const persistWarning = "Saved, but the change could not be written to storage and may not survive a restart."

func (a *App) handleAdmin(c echo.Context) error {
	if !a.IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, http.StatusOK, c.QueryParam("msg"), "")
}

func (a *App) handleAdminLogin(c echo.Context) error {
	g := a.gate(c)
	err := g.AttemptLogin(c.Request().Context(), c.FormValue("username"), c.FormValue("password"))
	switch {
	case errors.Is(err, session.ErrInvalidCredentials):
		a.Logger.Info("admin login failed", "ip", c.RealIP())
		return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
	case errors.Is(err, session.ErrPersistence):
		// The login stands for this response only.
		a.Logger.Warn("admin session not saved", "error", err)
		return a.renderAdminDashboard(c, http.StatusOK, "", "You are signed in, but the session could not be saved.")
	case err != nil:
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleAdminLogout(c echo.Context) error {
	if err := a.gate(c).Logout(c.Request().Context()); err != nil {
		a.Logger.Warn("admin logout not saved", "error", err)
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) handleProjectCreate(c echo.Context) error {
	form := FormView{Draft: draftFromForm(c), CsrfToken: CsrfToken(c)}
	return a.saveProject(c, form, func(ctx context.Context, d projects.Draft) error {
		_, err := a.Projects.Create(ctx, d)
		return err
	}, "Project added")
}

func (a *App) handleProjectEdit(c echo.Context) error {
	id := c.Param("id")
	rec, ok := a.Projects.Get(id)
	if !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	return Render(c, a.Views.AdminForm(FormView{
		ID:        id,
		Draft:     projects.DraftFrom(rec),
		CsrfToken: CsrfToken(c),
	}))
}

func (a *App) handleProjectUpdate(c echo.Context) error {
	id := c.Param("id")
	if _, ok := a.Projects.Get(id); !ok {
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	}
	form := FormView{ID: id, Draft: draftFromForm(c), CsrfToken: CsrfToken(c)}
	return a.saveProject(c, form, func(ctx context.Context, d projects.Draft) error {
		_, err := a.Projects.Update(ctx, id, d)
		return err
	}, "Project updated")
}

func (a *App) handleProjectDelete(c echo.Context) error {
	err := a.Projects.Delete(c.Request().Context(), c.Param("id"))
	if errors.Is(err, projects.ErrPersistence) {
		return a.renderAdminDashboard(c, http.StatusOK, "", persistWarning)
	}
	if err != nil {
		return err
	}
	return a.renderAdminDashboard(c, http.StatusOK, "Project deleted", "")
}

// saveProject validates the form, stores any uploaded image and then calls
// save. The upload is only stored once the rest of the draft is valid, and
// it is discarded again when save rejects the draft.
func (a *App) saveProject(c echo.Context, form FormView, save func(context.Context, projects.Draft) error, done string) error {
	ctx := c.Request().Context()
	check := form.Draft
	if hasUpload(c) {
		check.Image = pendingUpload
	}
	if v := projects.Validate(check); len(v) > 0 {
		form.Violations = v
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminForm(form))
	}

	given := form.Draft.Image
	if err := a.attachUploadedImage(c, &form.Draft); err != nil {
		form.Violations = projects.Violations{projects.FieldImage: err.Error()}
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminForm(form))
	}
	err := save(ctx, form.Draft)
	if err != nil && !errors.Is(err, projects.ErrPersistence) && form.Draft.Image != given {
		a.Projects.DiscardImage(ctx, form.Draft.Image)
		form.Draft.Image = given
	}
	return a.afterSave(c, form, err, done)
}

// afterSave maps the outcome of Create or Update onto a response.
func (a *App) afterSave(c echo.Context, form FormView, err error, done string) error {
	var verr *projects.ValidationError
	switch {
	case errors.As(err, &verr):
		form.Violations = verr.Violations
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.AdminForm(form))
	case errors.Is(err, projects.ErrNotFound):
		return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case errors.Is(err, projects.ErrPersistence):
		return a.renderAdminDashboard(c, http.StatusOK, "", persistWarning)
	case err != nil:
		return err
	}
	if isHTMX(c) {
		return a.renderAdminDashboard(c, http.StatusOK, done, "")
	}
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+PathEscape(done))
}

func (a *App) renderAdminDashboard(c echo.Context, code int, msg, warning string) error {
	token := CsrfToken(c)
	return RenderStatus(c, code, a.Views.AdminDashboard(DashboardView{
		Projects:  a.Projects.List(),
		Message:   msg,
		Warning:   warning,
		CsrfToken: token,
		Form:      FormView{CsrfToken: token},
	}))
}

func draftFromForm(c echo.Context) projects.Draft {
	return projects.Draft{
		Title:       c.FormValue("title"),
		Description: c.FormValue("description"),
		GithubLink:  c.FormValue("githubLink"),
		LiveLink:    c.FormValue("liveLink"),
		Image:       c.FormValue("image"),
		Tags:        projects.ParseTags(c.FormValue("tags")),
	}
}
