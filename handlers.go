package folio

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

func (a *App) handleHome(c echo.Context) error {
	page := a.Content.Page(c.Request().Context())
	featured := a.Carousel.Current()
	// ?project=N pins the carousel for this response only.
	if i, err := strconv.Atoi(c.QueryParam("project")); err == nil && i >= 0 && i < len(page.Projects) {
		featured = i
	}
	if featured >= len(page.Projects) {
		featured = 0
	}
	return Render(c, a.Views.Home(HomeView{
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "profile",
			Keywords:    SkillNames(page.Frontend, page.Backend),
			JSONLD:      PersonJsonLD(a.Config),
		},
		Site:      a.Config,
		Page:      page,
		Featured:  featured,
		CsrfToken: CsrfToken(c),
	}))
}

// handleContentRefresh drops the cached public content so the next home
// page request reads the remote collections again.
func (a *App) handleContentRefresh(c echo.Context) error {
	a.Content.Invalidate()
	a.Logger.Info("content cache invalidated")
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+PathEscape("Public content will be reloaded"))
}

func (a *App) handleSitemap(c echo.Context) error {
	return a.renderSitemap(c)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.staticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	return c.File(a.staticDir + "/robots.txt")
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	ok := errors.As(err, &he)
	if ok && he.Code == http.StatusNotFound {
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		return
	}
	code := http.StatusInternalServerError
	if ok {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "error", err, "uri", c.Request().RequestURI)
		_ = RenderStatus(c, code, a.Views.ServerError())
		return
	}
	a.Echo.DefaultHTTPErrorHandler(err, c)
}
