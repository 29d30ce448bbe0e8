package folio

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/eringen/folio/media"
	"github.com/eringen/folio/projects"
)

// imageField is the multipart field carrying an uploaded project image.
const imageField = "imageFile"

// pendingUpload stands in for the durable URL of an upload that has not
// been stored yet.
const pendingUpload = "/public/uploads/pending"

func hasUpload(c echo.Context) bool {
	_, err := c.FormFile(imageField)
	return err == nil
}

// attachUploadedImage stores the request's image file, if any, and points
// d.Image at it. A request without a file leaves d untouched. Returned
// errors are safe to show to the admin.
func (a *App) attachUploadedImage(c echo.Context, d *projects.Draft) error {
	file, err := c.FormFile(imageField)
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil
	}
	if err != nil {
		return errors.New("could not read the uploaded file")
	}
	if file.Size > media.MaxUploadSize {
		return media.ErrTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return errors.New("could not read the uploaded file")
	}
	defer src.Close()

	err = a.Projects.AttachImage(c.Request().Context(), d, file.Filename, src)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, projects.ErrNoImageStore):
		return errors.New("image uploads are not configured; use an image URL")
	case errors.Is(err, media.ErrTooLarge):
		return err
	}
	a.Logger.Warn("image upload rejected", "file", file.Filename, "error", err)
	return fmt.Errorf("invalid image: %v", err)
}
