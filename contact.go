package folio

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	fastshot "github.com/opus-domini/fast-shot"
)

const contactThanks = "Thank you for your message! I'll get back to you soon."

var errContactInvalid = errors.New("please fill in your name, a valid email and a message")

// ContactMessage is a submission of the public contact form.
type ContactMessage struct {
	Name    string `form:"name" validate:"required,max=200"`
	Email   string `form:"email" validate:"required,email,max=320"`
	Message string `form:"message" validate:"required,max=5000"`
	// Honeypot; humans leave it empty.
	BotField string `form:"bot-field"`
}

var contactValidate = validator.New()

// contactForwarder posts submissions url-encoded to a form endpoint. With
// no endpoint configured submissions are only logged.
type contactForwarder struct {
	target string
	http   fastshot.ClientHttpMethods
	logger *slog.Logger
}

func newContactForwarder(target string, logger *slog.Logger) *contactForwarder {
	f := &contactForwarder{target: target, logger: logger}
	if target != "" {
		f.http = fastshot.NewClient(target).
			Config().SetTimeout(10 * time.Second).
			Build()
	}
	return f
}

func (f *contactForwarder) send(ctx context.Context, m ContactMessage) error {
	if f.http == nil {
		f.logger.Info("contact message", "name", m.Name, "email", m.Email, "length", len(m.Message))
		return nil
	}
	form := url.Values{
		"form-name": {"contact"},
		"name":      {m.Name},
		"email":     {m.Email},
		"message":   {m.Message},
	}
	resp, err := f.http.POST("").
		Context().Set(ctx).
		Header().Add("Content-Type", "application/x-www-form-urlencoded").
		Body().AsString(form.Encode()).
		Send()
	if err != nil {
		return fmt.Errorf("forward contact message: %w", err)
	}
	defer resp.Body().Close()
	if resp.Status().IsError() {
		return fmt.Errorf("forward contact message: status %d", resp.Status().Code())
	}
	return nil
}

func (a *App) handleContact(c echo.Context) error {
	if !a.contactLimiter.Allow(c.RealIP()) {
		return RenderStatus(c, http.StatusTooManyRequests,
			a.Views.ContactResult(false, "Too many messages. Try again later."))
	}
	var m ContactMessage
	if err := c.Bind(&m); err != nil {
		return RenderStatus(c, http.StatusBadRequest, a.Views.ContactResult(false, errContactInvalid.Error()))
	}
	m.Name = strings.TrimSpace(m.Name)
	m.Email = strings.TrimSpace(m.Email)
	m.Message = strings.TrimSpace(m.Message)
	if m.BotField != "" {
		return Render(c, a.Views.ContactResult(true, contactThanks))
	}
	if err := contactValidate.Struct(m); err != nil {
		return RenderStatus(c, http.StatusUnprocessableEntity, a.Views.ContactResult(false, errContactInvalid.Error()))
	}
	if err := a.contact.send(c.Request().Context(), m); err != nil {
		a.Logger.Error("contact form", "error", err)
		return RenderStatus(c, http.StatusBadGateway,
			a.Views.ContactResult(false, "Your message could not be sent. Please try again later."))
	}
	return Render(c, a.Views.ContactResult(true, contactThanks))
}
