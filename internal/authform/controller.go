package authform

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"prepwise/internal/identity"
	"prepwise/internal/models"
	"prepwise/internal/session"
	"prepwise/internal/utils"
)

type Mode string

const (
	ModeSignUp Mode = "sign-up"
	ModeSignIn Mode = "sign-in"
)

const (
	msgInvalidForm     = "Please fix the highlighted fields."
	msgSignInFailed    = "Sign in Failed. Please try again."
	msgBadCredentials  = "Invalid email or password."
	msgProviderFailure = "There was an error. Please try again."
)

// Form is the submitted body for both modes; Name is ignored on sign-in.
type Form struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type signUpForm struct {
	Name     string `json:"name" validate:"required,min=3"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3"`
}

type signInForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=3"`
}

// Gateway is the part of session.Gateway the controller drives.
type Gateway interface {
	SignUp(ctx context.Context, p session.SignUpParams) *session.Result
	SignIn(ctx context.Context, w http.ResponseWriter, p session.SignInParams) *session.Result
}

type Controller struct {
	client   identity.Client
	gateway  Gateway
	validate *validator.Validate
	logger   *zap.Logger
}

func NewController(client identity.Client, gateway Gateway, logger *zap.Logger) *Controller {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return &Controller{client: client, gateway: gateway, validate: v, logger: logger}
}

// Submit runs one form submission and returns the status and body to send.
func (c *Controller) Submit(ctx context.Context, w http.ResponseWriter, mode Mode, form Form) (int, models.AuthResult) {
	form.Name = strings.TrimSpace(form.Name)
	form.Email = utils.NormalizeEmail(form.Email)

	switch mode {
	case ModeSignUp:
		return c.signUp(ctx, form)
	case ModeSignIn:
		return c.signIn(ctx, w, form)
	default:
		return http.StatusBadRequest, models.AuthResult{Message: fmt.Sprintf("unknown form type %q", mode)}
	}
}

func (c *Controller) signUp(ctx context.Context, form Form) (int, models.AuthResult) {
	if details := c.check(signUpForm(form)); details != nil {
		return http.StatusBadRequest, models.AuthResult{Message: msgInvalidForm, Details: details}
	}

	cred, err := c.client.SignUp(ctx, form.Email, form.Password)
	if err != nil {
		return c.mintFailure(err)
	}

	res := c.gateway.SignUp(ctx, session.SignUpParams{UID: cred.UID, Name: form.Name, Email: form.Email})
	if !res.Success {
		return statusFor(res.Reason), res.AuthResult
	}

	out := res.AuthResult
	out.Message = session.MsgSignUpOK
	out.Redirect = "/sign-in"
	return http.StatusCreated, out
}

func (c *Controller) signIn(ctx context.Context, w http.ResponseWriter, form Form) (int, models.AuthResult) {
	if details := c.check(signInForm{Email: form.Email, Password: form.Password}); details != nil {
		return http.StatusBadRequest, models.AuthResult{Message: msgInvalidForm, Details: details}
	}

	cred, err := c.client.SignIn(ctx, form.Email, form.Password)
	if err != nil {
		return c.mintFailure(err)
	}
	if cred.IDToken == "" {
		return http.StatusUnauthorized, models.AuthResult{Message: msgSignInFailed}
	}

	res := c.gateway.SignIn(ctx, w, session.SignInParams{Email: form.Email, IDToken: cred.IDToken})
	if !res.Success {
		return statusFor(res.Reason), res.AuthResult
	}

	out := res.AuthResult
	out.Redirect = "/"
	return http.StatusOK, out
}

func (c *Controller) check(v any) []models.ValidationErrorDetail {
	err := c.validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []models.ValidationErrorDetail{{Field: "form", Reason: err.Error()}}
	}

	details := make([]models.ValidationErrorDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, models.ValidationErrorDetail{Field: fe.Field(), Reason: reason(fe)})
	}
	return details
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s characters", fe.Param())
	default:
		return "is invalid"
	}
}

func (c *Controller) mintFailure(err error) (int, models.AuthResult) {
	switch {
	case errors.Is(err, identity.ErrEmailExists):
		return http.StatusConflict, models.AuthResult{Message: session.MsgEmailInUse}
	case errors.Is(err, identity.ErrInvalidCredentials):
		return http.StatusUnauthorized, models.AuthResult{Message: msgBadCredentials}
	default:
		c.logger.Error("Identity provider call failed", zap.Error(err))
		return http.StatusBadGateway, models.AuthResult{Message: msgProviderFailure}
	}
}

func statusFor(r session.Reason) int {
	switch r {
	case session.ReasonAlreadyExists, session.ReasonEmailInUse:
		return http.StatusConflict
	case session.ReasonNotFound, session.ReasonUnauthorized:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
