package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"

	"github.com/2beens/serjblog/internal/telemetry/metrics"
	"github.com/2beens/serjblog/internal/telemetry/tracing"
	"github.com/2beens/serjblog/internal/users"
	"github.com/2beens/serjblog/internal/web"
	"github.com/2beens/serjblog/pkg"
)

const (
	FlashEmailExists       = "your email already exists, you better try to log in!"
	FlashIncorrectEmail    = "incorrect email, try again!"
	FlashIncorrectPassword = "incorrect password, try again!"
)

type RegisterForm struct {
	Name     string `json:"name" validate:"required,max=250"`
	Email    string `json:"email" validate:"required,email,max=250"`
	Password string `json:"password" validate:"required"`
}

type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type usersRepo interface {
	Add(ctx context.Context, user *users.User) error
	GetByEmail(ctx context.Context, email string) (*users.User, error)
}

type identityManager interface {
	Login(ctx context.Context, w http.ResponseWriter, user *users.User) error
	Logout(ctx context.Context, w http.ResponseWriter, r *http.Request) error
}

type PasswordParams struct {
	SaltLength int
	Iterations int
}

type Handler struct {
	usersRepo      usersRepo
	identity       identityManager
	renderer       *web.Renderer
	metricsManager *metrics.Manager
	passwordParams PasswordParams
}

func NewHandler(
	usersRepo usersRepo,
	identity identityManager,
	renderer *web.Renderer,
	metricsManager *metrics.Manager,
	passwordParams PasswordParams,
) *Handler {
	if passwordParams.SaltLength <= 0 {
		passwordParams.SaltLength = pkg.DefaultSaltLength
	}
	if passwordParams.Iterations <= 0 {
		passwordParams.Iterations = pkg.DefaultIterations
	}
	return &Handler{
		usersRepo:      usersRepo,
		identity:       identity,
		renderer:       renderer,
		metricsManager: metricsManager,
		passwordParams: passwordParams,
	}
}

// SetupRoutes registers the auth routes. credentialsGuard wraps the
// credential submitting endpoints (POST /register, POST /login), e.g. with a rate limiter.
func (handler *Handler) SetupRoutes(router *mux.Router, credentialsGuard func(http.Handler) http.Handler) {
	if credentialsGuard == nil {
		credentialsGuard = func(next http.Handler) http.Handler { return next }
	}

	router.HandleFunc("/register", handler.handleRegisterForm).Methods("GET").Name("register-form")
	router.Handle("/register", credentialsGuard(http.HandlerFunc(handler.handleRegister))).Methods("POST").Name("register")
	router.HandleFunc("/login", handler.handleLoginForm).Methods("GET").Name("login-form")
	router.Handle("/login", credentialsGuard(http.HandlerFunc(handler.handleLogin))).Methods("POST").Name("login")
	router.HandleFunc("/logout", handler.handleLogout).Methods("GET").Name("logout")
}

func (handler *Handler) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, "register", web.FormData(RegisterForm{}, nil))
}

func (handler *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "authHandler.register")
	defer span.End()

	var form RegisterForm
	if err := web.Bind(r, &form); err != nil {
		log.Debugf("register, bind form: %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if fieldErrors := web.Validate(&form); fieldErrors != nil {
		form.Password = ""
		handler.renderer.Render(w, r, "register", web.FormData(form, fieldErrors))
		return
	}

	if _, err := handler.usersRepo.GetByEmail(ctx, form.Email); err == nil {
		handler.renderer.FlashAndRedirect(w, r, FlashEmailExists, "/login")
		return
	} else if !errors.Is(err, users.ErrUserNotFound) {
		log.Errorf("register, get user by email: %s", err)
		span.RecordError(err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	passwordHash, err := pkg.HashPassword(form.Password, handler.passwordParams.SaltLength, handler.passwordParams.Iterations)
	if err != nil {
		log.Errorf("register, hash password: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	user := &users.User{
		Name:         form.Name,
		Email:        form.Email,
		PasswordHash: passwordHash,
	}
	if err := handler.usersRepo.Add(ctx, user); err != nil {
		// lost the race with a concurrent registration of the same email
		if errors.Is(err, users.ErrEmailExists) {
			handler.renderer.FlashAndRedirect(w, r, FlashEmailExists, "/login")
			return
		}
		log.Errorf("register, add user: %s", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	span.SetAttributes(attribute.Int("user.id", user.ID))
	handler.metricsManager.CounterRegistrations.Inc()
	log.Infof("new user registered: %d", user.ID)

	if err := handler.identity.Login(ctx, w, user); err != nil {
		log.Errorf("register, login new user %d: %s", user.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.renderer.Redirect(w, r, "/")
}

func (handler *Handler) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	handler.renderer.Render(w, r, "login", web.FormData(LoginForm{}, nil))
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "authHandler.login")
	defer span.End()

	var form LoginForm
	if err := web.Bind(r, &form); err != nil {
		log.Debugf("login, bind form: %s", err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	if fieldErrors := web.Validate(&form); fieldErrors != nil {
		form.Password = ""
		handler.renderer.Render(w, r, "login", web.FormData(form, fieldErrors))
		return
	}

	user, err := handler.usersRepo.GetByEmail(ctx, form.Email)
	if err != nil {
		if errors.Is(err, users.ErrUserNotFound) {
			handler.metricsManager.CounterLogins.WithLabelValues("unknown_email").Inc()
			handler.renderer.FlashAndRedirect(w, r, FlashIncorrectEmail, "/login")
			return
		}
		log.Errorf("login, get user by email: %s", err)
		span.RecordError(err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(form.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %d", user.ID)
		handler.metricsManager.CounterLogins.WithLabelValues("wrong_password").Inc()
		handler.renderer.FlashAndRedirect(w, r, FlashIncorrectPassword, "/login")
		return
	}

	if err := handler.identity.Login(ctx, w, user); err != nil {
		log.Errorf("login user %d: %s", user.ID, err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	handler.metricsManager.CounterLogins.WithLabelValues("success").Inc()
	log.Tracef("login success for user: %d", user.ID)
	handler.renderer.Redirect(w, r, "/")
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.StartSpan(r.Context(), "authHandler.logout")
	defer span.End()

	if err := handler.identity.Logout(ctx, w, r); err != nil {
		// the cookie is cleared anyway, the stale session will be swept
		log.Errorf("logout: %s", err)
	}

	handler.renderer.Redirect(w, r, "/")
}
