package users

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/healthrec/engine/internal/auth"
	"github.com/healthrec/engine/internal/middleware"
	"github.com/healthrec/engine/internal/telemetry/metrics"
	"github.com/healthrec/engine/internal/telemetry/tracing"
	"github.com/healthrec/engine/pkg"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users

type usersRepo interface {
	Add(ctx context.Context, user *User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, user *User) error
	GetSettings(ctx context.Context, userID int) (*Settings, error)
	SaveSettings(ctx context.Context, settings *Settings) error
	RequestDeletion(ctx context.Context, userID int, requestedAt time.Time) (*AccountDeletion, error)
	CancelDeletion(ctx context.Context, userID int, cancelledAt time.Time) error
	PendingDeletion(ctx context.Context, userID int) (*AccountDeletion, error)
}

type loginService interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
	SessionUserID(ctx context.Context, token string) (int, error)
}

type demoSeeder interface {
	SeedDemoWeek(ctx context.Context, userID int) error
}

type LoginResponse struct {
	Token  string `json:"token"`
	UserID int    `json:"userId"`
}

type Handler struct {
	repo        usersRepo
	authService loginService
	seeder      demoSeeder
}

func NewHandler(repo usersRepo, authService loginService, seeder demoSeeder) *Handler {
	return &Handler{
		repo:        repo,
		authService: authService,
		seeder:      seeder,
	}
}

func (handler *Handler) SetupRoutes(
	mainRouter *mux.Router,
	rateLimiter middleware.RequestRateLimiter,
	allowedLoginsPerMin int,
	metricsManager *metrics.Manager,
) {
	loginSubrouter := mainRouter.PathPrefix("/a").Subrouter()
	loginSubrouter.
		HandleFunc("/signup", handler.handleSignup).
		Methods("POST", "OPTIONS").Name("signup")
	loginSubrouter.
		HandleFunc("/login", handler.handleLogin).
		Methods("POST", "OPTIONS").Name("login")
	loginSubrouter.
		HandleFunc("/logout", handler.handleLogout).
		Methods("GET", "OPTIONS").Name("logout")

	// rate limit the signup/login endpoints to prevent abuse
	loginSubrouter.Use(middleware.RateLimit(rateLimiter, "login", allowedLoginsPerMin, metricsManager))
	loginSubrouter.Use(middleware.Cors())

	userSubrouter := mainRouter.PathPrefix("/user").Subrouter()
	userSubrouter.
		HandleFunc("/profile", handler.handleGetProfile).
		Methods("GET", "OPTIONS").Name("profile-get")
	userSubrouter.
		HandleFunc("/profile", handler.handleUpdateProfile).
		Methods("PUT", "OPTIONS").Name("profile-update")
	userSubrouter.
		HandleFunc("/settings", handler.handleGetSettings).
		Methods("GET", "OPTIONS").Name("settings-get")
	userSubrouter.
		HandleFunc("/settings", handler.handleUpdateSettings).
		Methods("PUT", "OPTIONS").Name("settings-update")
	userSubrouter.
		HandleFunc("/deletion", handler.handleGetDeletion).
		Methods("GET", "OPTIONS").Name("deletion-get")
	userSubrouter.
		HandleFunc("/deletion", handler.handleRequestDeletion).
		Methods("POST", "OPTIONS").Name("deletion-request")
	userSubrouter.
		HandleFunc("/deletion/cancel", handler.handleCancelDeletion).
		Methods("POST", "OPTIONS").Name("deletion-cancel")
}

func (handler *Handler) userIDFromRequest(ctx context.Context, r *http.Request) (int, error) {
	token := r.Header.Get("X-HEALTHREC-TOKEN")
	if token == "" {
		return 0, auth.ErrSessionNotFound
	}
	return handler.authService.SessionUserID(ctx, token)
}

func (handler *Handler) handleSignup(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.signup")
	defer span.End()

	type signupRequest struct {
		Email     string `json:"email"`
		Password  string `json:"password"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}

	var signupReq signupRequest
	if err := json.NewDecoder(r.Body).Decode(&signupReq); err != nil {
		log.Errorf("signup, unmarshal json params: %s", err)
		http.Error(w, "signup failed", http.StatusBadRequest)
		return
	}

	if signupReq.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if len(signupReq.Password) < 8 {
		http.Error(w, "error, password too short", http.StatusBadRequest)
		return
	}

	passwordHash, err := pkg.HashPassword(signupReq.Password)
	if err != nil {
		log.Errorf("signup, hash password: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	addedUser, err := handler.repo.Add(ctx, &User{
		Email:        signupReq.Email,
		PasswordHash: passwordHash,
		FirstName:    signupReq.FirstName,
		LastName:     signupReq.LastName,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		if errors.Is(err, ErrUserExists) {
			http.Error(w, "error, user already exists", http.StatusConflict)
			return
		}
		log.Errorf("signup, add user [%s]: %s", signupReq.Email, err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}

	if handler.seeder != nil {
		// seed a demo week of health data so the dashboard is not empty on first login
		if err := handler.seeder.SeedDemoWeek(ctx, addedUser.ID); err != nil {
			log.Errorf("signup, seed demo data for user %d: %s", addedUser.ID, err)
		}
	}

	token, err := handler.authService.Login(ctx, addedUser.ID, time.Now())
	if err != nil {
		log.Errorf("signup, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	log.Debugf("new user signed up: %d", addedUser.ID)

	respJson, err := json.Marshal(LoginResponse{Token: token, UserID: addedUser.ID})
	if err != nil {
		log.Errorf("signup, marshal response: %s", err)
		http.Error(w, "signup failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, respJson, http.StatusCreated)
}

func (handler *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.login")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "POST, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	type loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	var loginReq loginRequest
	if r.Header.Get("Content-Type") == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
			log.Errorf("login, unmarshal json params: %s", err)
			http.Error(w, "login failed", http.StatusBadRequest)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			log.Errorf("login failed, parse form error: %s", err)
			http.Error(w, "parse form error", http.StatusInternalServerError)
			return
		}
		loginReq = loginRequest{
			Email:    r.Form.Get("email"),
			Password: r.Form.Get("password"),
		}
	}

	if loginReq.Email == "" {
		http.Error(w, "error, email empty", http.StatusBadRequest)
		return
	}
	if loginReq.Password == "" {
		http.Error(w, "error, password empty", http.StatusBadRequest)
		return
	}

	user, err := handler.repo.GetByEmail(ctx, loginReq.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			log.Tracef("[email] failed login attempt for: %s", loginReq.Email)
			http.Error(w, "error, wrong credentials", http.StatusBadRequest)
			return
		}
		log.Errorf("login, get user [%s]: %s", loginReq.Email, err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}

	if !pkg.CheckPasswordHash(loginReq.Password, user.PasswordHash) {
		log.Tracef("[password] failed login attempt for user: %s", loginReq.Email)
		http.Error(w, "error, wrong credentials", http.StatusBadRequest)
		return
	}

	token, err := handler.authService.Login(ctx, user.ID, time.Now())
	if err != nil {
		log.Errorf("login failed, generate token error: %s", err)
		http.Error(w, "generate token error", http.StatusInternalServerError)
		return
	}

	log.Trace("new login success")

	respJson, err := json.Marshal(LoginResponse{Token: token, UserID: user.ID})
	if err != nil {
		log.Errorf("login, marshal response: %s", err)
		http.Error(w, "login failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, respJson)
}

func (handler *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.logout")
	defer span.End()

	if r.Method == http.MethodOptions {
		w.Header().Add("Allow", "GET, OPTIONS")
		w.WriteHeader(http.StatusOK)
		return
	}

	authToken := r.Header.Get("X-HEALTHREC-TOKEN")
	if authToken == "" {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	loggedOut, err := handler.authService.Logout(ctx, authToken)
	if err != nil {
		if errors.Is(err, auth.ErrSessionNotFound) {
			http.Error(w, "no can do", http.StatusUnauthorized)
			return
		}
		log.Errorf("logout: %s", err)
		http.Error(w, "logout failed", http.StatusInternalServerError)
		return
	}
	if !loggedOut {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	pkg.WriteTextResponseOK(w, "logged-out")
}

func (handler *Handler) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.getProfile")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		log.Errorf("get profile, user %d: %s", userID, err)
		http.Error(w, "profile not found", http.StatusNotFound)
		return
	}

	userJson, err := json.Marshal(user)
	if err != nil {
		log.Errorf("get profile, marshal user: %s", err)
		http.Error(w, "get profile failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, userJson)
}

func (handler *Handler) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.updateProfile")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	type profileUpdate struct {
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
	}
	var update profileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		log.Errorf("update profile, unmarshal json params: %s", err)
		http.Error(w, "update profile failed", http.StatusBadRequest)
		return
	}

	if err := handler.repo.UpdateProfile(ctx, &User{
		ID:        userID,
		FirstName: update.FirstName,
		LastName:  update.LastName,
	}); err != nil {
		log.Errorf("update profile, user %d: %s", userID, err)
		http.Error(w, "update profile failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updatedId": %d}`, userID))
}

func (handler *Handler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.getSettings")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	settings, err := handler.repo.GetSettings(ctx, userID)
	if err != nil {
		log.Errorf("get settings, user %d: %s", userID, err)
		http.Error(w, "get settings failed", http.StatusInternalServerError)
		return
	}

	settingsJson, err := json.Marshal(settings)
	if err != nil {
		log.Errorf("get settings, marshal: %s", err)
		http.Error(w, "get settings failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, settingsJson)
}

func (handler *Handler) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.updateSettings")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	var settings Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		log.Errorf("update settings, unmarshal json params: %s", err)
		http.Error(w, "update settings failed", http.StatusBadRequest)
		return
	}
	settings.UserID = userID

	if settings.DailyStepsGoal < 0 {
		http.Error(w, "error, invalid daily steps goal", http.StatusBadRequest)
		return
	}
	if settings.WeightGoalKilos < 0 {
		http.Error(w, "error, invalid weight goal", http.StatusBadRequest)
		return
	}

	if err := handler.repo.SaveSettings(ctx, &settings); err != nil {
		log.Errorf("update settings, user %d: %s", userID, err)
		http.Error(w, "update settings failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"updatedId": %d}`, userID))
}

func (handler *Handler) handleGetDeletion(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.getDeletion")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	deletion, err := handler.repo.PendingDeletion(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrDeletionNotFound) {
			http.Error(w, "no pending account deletion", http.StatusNotFound)
			return
		}
		log.Errorf("get deletion, user %d: %s", userID, err)
		http.Error(w, "get deletion failed", http.StatusInternalServerError)
		return
	}

	deletionJson, err := json.Marshal(deletion)
	if err != nil {
		log.Errorf("get deletion, marshal: %s", err)
		http.Error(w, "get deletion failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytesOK(w, pkg.ContentType.JSON, deletionJson)
}

func (handler *Handler) handleRequestDeletion(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.requestDeletion")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	// at most one active deletion request per user
	if _, err := handler.repo.PendingDeletion(ctx, userID); err == nil {
		http.Error(w, "error, account deletion already requested", http.StatusConflict)
		return
	} else if !errors.Is(err, ErrDeletionNotFound) {
		log.Errorf("request deletion, check pending, user %d: %s", userID, err)
		http.Error(w, "request deletion failed", http.StatusInternalServerError)
		return
	}

	deletion, err := handler.repo.RequestDeletion(ctx, userID, time.Now())
	if err != nil {
		log.Errorf("request deletion, user %d: %s", userID, err)
		http.Error(w, "request deletion failed", http.StatusInternalServerError)
		return
	}

	log.Warnf("account deletion requested for user %d, scheduled for %s", userID, deletion.ScheduledFor)

	deletionJson, err := json.Marshal(deletion)
	if err != nil {
		log.Errorf("request deletion, marshal: %s", err)
		http.Error(w, "request deletion failed", http.StatusInternalServerError)
		return
	}
	pkg.WriteResponseBytes(w, pkg.ContentType.JSON, deletionJson, http.StatusCreated)
}

func (handler *Handler) handleCancelDeletion(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "usersHandler.cancelDeletion")
	defer span.End()

	userID, err := handler.userIDFromRequest(ctx, r)
	if err != nil {
		http.Error(w, "no can do", http.StatusUnauthorized)
		return
	}

	if err := handler.repo.CancelDeletion(ctx, userID, time.Now()); err != nil {
		if errors.Is(err, ErrDeletionNotFound) {
			http.Error(w, "no pending account deletion", http.StatusNotFound)
			return
		}
		log.Errorf("cancel deletion, user %d: %s", userID, err)
		http.Error(w, "cancel deletion failed", http.StatusInternalServerError)
		return
	}

	pkg.WriteJSONResponseOK(w, fmt.Sprintf(`{"cancelledForUserId": %d}`, userID))
}
