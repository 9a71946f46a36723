package router

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "github.com/ipnow2025/medinote/docs"
	mem "github.com/ipnow2025/medinote/internal/adapters/storage/memory"
	pg "github.com/ipnow2025/medinote/internal/adapters/storage/postgres"
	"github.com/ipnow2025/medinote/internal/domain/adherence"
	"github.com/ipnow2025/medinote/internal/domain/familyshare"
	"github.com/ipnow2025/medinote/internal/domain/medications"
	"github.com/ipnow2025/medinote/internal/domain/reports"
	"github.com/ipnow2025/medinote/internal/middleware"
	"github.com/ipnow2025/medinote/internal/ports/auth"
)

type Options struct {
	AuthVerifier auth.AuthVerifier // puede ser nil (modo dev: X-Debug-User-ID)

	// Authenticator para POST /auth/login. nil = endpoint deshabilitado.
	Authenticator auth.Authenticator

	// Opcional: si viene, usa Postgres. Si no, in-memory.
	DB *sql.DB

	Log *zap.SugaredLogger
}

func NewRouter(opts Options) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)

	r.Use(middleware.AuthContext(opts.AuthVerifier))

	log := opts.Log
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/swagger/*", httpSwagger.WrapHandler)

	var (
		medsRepo   medications.Repository
		adhRepo    adherence.Repository
		sharesRepo familyshare.Repository
	)

	// Si no te pasan DB explícita, intenta por env (para dev/handoff)
	db := opts.DB
	if db == nil {
		if dsn := os.Getenv("DB_DSN"); dsn != "" {
			opened, err := pg.Open(dsn)
			if err == nil {
				db = opened
			} else {
				log.Warnw("postgres unavailable, falling back to memory", "err", err)
			}
		}
	}

	if db != nil {
		medsRepo = pg.NewMedicationsRepo(db)
		adhRepo = pg.NewAdherenceRepo(db)
		sharesRepo = pg.NewFamilyShareRepo(db)
	} else {
		medsRepo = mem.NewMedicationsRepo()
		adhRepo = mem.NewAdherenceRepo()
		sharesRepo = mem.NewFamilyShareRepo()
	}

	// Services por módulo
	medsSvc := medications.NewService(medsRepo)
	adhSvc := adherence.NewService(medsSvc, adhRepo)
	reportsSvc := reports.NewService(medsSvc, adhSvc)
	sharesSvc := familyshare.NewService(sharesRepo)

	// Rutas por módulo
	medications.RegisterRoutes(r, medsSvc, sharesSvc)
	adherence.RegisterRoutes(r, adhSvc)
	reports.RegisterRoutes(r, reportsSvc, sharesSvc)
	familyshare.RegisterRoutes(r, sharesSvc)

	r.Post("/auth/login", loginHandler(opts.Authenticator, log))

	return r
}

type loginRequest struct {
	ID       string `json:"id"`
	Password string `json:"password"`
}

type loginResponse struct {
	UserID      string `json:"user_id"`
	MemberID    string `json:"member_id"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name,omitempty"`
}

// loginHandler godoc
// @Summary Login contra el member API externo
// @Description Proxy de autenticación: valida credenciales contra el member API y devuelve los claims del miembro. El user_id devuelto escopa todas las demás operaciones.
// @Tags auth
// @Accept json
// @Produce json
// @Param payload body loginRequest true "Credenciales"
// @Success 200 {object} loginResponse
// @Failure 401 {string} string "login failed"
// @Failure 501 {string} string "login not configured"
// @Router /auth/login [post]
func loginHandler(authn auth.Authenticator, log *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if authn == nil {
			http.Error(w, "login not configured", http.StatusNotImplemented)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.ID) == "" || req.Password == "" {
			http.Error(w, "id and password required", http.StatusBadRequest)
			return
		}

		claims, err := authn.Login(r.Context(), req.ID, req.Password)
		if err != nil {
			log.Infow("login rejected", "member_id", req.ID)
			http.Error(w, "login failed", http.StatusUnauthorized)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(loginResponse{
			UserID:      claims.UserID,
			MemberID:    claims.MemberID,
			Name:        claims.Name,
			CompanyName: claims.CompanyName,
		})
	}
}
