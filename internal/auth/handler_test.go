package auth_test

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"golang.org/x/crypto/bcrypt"

	"github.com/frahmantamala/clearance-management/internal/auth"
	"github.com/frahmantamala/clearance-management/internal/user"
)

var _ = Describe("Auth Handler Integration", func() {
	var (
		handler  *auth.Handler
		mockRepo *mockUserRepository
		tokenGen *auth.JWTTokenGenerator
	)

	okHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := user.FromContext(r.Context())
		Expect(ok).To(BeTrue())
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"username": u.Username})
	})

	BeforeEach(func() {
		mockRepo = newMockUserRepository()
		tokenGen = auth.NewJWTTokenGenerator("test-secret-at-least-32-characters!!", time.Hour)
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service := auth.NewService(mockRepo, tokenGen, bcrypt.MinCost, logger)
		handler = auth.NewHandler(service)
	})

	Describe("register and login round trip", func() {
		It("should issue a token that resolves back to the account", func() {
			register := httptest.NewRequest(http.MethodPost, "/api/auth/register",
				strings.NewReader(`{"username":"budi","email":"budi@student.university.edu","password":"supersecret"}`))
			w := httptest.NewRecorder()
			handler.Register(w, register)
			Expect(w.Code).To(Equal(http.StatusCreated))

			login := httptest.NewRequest(http.MethodPost, "/api/auth/login",
				strings.NewReader(`{"username":"budi","password":"supersecret"}`))
			w = httptest.NewRecorder()
			handler.Login(w, login)
			Expect(w.Code).To(Equal(http.StatusOK))

			var resp auth.LoginResponse
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Token).ToNot(BeEmpty())
			Expect(resp.User.Username).To(Equal("budi"))

			protected := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			protected.Header.Set("Authorization", "Bearer "+resp.Token)
			w = httptest.NewRecorder()
			handler.AuthMiddleware(okHandler).ServeHTTP(w, protected)
			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(ContainSubstring("budi"))
		})

		It("should never echo the password hash from register", func() {
			register := httptest.NewRequest(http.MethodPost, "/api/auth/register",
				strings.NewReader(`{"username":"budi","email":"budi@student.university.edu","password":"supersecret"}`))
			w := httptest.NewRecorder()
			handler.Register(w, register)

			Expect(w.Code).To(Equal(http.StatusCreated))
			Expect(w.Body.String()).ToNot(ContainSubstring("supersecret"))
			Expect(w.Body.String()).ToNot(ContainSubstring("password_hash"))
		})
	})

	Describe("AuthMiddleware", func() {
		It("should reject requests without a token", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			w := httptest.NewRecorder()

			handler.AuthMiddleware(okHandler).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).To(ContainSubstring("No token provided"))
		})

		It("should mark expired tokens so clients force a re-login", func() {
			u := &user.User{Username: "budi", Email: "budi@student.university.edu", PasswordHash: "x", Role: user.RoleUser}
			Expect(mockRepo.Create(u)).To(Succeed())

			expiredGen := auth.NewJWTTokenGenerator("test-secret-at-least-32-characters!!", -time.Hour)
			token, err := expiredGen.GenerateAccessToken(u.ID)
			Expect(err).ToNot(HaveOccurred())

			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()

			handler.AuthMiddleware(okHandler).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))

			var resp struct {
				Expired bool `json:"expired"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Expired).To(BeTrue())
		})

		It("should not mark plainly invalid tokens as expired", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
			req.Header.Set("Authorization", "Bearer garbage")
			w := httptest.NewRecorder()

			handler.AuthMiddleware(okHandler).ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusUnauthorized))
			Expect(w.Body.String()).ToNot(ContainSubstring(`"expired":true`))
		})
	})

	Describe("RequireAdmin", func() {
		adminOnly := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
		})

		It("should pass admins through", func() {
			admin := &user.User{ID: 1, Username: "admin", Role: user.RoleAdmin}
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req = req.WithContext(user.NewContext(req.Context(), admin))
			w := httptest.NewRecorder()

			handler.RequireAdmin(adminOnly).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusOK))
		})

		It("should fail closed for regular users", func() {
			regular := &user.User{ID: 2, Username: "budi", Role: user.RoleUser}
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			req = req.WithContext(user.NewContext(req.Context(), regular))
			w := httptest.NewRecorder()

			handler.RequireAdmin(adminOnly).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusForbidden))
			Expect(w.Body.String()).To(ContainSubstring("ADMIN_ONLY"))
		})

		It("should reject requests that skipped identity resolution", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
			w := httptest.NewRecorder()

			handler.RequireAdmin(adminOnly).ServeHTTP(w, req)
			Expect(w.Code).To(Equal(http.StatusUnauthorized))
		})
	})
})
