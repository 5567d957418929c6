package request_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"

	"github.com/go-chi/chi"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/frahmantamala/clearance-management/internal/request"
	"github.com/frahmantamala/clearance-management/internal/user"
)

var _ = Describe("Request Handler Integration", func() {
	var (
		mockRepo  *mockRequestRepository
		mockSaver *mockDocumentSaver
		service   *request.Service
		handler   *request.Handler
		router    *chi.Mux
		caller    *user.User
	)

	// asUser routes every request through a context carrying the given
	// identity, standing in for the auth middleware.
	asUser := func(u *user.User) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(user.NewContext(r.Context(), u)))
			})
		}
	}

	newMultipartForm := func(fields map[string]string, filenames ...string) (*bytes.Buffer, string) {
		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		for key, value := range fields {
			Expect(writer.WriteField(key, value)).To(Succeed())
		}
		for _, name := range filenames {
			part, err := writer.CreateFormFile("documents", name)
			Expect(err).ToNot(HaveOccurred())
			_, err = io.Copy(part, strings.NewReader("file content"))
			Expect(err).ToNot(HaveOccurred())
		}
		Expect(writer.Close()).To(Succeed())
		return body, writer.FormDataContentType()
	}

	buildRouter := func(u *user.User) *chi.Mux {
		r := chi.NewRouter()
		r.Use(asUser(u))
		r.Post("/requests", handler.CreateRequest)
		r.Get("/requests", handler.GetRequests)
		r.Get("/requests/{id}", handler.GetRequest)
		r.Put("/requests/{id}", handler.UpdateStatus)
		r.Post("/requests/{id}/review", handler.ReviewRequest)
		r.Post("/requests/{id}/comments", handler.AddComment)
		r.Delete("/requests/{id}", handler.DeleteRequest)
		return r
	}

	BeforeEach(func() {
		mockRepo = newMockRequestRepository()
		mockSaver = &mockDocumentSaver{}
		logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
		service = request.NewService(mockRepo, mockSaver, 0, logger)
		handler = request.NewHandler(service)

		caller = &user.User{ID: 1, Username: "budi", Role: user.RoleUser}
		router = buildRouter(caller)
	})

	Describe("POST /requests", func() {
		It("should create a pending request from the multipart form", func() {
			body, contentType := newMultipartForm(map[string]string{
				"fullName":      "Budi Santoso",
				"email":         "budi@student.university.edu",
				"clearanceType": "Graduation",
				"reason":        "Completing final semester",
				"description":   "All coursework finished",
			}, "transcript.pdf")

			req := httptest.NewRequest(http.MethodPost, "/requests", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var created request.ClearanceRequest
			Expect(json.NewDecoder(w.Body).Decode(&created)).To(Succeed())
			Expect(created.Status).To(Equal(request.StatusPending))
			Expect(created.RequesterID).To(Equal(caller.ID))
			Expect(created.Documents).To(HaveLen(1))
		})

		It("should return 400 with every missing field listed", func() {
			body, contentType := newMultipartForm(map[string]string{})

			req := httptest.NewRequest(http.MethodPost, "/requests", body)
			req.Header.Set("Content-Type", contentType)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))

			var resp struct {
				Code    string `json:"code"`
				Details struct {
					Errors []struct {
						Field string `json:"field"`
					} `json:"errors"`
				} `json:"details"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Code).To(Equal("VALIDATION_FAILED"))
			Expect(resp.Details.Errors).To(HaveLen(5))
		})
	})

	Describe("GET /requests", func() {
		It("should return a JSON array even when the caller has no requests", func() {
			req := httptest.NewRequest(http.MethodGet, "/requests", nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(strings.TrimSpace(w.Body.String())).To(Equal("[]"))
		})
	})

	Describe("review endpoints", func() {
		var created *request.ClearanceRequest

		BeforeEach(func() {
			var err error
			created, err = service.Create(caller, request.CreateRequestDTO{
				FullName:      "Budi Santoso",
				Email:         "budi@student.university.edu",
				ClearanceType: "Graduation",
				Reason:        "Completing final semester",
				Description:   "All coursework finished",
			}, nil)
			Expect(err).ToNot(HaveOccurred())

			router = buildRouter(&user.User{ID: 2, Username: "admin", Role: user.RoleAdmin})
		})

		It("should return the bare request from PUT", func() {
			payload := `{"status":"Approved","reviewComment":"All settled"}`
			req := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/requests/%d", created.ID), strings.NewReader(payload))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var reviewed request.ClearanceRequest
			Expect(json.NewDecoder(w.Body).Decode(&reviewed)).To(Succeed())
			Expect(reviewed.Status).To(Equal(request.StatusApproved))
		})

		It("should wrap the request in a message envelope from the review route", func() {
			payload := `{"status":"Rejected","reviewComment":"Missing documents"}`
			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/requests/%d/review", created.ID), strings.NewReader(payload))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var resp struct {
				Message string                   `json:"message"`
				Request request.ClearanceRequest `json:"request"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Message).To(Equal("Request reviewed successfully"))
			Expect(resp.Request.Status).To(Equal(request.StatusRejected))
		})

		It("should return 400 when the request was already reviewed", func() {
			payload := `{"status":"Approved"}`
			first := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/requests/%d", created.ID), strings.NewReader(payload))
			router.ServeHTTP(httptest.NewRecorder(), first)

			second := httptest.NewRequest(http.MethodPut, fmt.Sprintf("/requests/%d", created.ID), strings.NewReader(payload))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, second)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			Expect(w.Body.String()).To(ContainSubstring("REQUEST_ALREADY_REVIEWED"))
		})

		It("should return 400 for a malformed id", func() {
			req := httptest.NewRequest(http.MethodPut, "/requests/abc", strings.NewReader(`{"status":"Approved"}`))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("POST /requests/{id}/comments", func() {
		It("should return the comment in a message envelope", func() {
			created, err := service.Create(caller, request.CreateRequestDTO{
				FullName:      "Budi Santoso",
				Email:         "budi@student.university.edu",
				ClearanceType: "Graduation",
				Reason:        "Completing final semester",
				Description:   "All coursework finished",
			}, nil)
			Expect(err).ToNot(HaveOccurred())

			payload := `{"text":"Please attach your library card"}`
			req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/requests/%d/comments", created.ID), strings.NewReader(payload))
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusCreated))

			var resp struct {
				Message string          `json:"message"`
				Comment request.Comment `json:"comment"`
			}
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp.Message).To(Equal("Comment added successfully"))
			Expect(resp.Comment.Text).To(Equal("Please attach your library card"))
			Expect(resp.Comment.AuthorID).To(Equal(caller.ID))
		})
	})

	Describe("DELETE /requests/{id}", func() {
		It("should echo the deleted id", func() {
			created, err := service.Create(caller, request.CreateRequestDTO{
				FullName:      "Budi Santoso",
				Email:         "budi@student.university.edu",
				ClearanceType: "Graduation",
				Reason:        "Completing final semester",
				Description:   "All coursework finished",
			}, nil)
			Expect(err).ToNot(HaveOccurred())

			router = buildRouter(&user.User{ID: 2, Username: "admin", Role: user.RoleAdmin})

			req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/requests/%d", created.ID), nil)
			w := httptest.NewRecorder()

			router.ServeHTTP(w, req)

			Expect(w.Code).To(Equal(http.StatusOK))

			var resp map[string]int64
			Expect(json.NewDecoder(w.Body).Decode(&resp)).To(Succeed())
			Expect(resp["deleted"]).To(Equal(created.ID))
		})
	})
})
