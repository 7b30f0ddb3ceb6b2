package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	api "github.com/tankops/bath-planner/api/v1alpha1"
	"github.com/tankops/bath-planner/internal/client"
	"github.com/tankops/bath-planner/pkg/requestid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("bath planner client", func() {
	var ctx context.Context

	BeforeEach(func() {
		ctx = context.Background()
	})

	It("posts a correction request", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.Method).To(Equal(http.MethodPost))
			Expect(r.URL.Path).To(Equal("/api/v1/modules/Module 3/correction"))
			Expect(r.Header.Get("Content-Type")).To(Equal("application/json"))
			Expect(r.Header.Get(requestid.Header)).NotTo(BeEmpty())

			var req api.CorrectionRequest
			Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())
			Expect(req.Current).To(HaveKeyWithValue("A", 130.0))

			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(api.CorrectionResult{Status: "OPTIMAL_DILUTION", AddWater: 11.36})
		}))
		defer server.Close()

		c := client.New(server.URL, 0)
		result, err := c.Correct(ctx, "Module 3", api.CorrectionRequest{
			CurrentVolume: 120,
			Current:       map[string]float64{"A": 130, "B": 58},
		})
		Expect(err).To(BeNil())
		Expect(result.Status).To(Equal("OPTIMAL_DILUTION"))
	})

	It("returns the server error message", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			_ = json.NewEncoder(w).Encode(api.Error{Message: `module "x" not found`, RequestId: "req-1"})
		}))
		defer server.Close()

		_, err := client.New(server.URL, 0).GetModule(ctx, "x")
		Expect(err).NotTo(BeNil())

		apiErr, ok := err.(*client.APIError)
		Expect(ok).To(BeTrue())
		Expect(apiErr.StatusCode).To(Equal(http.StatusNotFound))
		Expect(apiErr.RequestID).To(Equal("req-1"))
		Expect(err.Error()).To(ContainSubstring("not found"))
	})

	It("passes history filters as query parameters", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Query().Get("kind")).To(Equal("refill"))
			Expect(r.URL.Query().Get("limit")).To(Equal("5"))
			_, _ = w.Write([]byte("[]"))
		}))
		defer server.Close()

		history, err := client.New(server.URL, 0).History(ctx, "Module 3", "refill", 5)
		Expect(err).To(BeNil())
		Expect(history).To(BeEmpty())
	})

	It("downloads the history workbook", func() {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			Expect(r.URL.Path).To(Equal("/api/v1/modules/Module 7/history/export"))
			_, _ = w.Write([]byte("xlsx-bytes"))
		}))
		defer server.Close()

		content, err := client.New(server.URL, 0).ExportHistory(ctx, "Module 7")
		Expect(err).To(BeNil())
		Expect(string(content)).To(Equal("xlsx-bytes"))
	})

	It("reads the client config", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "client.yaml")
		Expect(os.WriteFile(path, []byte("service:\n  server: http://bath:3443\n"), 0o600)).To(Succeed())

		cfg, err := client.ParseConfigFile(path)
		Expect(err).To(BeNil())
		Expect(cfg.Service.Server).To(Equal("http://bath:3443"))

		cfg, err = client.ParseConfigFile(filepath.Join(dir, "missing.yaml"))
		Expect(err).To(BeNil())
		Expect(cfg.Service.Server).To(BeEmpty())
	})
})
