package middleware_test

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/gofiber/fiber/v3"

	"takeoff/internal/common/middleware"
)

var _ = Describe("LoggerTo", func() {
	It("writes one line per request", func() {
		var buf bytes.Buffer
		app := fiber.New()
		app.Use(middleware.LoggerTo(&buf))
		app.Get("/documents", func(c fiber.Ctx) error { return c.SendString("[]") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/documents?project=p-1", nil))
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.StatusCode).To(Equal(http.StatusOK))

		Expect(buf.String()).To(ContainSubstring("200"))
		Expect(buf.String()).To(ContainSubstring("GET /documents?project=p-1"))
	})
})

var _ = Describe("CORS", func() {
	preflight := func(app *fiber.App, origin string) *http.Response {
		req := httptest.NewRequest(http.MethodOptions, "/documents/d-1", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
		resp, err := app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		return resp
	}

	It("allows PATCH from any origin by default", func() {
		app := fiber.New()
		app.Use(middleware.CORS())

		resp := preflight(app, "http://editor.local")
		Expect(resp.Header.Get("Access-Control-Allow-Origin")).To(Equal("*"))
		Expect(resp.Header.Get("Access-Control-Allow-Methods")).To(ContainSubstring("PATCH"))
	})

	It("restricts origins when given", func() {
		app := fiber.New()
		app.Use(middleware.CORS("http://editor.local"))

		Expect(preflight(app, "http://editor.local").Header.Get("Access-Control-Allow-Origin")).
			To(Equal("http://editor.local"))
		Expect(preflight(app, "http://evil.local").Header.Get("Access-Control-Allow-Origin")).
			To(BeEmpty())
	})
})

var _ = Describe("Bearer", func() {
	var (
		app    *fiber.App
		tokens *middleware.Tokens
	)

	BeforeEach(func() {
		tokens = middleware.ParseTokens(" abc:u-1, broken, :u-2,def:u-3")
		Expect(tokens.Len()).To(Equal(2))

		app = fiber.New()
		app.Use(middleware.Bearer(tokens))
		app.Get("/me", func(c fiber.Ctx) error { return c.SendString(middleware.UserID(c)) })
	})

	call := func(auth string) (int, string) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if auth != "" {
			req.Header.Set("Authorization", auth)
		}
		resp, err := app.Test(req)
		Expect(err).NotTo(HaveOccurred())
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		Expect(err).NotTo(HaveOccurred())
		return resp.StatusCode, string(body)
	}

	It("resolves the caller", func() {
		code, body := call("Bearer def")
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal("u-3"))
	})

	It("rejects missing and unknown tokens", func() {
		code, _ := call("")
		Expect(code).To(Equal(http.StatusUnauthorized))
		code, _ = call("Bearer nope")
		Expect(code).To(Equal(http.StatusUnauthorized))
		code, _ = call("Basic abc")
		Expect(code).To(Equal(http.StatusUnauthorized))
	})

	It("issues fresh tokens", func() {
		fresh := middleware.NewTokens()
		a, b := fresh.Issue("u-1"), fresh.Issue("u-1")
		Expect(a).NotTo(Equal(b))
		user, ok := fresh.Resolve(a)
		Expect(ok).To(BeTrue())
		Expect(user).To(Equal("u-1"))
	})

	It("accepts a token issued after the middleware was installed", func() {
		token := tokens.Issue("dev")
		Expect(tokens.Len()).To(Equal(3))

		code, body := call("Bearer " + token)
		Expect(code).To(Equal(http.StatusOK))
		Expect(body).To(Equal("dev"))
	})
})
