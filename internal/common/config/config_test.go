package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"takeoff/internal/common/config"
)

var _ = Describe("Config", func() {
	// GinkgoT().Setenv restores the variable afterwards.
	clearEnv := func() {
		for _, k := range []string{"PORT", "ENV", "DOCS_DB_PATH", "DOCUMENTS_URL", "OPENAPI_PATH", "DOCS_API_TOKENS",
			"AUTOSAVE_DELAY_MS", "DRAG_THRESHOLD_PX", "SAVE_TIMEOUT"} {
			GinkgoT().Setenv(k, "")
		}
	}

	writeFile := func(body string) string {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte(body), 0o644)).To(Succeed())
		return path
	}

	BeforeEach(clearEnv)

	It("loads the editor defaults", func() {
		cfg := config.Load()
		Expect(cfg.Port).To(Equal("3000"))
		Expect(cfg.Editor.AutosaveDelay()).To(Equal(2 * time.Second))
		Expect(cfg.Editor.DragThresholdPX).To(Equal(3.0))
		Expect(cfg.Editor.SaveTimeoutDuration()).To(Equal(10 * time.Second))
		Expect(cfg.APITokens).To(BeEmpty())
		Expect(cfg.OpenAPIPath).To(Equal("docs/takeoff.openapi.yaml"))
	})

	It("reads overrides from the environment", func() {
		GinkgoT().Setenv("PORT", "8080")
		GinkgoT().Setenv("AUTOSAVE_DELAY_MS", "500")
		GinkgoT().Setenv("DRAG_THRESHOLD_PX", "-1")
		GinkgoT().Setenv("SAVE_TIMEOUT", "nope")

		cfg := config.Load()
		Expect(cfg.Port).To(Equal("8080"))
		Expect(cfg.Editor.AutosaveDelay()).To(Equal(500 * time.Millisecond))
		Expect(cfg.Editor.DragThresholdPX).To(Equal(3.0))
		Expect(cfg.Editor.SaveTimeout).To(Equal(10))
	})

	It("reads a YAML file and fills the gaps with defaults", func() {
		cfg, err := config.LoadFile(writeFile(`
port: "4000"
documents_db_path: /var/lib/takeoff/docs.db
api_tokens: "abc:u-1"
editor:
  autosave_delay_ms: 750
  drag_threshold_px: 0
`))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal("4000"))
		Expect(cfg.DocumentsDBPath).To(Equal("/var/lib/takeoff/docs.db"))
		Expect(cfg.APITokens).To(Equal("abc:u-1"))
		Expect(cfg.Editor.AutosaveDelayMS).To(Equal(750))
		Expect(cfg.Editor.DragThresholdPX).To(Equal(3.0))
		Expect(cfg.Editor.SaveTimeout).To(Equal(10))
		Expect(cfg.DocumentsURL).To(Equal("http://localhost:3003"))
	})

	It("lets the environment win over the file", func() {
		GinkgoT().Setenv("DOCS_DB_PATH", "env.db")
		cfg, err := config.LoadFile(writeFile("documents_db_path: file.db\n"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.DocumentsDBPath).To(Equal("env.db"))
	})

	It("reports unreadable and malformed files", func() {
		_, err := config.LoadFile(filepath.Join(GinkgoT().TempDir(), "missing.yaml"))
		Expect(err).To(MatchError(ContainSubstring("read config")))

		_, err = config.LoadFile(writeFile("editor: [1, 2"))
		Expect(err).To(MatchError(ContainSubstring("parse config")))
	})
})
