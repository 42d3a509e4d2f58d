package cmd

import (
	"bytes"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

const smallPlatform = `
name: small
quantum: 50ns
memories:
  - name: RAM
    size: 0x1000
    read_latency: 5ns
    write_latency: 5ns
routers:
  - name: Bus
    outputs: [RAM]
    mappings:
      - {port: 0, start: 0x80000000, size: 0x1000}
generators:
  - name: CPU
    target: Bus.In0
    count: 16
    seed: 3
    start: 0x80000000
    size: 0x100
    read_ratio: 0.5
    think: 1ns
    verify: true
`

var _ = Describe("vplat", func() {
	var (
		dir    string
		config string
		out    *bytes.Buffer
	)

	execute := func(args ...string) error {
		out = new(bytes.Buffer)
		rootCmd.SetOut(out)
		rootCmd.SetErr(out)
		rootCmd.SetArgs(append(args, "--env-file", filepath.Join(dir, ".env")))

		return rootCmd.Execute()
	}

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
		config = filepath.Join(dir, "small.yaml")
		Expect(os.WriteFile(config, []byte(smallPlatform), 0o644)).To(Succeed())
	})

	It("should dump the address map", func() {
		Expect(execute("dump", "--config", config)).To(Succeed())

		Expect(out.String()).To(ContainSubstring("platform small"))
		Expect(out.String()).To(ContainSubstring("Bus.In0 (64 bits, rw)"))
		Expect(out.String()).To(ContainSubstring(
			"0: 80000000..80000fff -> [00000000..00000fff] RAM"))
	})

	It("should take the config from the env file", func() {
		Expect(os.WriteFile(filepath.Join(dir, ".env"),
			[]byte(EnvConfig+"="+config+"\n"), 0o644)).To(Succeed())
		DeferCleanup(os.Unsetenv, EnvConfig)

		Expect(execute("dump", "--config", "")).To(Succeed())
		Expect(out.String()).To(ContainSubstring("platform small"))
	})

	It("should fail without a config", func() {
		os.Unsetenv(EnvConfig)

		Expect(execute("dump", "--config", "")).
			To(MatchError(ContainSubstring("no platform description")))
	})

	It("should run and trace the platform", func() {
		trace := filepath.Join(dir, "trace")

		Expect(execute("run", "--config", config, "--trace-db", trace)).
			To(Succeed())

		Expect(out.String()).To(ContainSubstring("CPU: "))
		Expect(out.String()).To(ContainSubstring("0 errors, 0 mismatches"))
		Expect(trace + ".sqlite3").To(BeAnExistingFile())
	})
})
