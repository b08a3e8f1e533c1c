// Command stressgen generates a single deterministic, seed-driven random
// C/C++ program intended to stress-test a compiler (spec.md §6).
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"

	"github.com/stressgen/stressgen/internal/config"
	"github.com/stressgen/stressgen/internal/genpolicy"
	"github.com/stressgen/stressgen/internal/generator"
	"github.com/stressgen/stressgen/internal/harness"
	"github.com/stressgen/stressgen/internal/ir"
	"github.com/stressgen/stressgen/internal/xerrors"
)

// version is the tool's own release version, reported by --version.
const version = "0.1.0"

func main() {
	var (
		quiet      bool
		outDir     string
		seedFlag   string
		stdFlag    string
		configPath string
		longMode64 bool
	)

	rootCmd := &cobra.Command{
		Use:           "stressgen",
		Short:         "Generate a deterministic, seed-driven random program for compiler stress testing",
		Args:          cobra.NoArgs,
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			seed, err := parseSeed(seedFlag)
			if err != nil {
				return err
			}
			lang, err := parseStd(stdFlag)
			if err != nil {
				return err
			}

			policy, err := loadPolicy(configPath)
			if err != nil {
				return err
			}

			reg := ir.NewRegistry(longMode64, lang)
			prog, err := generator.New(reg, policy, seed).Generate(seed)
			if err != nil {
				return xerrors.Wrap(xerrors.ErrInvalidIR, "generating program", err)
			}

			artifacts := harness.Build(prog)
			if err := writeArtifacts(outDir, lang, artifacts); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "seed %d -> %s (digest %s)\n", seed, outDir, artifacts.Digest)
			}
			return nil
		},
	}
	rootCmd.SetVersionTemplate("stressgen version {{.Version}}\n")

	rootCmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress the summary line printed on success")
	rootCmd.Flags().StringVarP(&outDir, "out-dir", "d", ".", "directory to write the generated artifacts into")
	rootCmd.Flags().StringVarP(&seedFlag, "seed", "s", "", "seed as N or V_N (V is this tool's own version); random if omitted")
	rootCmd.Flags().StringVar(&stdFlag, "std", "c11", "target language standard: c99, c11, c++98, c++03, c++11, c++14, c++17")
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "", "path to a JSON option document (spec.md §6); defaults built in if omitted")
	rootCmd.Flags().BoolVar(&longMode64, "long64", true, "treat long/unsigned long as 64-bit (vs. 32-bit)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "stressgen: %v\n", err)
		os.Exit(-1)
	}
}

// parseSeed accepts a bare integer seed or a "V_N" form where V is a
// semver-shaped tool version tag that must equal this tool's version, so a
// seed recorded alongside the tool version that produced it can be
// validated before reuse (spec.md §6).
func parseSeed(raw string) (uint64, error) {
	if raw == "" {
		return uint64(os.Getpid())*2654435761 + 0x9e3779b97f4a7c15, nil
	}
	if v, n, ok := strings.Cut(raw, "_"); ok {
		tag := v
		if !strings.HasPrefix(tag, "v") {
			tag = "v" + tag
		}
		if !semver.IsValid(tag) {
			return 0, xerrors.Newf(xerrors.ErrUsage, "seed %q: %q is not a valid version tag", raw, v)
		}
		if semver.Compare(tag, "v"+version) != 0 {
			return 0, xerrors.Newf(xerrors.ErrUsage, "seed %q: version %q does not match this generator's version %q", raw, v, version)
		}
		return parseUint(n, raw)
	}
	return parseUint(raw, raw)
}

func parseUint(n, original string) (uint64, error) {
	val, err := strconv.ParseUint(n, 10, 64)
	if err != nil {
		return 0, xerrors.Wrap(xerrors.ErrUsage, fmt.Sprintf("seed %q: numeric part must be an unsigned integer", original), err)
	}
	return val, nil
}

var stdNames = map[string]ir.LangMode{
	"c99":   ir.LangC99,
	"c11":   ir.LangC11,
	"c++98": ir.LangCpp98,
	"c++03": ir.LangCpp03,
	"c++11": ir.LangCpp11,
	"c++14": ir.LangCpp14,
	"c++17": ir.LangCpp17,
}

func parseStd(raw string) (ir.LangMode, error) {
	lang, ok := stdNames[strings.ToLower(raw)]
	if !ok {
		return 0, xerrors.Newf(xerrors.ErrUsage, "--std %q: must be one of c99, c11, c++98, c++03, c++11, c++14, c++17", raw)
	}
	return lang, nil
}

// loadPolicy resolves a GenPolicy. Without a config path it returns the
// built-in defaults. With one, it returns the policy cached at
// "<config>.cache" if that file exists; otherwise it validates and parses
// the JSON document, caches genpolicy.Default() and returns it. Option
// values in the document are not mapped onto the policy.
func loadPolicy(configPath string) (*genpolicy.Policy, error) {
	if configPath == "" {
		return genpolicy.Default(), nil
	}

	cachePath := configPath + ".cache"
	if cached, ok, err := config.LoadPolicyCache(cachePath); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, xerrors.Wrap(xerrors.ErrConfig, "reading config file", err)
	}
	if err := config.Validate(data); err != nil {
		return nil, err
	}
	if _, err := config.Load(configPath); err != nil {
		return nil, err
	}

	policy := genpolicy.Default()
	if err := config.SavePolicyCache(cachePath, policy); err != nil {
		return nil, err
	}
	return policy, nil
}

func writeArtifacts(outDir string, lang ir.LangMode, a *harness.Artifacts) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return xerrors.Wrap(xerrors.ErrEnvironment, "creating output directory", err)
	}
	ext := lang.FileExt()
	files := map[string]string{
		"init.h":        a.DeclHeader,
		"init." + ext:   a.Definitions,
		"func." + ext:   a.Function,
		"driver." + ext: a.Driver,
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(outDir, name), []byte(content), 0o644); err != nil {
			return xerrors.Wrap(xerrors.ErrEnvironment, fmt.Sprintf("writing %s", name), err)
		}
	}
	return nil
}
