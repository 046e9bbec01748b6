package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"vaultengine/internal/vaultconfig"
	"vaultengine/internal/vaultconfig/yamlstore"

	"github.com/spf13/cobra"
)

// EnvRoot and EnvJSON are the environment variables vaultctl honors for
// the global flags of the same name, mirroring the teacher's
// BEADS_DIR/BD_JSON pair.
const (
	EnvRoot = "VAULT_ROOT"
	EnvJSON = "VAULT_JSON"
)

// AppProvider lazily initializes the App on first use, so the storage root
// and config store are resolved only when a command first calls Get.
type AppProvider struct {
	once sync.Once
	app  *App
	err  error

	RootOverride string
	JSONOutput   bool
	Out          *os.File
	Err          *os.File
}

// Get returns the App, initializing it on first call.
func (p *AppProvider) Get() (*App, error) {
	p.once.Do(func() {
		if p.app == nil {
			p.app, p.err = p.init()
		}
	})
	return p.app, p.err
}

// NewTestProvider creates a provider pre-initialized with app, for
// testing commands without touching the real filesystem resolution path.
func NewTestProvider(app *App) *AppProvider {
	return &AppProvider{app: app}
}

func (p *AppProvider) init() (*App, error) {
	root, err := resolveRoot(p.RootOverride)
	if err != nil {
		return nil, err
	}

	configDir := filepath.Join(root, ".vaultctl")
	store, err := yamlstore.New(filepath.Join(configDir, "config.yaml"))
	if err != nil {
		return nil, err
	}
	values := vaultconfig.ApplyDefaults(store)
	if values.Root == "" {
		values.Root = root
	}

	out := orDefaultFile(p.Out, os.Stdout)
	errOut := orDefaultFile(p.Err, os.Stderr)

	return &App{
		Root:        root,
		ConfigStore: store,
		ConfigDir:   configDir,
		Values:      values,
		Out:         out,
		Err:         errOut,
		JSON:        p.JSONOutput,
	}, nil
}

func orDefaultFile(f *os.File, def *os.File) *os.File {
	if f == nil {
		return def
	}
	return f
}

// resolveRoot picks the vault storage root: an explicit override, then
// VAULT_ROOT, then the current working directory.
func resolveRoot(override string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}
	if env := os.Getenv(EnvRoot); env != "" {
		return filepath.Abs(env)
	}
	return os.Getwd()
}

// Execute runs the vaultctl CLI.
func Execute() error {
	provider := &AppProvider{Out: os.Stdout, Err: os.Stderr}
	rootCmd := newRootCmd(provider)
	return rootCmd.Execute()
}

func newRootCmd(provider *AppProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "vaultctl",
		Short: "A crash-resistant JSON persistence engine for local tools",
		Long: `vaultctl manages projects backed by the vault engine: each project is a
directory of atomically-written JSON chunks guarded by a PID lock, with a
debounced staging buffer and zip checkpoints for point-in-time recovery.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("json") {
				if envJSON := strings.ToLower(os.Getenv(EnvJSON)); envJSON == "1" || envJSON == "true" {
					provider.JSONOutput = true
				}
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().BoolVar(&provider.JSONOutput, "json", false, "Output in JSON format (env: VAULT_JSON)")
	rootCmd.PersistentFlags().StringVar(&provider.RootOverride, "root", "", "Storage root directory (env: VAULT_ROOT)")

	rootCmd.AddCommand(newInitCmd(provider))
	rootCmd.AddCommand(newStageCmd(provider))
	rootCmd.AddCommand(newSyncCmd(provider))
	rootCmd.AddCommand(newFetchCmd(provider))
	rootCmd.AddCommand(newCheckpointCmd(provider))
	rootCmd.AddCommand(newDoctorCmd(provider))
	rootCmd.AddCommand(newListProjectsCmd(provider))
	rootCmd.AddCommand(newConfigCmd(provider))
	rootCmd.AddCommand(newDetachCmd(provider))
	rootCmd.AddCommand(newDeleteCmd(provider))
	rootCmd.AddCommand(newVersionCmd(provider))

	return rootCmd
}

func fail(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
