// Package setup checks and prepares a working directory for the engine:
// the service account key, the .env file and the credentials directory.
package setup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/teemow/automation-engine/internal/google"
	"github.com/teemow/automation-engine/internal/serviceusage"
)

// Defaults relative to the working directory.
const (
	CredentialsDir    = "credentials"
	DefaultKeyFile    = "credentials/automation-service-key.json"
	EnvFile           = ".env"
	EnvExampleFile    = ".env.example"
	CredentialsEnvVar = "GOOGLE_APPLICATION_CREDENTIALS"
	credentialsIgnore = "# Never commit credentials\n*.json\n*.pem\n*.key\n.env\n"
	gitignoreFileName = ".gitignore"
)

// API is a Google API the engine uses.
type API struct {
	Name    string `json:"name"`
	Purpose string `json:"purpose"`
}

// RequiredAPIs lists the APIs to enable on the project.
var RequiredAPIs = []API{
	{Name: "drive.googleapis.com", Purpose: "file operations and sharing"},
	{Name: "sheets.googleapis.com", Purpose: "spreadsheets and the sheets database"},
	{Name: "docs.googleapis.com", Purpose: "documents"},
	{Name: "storage.googleapis.com", Purpose: "large files and results"},
	{Name: "firestore.googleapis.com", Purpose: "execution state documents"},
	{Name: "bigquery.googleapis.com", Purpose: "analytics queries"},
	{Name: "run.googleapis.com", Purpose: "serverless compute"},
	{Name: "cloudfunctions.googleapis.com", Purpose: "event-driven automation"},
	{Name: "aiplatform.googleapis.com", Purpose: "Vertex AI models"},
	{Name: "cloudbuild.googleapis.com", Purpose: "container builds"},
	{Name: "cloudscheduler.googleapis.com", Purpose: "cron jobs"},
	{Name: "cloudtasks.googleapis.com", Purpose: "task queues"},
	{Name: "pubsub.googleapis.com", Purpose: "messaging"},
	{Name: "secretmanager.googleapis.com", Purpose: "secrets"},
}

// RequiredAPINames returns the service names of RequiredAPIs.
func RequiredAPINames() []string {
	names := make([]string, len(RequiredAPIs))
	for i, api := range RequiredAPIs {
		names[i] = api.Name
	}
	return names
}

// Options configures Check.
type Options struct {
	// Dir is the working directory. Empty means ".".
	Dir string

	// KeyPath is the service account key. Relative paths are resolved
	// against Dir. Empty means DefaultKeyFile.
	KeyPath string

	// Getenv reads the environment. Nil means os.Getenv.
	Getenv func(string) string
}

// Report is the outcome of Check.
type Report struct {
	KeyPath     string `json:"keyPath"`
	KeyFound    bool   `json:"keyFound"`
	KeyError    string `json:"keyError,omitempty"`
	ProjectID   string `json:"projectId,omitempty"`
	ClientEmail string `json:"clientEmail,omitempty"`

	EnvFileFound bool `json:"envFileFound"`

	CredentialsEnvSet bool   `json:"credentialsEnvSet"`
	CredentialsEnv    string `json:"credentialsEnv,omitempty"`

	APIs []serviceusage.APIState `json:"apis,omitempty"`
}

// Ready reports whether the key is present and readable.
func (r *Report) Ready() bool {
	return r.KeyFound && r.KeyError == ""
}

// Check inspects the working directory without changing anything.
func Check(opts Options) *Report {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}
	keyPath := opts.KeyPath
	if keyPath == "" {
		keyPath = DefaultKeyFile
	}
	if !filepath.IsAbs(keyPath) {
		keyPath = filepath.Join(dir, keyPath)
	}

	report := &Report{KeyPath: keyPath}

	if _, err := os.Stat(keyPath); err == nil {
		report.KeyFound = true
		key, _, err := google.ReadServiceAccountKey(keyPath)
		if err != nil {
			report.KeyError = err.Error()
		} else {
			report.ProjectID = key.ProjectID
			report.ClientEmail = key.ClientEmail
		}
	}

	if _, err := os.Stat(filepath.Join(dir, EnvFile)); err == nil {
		report.EnvFileFound = true
	}

	report.CredentialsEnv = getenv(CredentialsEnvVar)
	report.CredentialsEnvSet = report.CredentialsEnv != ""

	return report
}

// StateChecker reports API states. *serviceusage.Client implements it.
type StateChecker interface {
	States(ctx context.Context, apis []string) ([]serviceusage.APIState, error)
}

// CheckAPIs adds the enabled state of RequiredAPIs to the report.
func (r *Report) CheckAPIs(ctx context.Context, checker StateChecker) error {
	states, err := checker.States(ctx, RequiredAPINames())
	if err != nil {
		return err
	}
	r.APIs = states
	return nil
}

// DisabledAPIs returns the checked APIs that are not enabled.
func (r *Report) DisabledAPIs() []string {
	var out []string
	for _, s := range r.APIs {
		if !s.Enabled {
			out = append(out, s.Name)
		}
	}
	return out
}

// Result lists what Prepare changed.
type Result struct {
	CreatedCredentialsDir bool `json:"createdCredentialsDir"`
	WroteGitignore        bool `json:"wroteGitignore"`
	CreatedEnvFile        bool `json:"createdEnvFile"`
}

// Prepare creates the credentials directory with a .gitignore that keeps
// keys and .env files out of version control, and copies .env.example to
// .env when .env does not exist yet.
func Prepare(dir string) (*Result, error) {
	if dir == "" {
		dir = "."
	}
	result := &Result{}

	credDir := filepath.Join(dir, CredentialsDir)
	if _, err := os.Stat(credDir); errors.Is(err, fs.ErrNotExist) {
		result.CreatedCredentialsDir = true
	}
	if err := os.MkdirAll(credDir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", credDir, err)
	}

	ignore := filepath.Join(credDir, gitignoreFileName)
	if err := os.WriteFile(ignore, []byte(credentialsIgnore), 0o644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", ignore, err)
	}
	result.WroteGitignore = true

	envPath := filepath.Join(dir, EnvFile)
	examplePath := filepath.Join(dir, EnvExampleFile)
	if _, err := os.Stat(envPath); errors.Is(err, fs.ErrNotExist) {
		copied, err := copyIfExists(examplePath, envPath)
		if err != nil {
			return nil, err
		}
		result.CreatedEnvFile = copied
	}

	return result, nil
}

func copyIfExists(src, dst string) (bool, error) {
	in, err := os.Open(src)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return false, fmt.Errorf("failed to create %s: %w", dst, err)
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return false, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", dst, err)
	}
	return true, nil
}

// NextSteps returns the remaining manual steps for a report.
func NextSteps(r *Report) []string {
	var steps []string
	if !r.KeyFound {
		steps = append(steps, fmt.Sprintf("Download a service account key (Cloud Console > IAM > Service Accounts > Keys) and save it as %s", r.KeyPath))
	} else if r.KeyError != "" {
		steps = append(steps, fmt.Sprintf("Replace %s: %s", r.KeyPath, r.KeyError))
	}
	if disabled := r.DisabledAPIs(); len(disabled) > 0 {
		steps = append(steps, "Enable APIs: "+strings.Join(disabled, ", "))
	} else if len(r.APIs) == 0 {
		steps = append(steps, "Enable the required APIs (run setup with --check-apis to see which are missing)")
	}
	if !r.EnvFileFound {
		steps = append(steps, fmt.Sprintf("Create %s from %s and set OWNER_EMAIL", EnvFile, EnvExampleFile))
	}
	if !r.CredentialsEnvSet {
		steps = append(steps, fmt.Sprintf("export %s=%s", CredentialsEnvVar, r.KeyPath))
	}
	return steps
}
