package e2e_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"

	"github.com/complyai/comply/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var binaryPath string

func TestMain(m *testing.M) {
	// Build binary before running tests
	dir, err := os.MkdirTemp("", "comply-e2e")
	if err != nil {
		panic(err)
	}
	defer os.RemoveAll(dir)

	binaryPath = filepath.Join(dir, "comply")
	cmd := exec.Command("go", "build", "-o", binaryPath, "../../cmd/comply")
	if out, err := cmd.CombinedOutput(); err != nil {
		panic("build failed: " + string(out))
	}

	os.Exit(m.Run())
}

func fixturePath(parts ...string) string {
	abs, _ := filepath.Abs(filepath.Join(append([]string{"../../testdata"}, parts...)...))
	return abs
}

func run(t *testing.T, args ...string) (string, int) {
	t.Helper()
	cmd := exec.Command(binaryPath, args...)
	cmd.Env = cleanEnv()
	out, err := cmd.CombinedOutput()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		}
	}
	return string(out), exitCode
}

// cleanEnv drops COMPLY_ variables from the host so runs are reproducible.
func cleanEnv() []string {
	var env []string
	for _, kv := range os.Environ() {
		if len(kv) >= 7 && kv[:7] == "COMPLY_" {
			continue
		}
		env = append(env, kv)
	}
	return env
}

// --- Scan Tests ---

func TestE2E_Scan(t *testing.T) {
	out, code := run(t, "scan", fixturePath("policies", "complete.txt"))
	assert.Equal(t, 0, code, out)
	assert.Contains(t, out, "comply")
	assert.Contains(t, out, "100 / 100")
}

func TestE2E_ScanJSON(t *testing.T) {
	out, code := run(t, "scan", fixturePath("policies", "weak.txt"), "--json")
	require.Equal(t, 0, code, out)

	var report domain.ComplianceReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 3, report.OverallScore)
	assert.Equal(t, domain.StatusNonCompliant, report.Status)
	assert.NotEmpty(t, report.ID)
}

func TestE2E_ScanWithRepository(t *testing.T) {
	out, code := run(t, "scan", fixturePath("policies", "complete.txt"),
		"--repo", fixturePath("repos", "insecure-app"), "--json")
	require.Equal(t, 0, code, out)

	var report domain.ComplianceReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, 80, report.OverallScore)
	assert.Equal(t, domain.StatusPartiallyCompliant, report.Status)
}

func TestE2E_ScanCIGate(t *testing.T) {
	_, code := run(t, "scan", fixturePath("policies", "weak.txt"), "--ci", "--min", "50")
	assert.Equal(t, 1, code)

	_, code = run(t, "scan", fixturePath("policies", "politique.md"), "--ci", "--min", "50")
	assert.Equal(t, 0, code)
}

func TestE2E_InvalidRules(t *testing.T) {
	out, code := run(t, "rules", "--rules", fixturePath("rules", "invalid.yaml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, out, "config error")
}

func TestE2E_Version(t *testing.T) {
	out, code := run(t, "version")
	assert.Equal(t, 0, code)
	assert.Contains(t, out, "comply")
}

// --- Serve Tests ---

func freeAddr(t *testing.T) string {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())
	return addr
}

func TestE2E_Serve(t *testing.T) {
	addr := freeAddr(t)
	cmd := exec.Command(binaryPath, "serve", "--addr", addr)
	cmd.Env = cleanEnv()
	require.NoError(t, cmd.Start())
	t.Cleanup(func() {
		_ = cmd.Process.Signal(os.Interrupt)
		_ = cmd.Wait()
	})

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/health")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 50*time.Millisecond)

	policy, err := os.ReadFile(fixturePath("policies", "complete.txt"))
	require.NoError(t, err)

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fw, err := w.CreateFormFile("privacy_policy", "complete.txt")
	require.NoError(t, err)
	_, err = fw.Write(policy)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	resp, err := http.Post(base+"/analyze", w.FormDataContentType(), &body)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-Id"))

	var result map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, "success", result["status"])
	assert.Equal(t, fmt.Sprint(100), fmt.Sprint(result["overall_score"]))
	assert.Equal(t, "compliant", result["compliance_status"])
}
