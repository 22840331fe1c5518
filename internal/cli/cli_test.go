package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/storygrid-backend/internal/auth"
)

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("ENV_FILE", filepath.Join(t.TempDir(), "none.env"))
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestScanFromStdin(t *testing.T) {
	out, err := run(t, "These superfoods will melt fat overnight.", "scan", "-")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	var got struct {
		Findings []map[string]any `json:"findings"`
		Summary  struct {
			Total int `json:"totalIssues"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if len(got.Findings) == 0 || got.Summary.Total != len(got.Findings) {
		t.Fatalf("findings: got=%d total=%d", len(got.Findings), got.Summary.Total)
	}
}

func TestScanRequiresArg(t *testing.T) {
	if _, err := run(t, "", "scan"); err == nil {
		t.Fatalf("expected arg error")
	}
}

func TestTokenVerifies(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	t.Setenv("AUTH_JWT_ISSUER", "")
	userID := uuid.New()
	out, err := run(t, "", "token", "--user", userID.String())
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	var got struct {
		UserID uuid.UUID `json:"userId"`
		Token  string    `json:"token"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	v, err := auth.NewVerifier("cli-secret", "")
	if err != nil {
		t.Fatalf("NewVerifier: %v", err)
	}
	id, err := v.Verify(got.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != userID {
		t.Fatalf("user: want=%s got=%s", userID, id.UserID)
	}
}

func TestTokenWithoutSecret(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "")
	if _, err := run(t, "", "token"); err == nil {
		t.Fatalf("expected missing secret error")
	}
}

func TestNormalizeValidatesIDs(t *testing.T) {
	if _, err := run(t, "", "normalize", "--project", "nope", "--user", uuid.NewString()); err == nil {
		t.Fatalf("expected invalid project error")
	}
}
