package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type mockVerdictor struct {
	verdict    string
	err        error
	lastSystem string
	lastUser   string
}

func (m *mockVerdictor) Classify(_ context.Context, system, user string) (string, error) {
	m.lastSystem = system
	m.lastUser = user
	if m.err != nil {
		return "", m.err
	}
	return m.verdict, nil
}

func TestInDomain_Verdicts(t *testing.T) {
	tests := []struct {
		name    string
		verdict string
		want    bool
	}{
		{"yes", "YES", true},
		{"no", "NO", false},
		{"lowercase yes", "yes", true},
		{"lowercase no", "no", false},
		{"padded", "  NO  ", false},
		{"prefixed no", "NO.", false},
		{"prefixed yes", "YES, it is", true},
		// Anything else fails open.
		{"garbage", "MAYBE", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := New(&mockVerdictor{verdict: tt.verdict}, []string{"policies"}, zap.NewNop())
			if got := svc.InDomain(context.Background(), "some question"); got != tt.want {
				t.Errorf("InDomain with verdict %q = %v, want %v", tt.verdict, got, tt.want)
			}
		})
	}
}

func TestInDomain_FailsOpenOnError(t *testing.T) {
	svc := New(&mockVerdictor{err: errors.New("provider down")}, nil, zap.NewNop())

	if !svc.InDomain(context.Background(), "anything") {
		t.Error("classifier error must fail open (inDomain=true)")
	}
}

func TestInDomain_PromptCarriesTopicsAndQuery(t *testing.T) {
	mock := &mockVerdictor{verdict: "YES"}
	svc := New(mock, []string{"grading policy", "campus housing"}, zap.NewNop())

	svc.InDomain(context.Background(), "how are grades appealed?")

	for _, want := range []string{"grading policy", "campus housing", "how are grades appealed?"} {
		if !strings.Contains(mock.lastUser, want) {
			t.Errorf("prompt missing %q:\n%s", want, mock.lastUser)
		}
	}
	if !strings.Contains(mock.lastSystem, "YES") || !strings.Contains(mock.lastSystem, "NO") {
		t.Errorf("system prompt should demand a YES/NO token:\n%s", mock.lastSystem)
	}
}
