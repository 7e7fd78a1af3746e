package launch

import (
	"errors"
	"testing"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/storage"
)

func TestDetectKind(t *testing.T) {
	tests := []struct {
		name     string
		target   string
		expected Kind
	}{
		{name: "mailto", target: "mailto:ada@example.com", expected: KindMail},
		{name: "uppercase mailto", target: "MAILTO:ada@example.com", expected: KindMail},
		{name: "tel", target: "tel:+15551234", expected: KindPhone},
		{name: "https", target: "https://example.com", expected: KindWeb},
		{name: "http", target: "http://example.com", expected: KindWeb},
		{name: "file", target: "file:///etc/passwd", expected: KindUnknown},
		{name: "bare", target: "ada@example.com", expected: KindUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectKind(tt.target); got != tt.expected {
				t.Errorf("DetectKind(%s) = %v, want %v", tt.target, got, tt.expected)
			}
		})
	}
}

func TestTarget(t *testing.T) {
	c := storage.Contact{Email: "ada@example.com", Phone: "+1 (555) 010-0199"}

	mail, err := Target(c, KindMail)
	if err != nil || mail != "mailto:ada@example.com" {
		t.Errorf("mail target = %q, %v", mail, err)
	}
	tel, err := Target(c, KindPhone)
	if err != nil || tel != "tel:+15550100199" {
		t.Errorf("phone target = %q, %v", tel, err)
	}

	if _, err := Target(storage.Contact{}, KindMail); !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget for missing email, got %v", err)
	}
	if _, err := Target(storage.Contact{Phone: "n/a"}, KindPhone); !errors.Is(err, ErrNoTarget) {
		t.Errorf("expected ErrNoTarget for phone without digits, got %v", err)
	}
	if _, err := Target(storage.Contact{Email: "ada <ada@example.com>"}, KindMail); err == nil {
		t.Error("expected an error for a malformed address")
	}
	if _, err := Target(c, KindWeb); err == nil {
		t.Error("expected an error for web links")
	}
}

type call struct {
	name string
	args []string
}

func recording(l *Launcher) *[]call {
	var calls []call
	l.start = func(name string, args ...string) error {
		calls = append(calls, call{name: name, args: args})
		return nil
	}
	return &calls
}

func TestOpenUsesConfiguredOpener(t *testing.T) {
	l := New(config.OpenConfig{Opener: "my-opener"})
	delete(l.apps, KindMail)
	calls := recording(l)

	if err := l.Open("mailto:ada@example.com"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if len(*calls) != 1 {
		t.Fatalf("expected one launch, got %d", len(*calls))
	}
	got := (*calls)[0]
	if got.name != "my-opener" || len(got.args) != 1 || got.args[0] != "mailto:ada@example.com" {
		t.Errorf("unexpected launch %+v", got)
	}
}

func TestOpenPrefersKindApp(t *testing.T) {
	l := &Launcher{opener: "xdg-open", apps: map[Kind]string{KindPhone: "dialer"}}
	calls := recording(l)

	if err := l.Open("tel:+15551234"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Open("https://example.com"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if (*calls)[0].name != "dialer" {
		t.Errorf("phone link went to %s", (*calls)[0].name)
	}
	if (*calls)[1].name != "xdg-open" {
		t.Errorf("web link went to %s", (*calls)[1].name)
	}
}

func TestOpenKeepsOpenerArgs(t *testing.T) {
	l := &Launcher{opener: "rundll32", openerArgs: []string{"url.dll,FileProtocolHandler"}, apps: map[Kind]string{}}
	calls := recording(l)

	if err := l.Open("mailto:a@b.c"); err != nil {
		t.Fatalf("Open: %v", err)
	}
	args := (*calls)[0].args
	if len(args) != 2 || args[0] != "url.dll,FileProtocolHandler" || args[1] != "mailto:a@b.c" {
		t.Errorf("unexpected args %v", args)
	}
	if len(l.openerArgs) != 1 {
		t.Error("opener args were modified")
	}
}

func TestOpenRejects(t *testing.T) {
	l := &Launcher{apps: map[Kind]string{}}
	recording(l)

	if err := l.Open("javascript:alert(1)"); err == nil {
		t.Error("expected unsupported scheme to fail")
	}
	if err := l.Open("mailto:a@b.c"); err == nil {
		t.Error("expected failure without any opener")
	}
}

func TestFindCommand(t *testing.T) {
	if got := findCommand(); got != "" {
		t.Errorf("empty list returned %q", got)
	}
	if got := findCommand("definitely-not-a-real-command-12345"); got != "" {
		t.Errorf("missing command returned %q", got)
	}
	if got := findCommand("definitely-not-a-real-command-12345", "sh"); got != "sh" {
		t.Errorf("expected fallback to sh, got %q", got)
	}
}

func TestLoadOpeners(t *testing.T) {
	p, err := loadOpeners()
	if err != nil {
		t.Fatalf("loadOpeners: %v", err)
	}
	if p.DefaultOpener == "" {
		t.Error("expected a default opener for this platform")
	}
}
