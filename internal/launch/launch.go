// Package launch hands contact links (mail, phone, web) to desktop
// applications.
package launch

import (
	_ "embed"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pders01/lazyload/internal/config"
	"github.com/pders01/lazyload/internal/storage"
)

//go:embed openers.toml
var openersTOML []byte

type Kind int

const (
	KindWeb Kind = iota
	KindMail
	KindPhone
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindWeb:
		return "web"
	case KindMail:
		return "mail"
	case KindPhone:
		return "phone"
	default:
		return "unknown"
	}
}

var ErrNoTarget = errors.New("contact has no value for this link")

type platformApps struct {
	DefaultOpener     string   `toml:"default_opener"`
	DefaultOpenerArgs []string `toml:"default_opener_args"`
	Mail              []string `toml:"mail"`
	Phone             []string `toml:"phone"`
}

type openersConfig struct {
	Platforms map[string]platformApps `toml:"platforms"`
}

func loadOpeners() (platformApps, error) {
	var cfg openersConfig
	if err := toml.Unmarshal(openersTOML, &cfg); err != nil {
		return platformApps{}, fmt.Errorf("parsing openers.toml: %w", err)
	}
	if p, ok := cfg.Platforms[runtime.GOOS]; ok {
		return p, nil
	}
	return cfg.Platforms["fallback"], nil
}

// DetectKind classifies a link by its scheme.
func DetectKind(target string) Kind {
	lower := strings.ToLower(strings.TrimSpace(target))
	switch {
	case strings.HasPrefix(lower, "mailto:"):
		return KindMail
	case strings.HasPrefix(lower, "tel:"):
		return KindPhone
	case strings.HasPrefix(lower, "http://"), strings.HasPrefix(lower, "https://"):
		return KindWeb
	default:
		return KindUnknown
	}
}

// Target builds the mailto: or tel: link for c.
func Target(c storage.Contact, kind Kind) (string, error) {
	switch kind {
	case KindMail:
		email := strings.TrimSpace(c.Email)
		if email == "" {
			return "", ErrNoTarget
		}
		if strings.ContainsAny(email, " \t\r\n<>\"") || !strings.Contains(email, "@") {
			return "", fmt.Errorf("invalid email address %q", email)
		}
		return "mailto:" + email, nil
	case KindPhone:
		var b strings.Builder
		for i, r := range strings.TrimSpace(c.Phone) {
			switch {
			case r >= '0' && r <= '9':
				b.WriteRune(r)
			case r == '+' && i == 0:
				b.WriteRune(r)
			}
		}
		if b.Len() == 0 || b.String() == "+" {
			return "", ErrNoTarget
		}
		return "tel:" + b.String(), nil
	default:
		return "", fmt.Errorf("no contact link for %s", kind)
	}
}

type Launcher struct {
	opener     string
	openerArgs []string
	apps       map[Kind]string
	start      func(name string, args ...string) error
}

// New resolves the applications for each link kind. Configured commands take
// precedence over the built-in per-platform lists.
func New(cfg config.OpenConfig) *Launcher {
	defs, err := loadOpeners()
	if err != nil {
		// Continue with the configured opener only
		defs = platformApps{}
	}

	l := &Launcher{
		opener:     defs.DefaultOpener,
		openerArgs: defs.DefaultOpenerArgs,
		apps:       make(map[Kind]string),
		start:      startDetached,
	}
	if cfg.Opener != "" {
		l.opener = cfg.Opener
		l.openerArgs = nil
	}

	mail, phone := defs.Mail, defs.Phone
	if len(cfg.Mail) > 0 {
		mail = cfg.Mail
	}
	if len(cfg.Phone) > 0 {
		phone = cfg.Phone
	}
	if app := findCommand(mail...); app != "" {
		l.apps[KindMail] = app
	}
	if app := findCommand(phone...); app != "" {
		l.apps[KindPhone] = app
	}
	return l
}

// Open starts the application for target without waiting for it.
func (l *Launcher) Open(target string) error {
	kind := DetectKind(target)
	if kind == KindUnknown {
		return fmt.Errorf("unsupported link %q", target)
	}

	if app, ok := l.apps[kind]; ok {
		return l.start(app, target)
	}
	if l.opener == "" {
		return fmt.Errorf("no application found to open %s links", kind)
	}
	args := append(append([]string{}, l.openerArgs...), target)
	return l.start(l.opener, args...)
}

func startDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		_ = cmd.Wait()
	}()
	return nil
}

func findCommand(commands ...string) string {
	for _, cmd := range commands {
		if _, err := exec.LookPath(cmd); err == nil {
			return cmd
		}
	}
	return ""
}
