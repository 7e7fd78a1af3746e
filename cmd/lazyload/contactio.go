package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	gotoml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/pders01/lazyload/internal/storage"
)

// contactFile is the document shape shared by every import/export format.
type contactFile struct {
	Contacts []*storage.Contact `json:"contacts" toml:"contacts" yaml:"contacts"`
}

// formatOf picks a format from an explicit name or the file extension.
func formatOf(name, path string) (string, error) {
	if name == "" {
		name = strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	}
	switch name {
	case "json":
		return "json", nil
	case "toml":
		return "toml", nil
	case "yaml", "yml":
		return "yaml", nil
	default:
		return "", fmt.Errorf("unsupported contact format %q (want json, toml or yaml)", name)
	}
}

// readContacts loads a contact document. JSON input may also be a bare array.
func readContacts(path, format string) ([]*storage.Contact, error) {
	format, err := formatOf(format, path)
	if err != nil {
		return nil, err
	}

	var doc contactFile
	switch format {
	case "toml":
		md, err := toml.DecodeFile(path, &doc)
		if err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			fmt.Fprintf(os.Stderr, "warning: ignoring unknown keys in %s: %v\n", path, undecoded)
		}
		return doc.Contacts, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	default:
		trimmed := strings.TrimSpace(string(data))
		if strings.HasPrefix(trimmed, "[") {
			if err := json.Unmarshal(data, &doc.Contacts); err != nil {
				return nil, fmt.Errorf("decoding %s: %w", path, err)
			}
		} else if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", path, err)
		}
	}
	return doc.Contacts, nil
}

func writeContacts(w io.Writer, format string, contacts []*storage.Contact) error {
	doc := contactFile{Contacts: contacts}
	switch format {
	case "toml":
		enc := gotoml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(doc)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported contact format %q", format)
	}
}

var (
	firstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Donald", "Margaret", "Ken", "Radia", "Dennis", "Frances", "John", "Katherine", "Linus", "Hedy", "Tim"}
	lastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Knuth", "Hamilton", "Thompson", "Perlman", "Ritchie", "Allen", "McCarthy", "Johnson", "Torvalds", "Lamarr", "Berners-Lee"}
	titles     = []string{"Engineer", "Account Executive", "CTO", "Product Manager", "Analyst", "Designer", "Support Lead", ""}
	accounts   = []string{"Analytical Engines", "Compiler Works", "Enigma Ltd", "Semaphore Inc", "Bell Labs", "Xerox Parc", "Apollo Guidance"}
)

// generateContacts returns n sample contacts. The same seed yields the same contacts.
func generateContacts(n int, seed uint64) []*storage.Contact {
	r := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	out := make([]*storage.Contact, n)
	for i := range out {
		first := firstNames[r.IntN(len(firstNames))]
		last := lastNames[r.IntN(len(lastNames))]
		account := accounts[r.IntN(len(accounts))]
		domain := strings.ToLower(strings.ReplaceAll(account, " ", "")) + ".example"
		out[i] = &storage.Contact{
			FirstName: first,
			LastName:  last,
			Email:     fmt.Sprintf("%s.%s%d@%s", strings.ToLower(first), strings.ToLower(last), i, domain),
			Phone:     fmt.Sprintf("+1 555 %03d %04d", r.IntN(1000), r.IntN(10000)),
			Title:     titles[r.IntN(len(titles))],
			Account:   account,
		}
	}
	return out
}
